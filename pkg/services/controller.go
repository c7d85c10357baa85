package services

import (
	"fmt"
	"path/filepath"

	"github.com/nika-tui/nika/pkg/config"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/integrations"
	"github.com/nika-tui/nika/pkg/sources"
	"github.com/nika-tui/nika/pkg/utils"
)

// Controller owns the long-lived collaborators built from the configuration:
// the shared HTTP client, the source registry, the history store and the
// downloader. The TUI and the CLI both start from one.
type Controller struct {
	Config     *config.Config
	Client     *utils.Client
	Sources    *sources.Registry
	Downloader *Downloader

	repo *data.Repository
}

func NewController(cfg *config.Config) (*Controller, error) {
	client := utils.NewClient(cfg.RequestsPerSecond)
	registry := sources.NewRegistry(
		sources.NewMangapill(client),
		sources.NewMangaDex(client),
	)
	if _, err := registry.Get(cfg.DefaultSource); err != nil {
		return nil, err
	}

	repo, err := data.NewDuckDBRepository(cfg.LibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	downloader := NewDownloader(client, cfg.DownloadDir, cfg.MaxConcurrentDownloads).
		WithRepository(repo)
	if cfg.EPUB {
		downloader.WithPacker(integrations.NewEPubBuilder(filepath.Join(cfg.DownloadDir, "epub")))
	}

	return &Controller{
		Config:     cfg,
		Client:     client,
		Sources:    registry,
		Downloader: downloader,
		repo:       repo,
	}, nil
}

// Source returns the named source, or the configured default when name is empty.
func (c *Controller) Source(name string) (sources.Source, error) {
	if name == "" {
		name = c.Config.DefaultSource
	}
	return c.Sources.Get(name)
}

// History lists finished downloads, newest first.
func (c *Controller) History() ([]*data.Download, error) {
	return c.repo.ListDownloads()
}

func (c *Controller) Close() error {
	return c.repo.Close()
}

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultDir            = ".config/nika-tui"
	DefaultChapterPage    = 25
	DefaultConcurrency    = 8
	DefaultRequestsPerSec = 5.0
	DefaultErrorTTL       = 4 * time.Second
)

// Duration lets durations be written as "4s" in the TOML file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	AnilistToken           string   `toml:"anilist_token"`
	ChapterPageSize        int      `toml:"chapter_page_size"`
	DownloadDir            string   `toml:"download_dir"`
	LibraryPath            string   `toml:"library_path"`
	DefaultSource          string   `toml:"default_source"`
	LogFile                string   `toml:"log_file"`
	ErrorTTL               Duration `toml:"error_ttl"`
	MaxConcurrentDownloads int      `toml:"max_concurrent_downloads"`
	RequestsPerSecond      float64  `toml:"requests_per_second"`
	EPUB                   bool     `toml:"epub"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, DefaultDir)

	return &Config{
		ChapterPageSize:        DefaultChapterPage,
		DownloadDir:            filepath.Join(home, "Downloads", "nika"),
		LibraryPath:            filepath.Join(dir, "library.db"),
		DefaultSource:          "mangapill",
		LogFile:                filepath.Join(dir, "nika.log"),
		ErrorTTL:               Duration{DefaultErrorTTL},
		MaxConcurrentDownloads: DefaultConcurrency,
		RequestsPerSecond:      DefaultRequestsPerSec,
	}
}

// DefaultPath is ~/.config/nika-tui/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultDir, "config.toml")
}

// Load reads the config file at path, creating it with defaults when missing,
// then applies .env and NIKA_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NIKA_ANILIST_TOKEN"); v != "" {
		c.AnilistToken = v
	}
	if v := os.Getenv("NIKA_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("NIKA_LIBRARY_PATH"); v != "" {
		c.LibraryPath = v
	}
	if v := os.Getenv("NIKA_SOURCE"); v != "" {
		c.DefaultSource = v
	}
	if v := os.Getenv("NIKA_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("NIKA_CHAPTER_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NIKA_CHAPTER_PAGE_SIZE %q: %w", v, err)
		}
		c.ChapterPageSize = n
	}
	if v := os.Getenv("NIKA_MAX_CONCURRENT_DOWNLOADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NIKA_MAX_CONCURRENT_DOWNLOADS %q: %w", v, err)
		}
		c.MaxConcurrentDownloads = n
	}
	if v := os.Getenv("NIKA_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid NIKA_REQUESTS_PER_SECOND %q: %w", v, err)
		}
		c.RequestsPerSecond = f
	}
	if v := os.Getenv("NIKA_ERROR_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NIKA_ERROR_TTL %q: %w", v, err)
		}
		c.ErrorTTL = Duration{d}
	}
	if v := os.Getenv("NIKA_EPUB"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid NIKA_EPUB %q: %w", v, err)
		}
		c.EPUB = b
	}
	return nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	if c.ChapterPageSize <= 0 {
		c.ChapterPageSize = DefaultChapterPage
	}
	if c.MaxConcurrentDownloads <= 0 {
		c.MaxConcurrentDownloads = DefaultConcurrency
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSec
	}
	if c.ErrorTTL.Duration <= 0 {
		c.ErrorTTL = Duration{DefaultErrorTTL}
	}
}

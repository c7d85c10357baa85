package sources

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nika-tui/nika/pkg/data"
)

var ErrUnknownSource = errors.New("unknown source")

// Source is one content provider. Implementations must be safe for
// concurrent use; background tasks call them from their own goroutines.
type Source interface {
	Name() string
	BaseURL() string

	Search(ctx context.Context, query string) ([]data.Comic, error)
	GetChapters(ctx context.Context, comic data.Comic) ([]data.Chapter, error)
	GetInfo(ctx context.Context, comic data.Comic) (*data.Metadata, error)
	DownloadAssetURLs(ctx context.Context, chapter data.Chapter) ([]string, error)
}

// Referer is implemented by sources whose asset hosts check the Referer header.
type Referer interface {
	Referer() string
}

type Registry struct {
	sources map[string]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

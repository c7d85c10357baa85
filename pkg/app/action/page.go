package action

import (
	"context"

	"github.com/nika-tui/nika/pkg/data"
)

// Page is the closed set of top-level views.
type Page interface {
	page()
}

type (
	HomePage    struct{}
	SearchPage  struct{}
	OptionsPage struct{}

	ComicPage struct {
		Comic  data.Comic
		Source string
		Info   *data.Metadata
	}

	// LoadingPage shows Label and, when Gauge is set, a progress bar
	// starting at Progress. Cancel stops the operation behind it.
	LoadingPage struct {
		Label    string
		Progress *float64
		Gauge    bool
		Cancel   context.CancelFunc
	}
)

func (HomePage) page()    {}
func (SearchPage) page()  {}
func (OptionsPage) page() {}
func (ComicPage) page()   {}
func (LoadingPage) page() {}

// Package screens holds one component per page. Components are only touched
// by the control loop; background work talks back through the action sender.
package screens

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
	"github.com/nika-tui/nika/pkg/config"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/services"
	"github.com/nika-tui/nika/pkg/sources"
)

// Component is the behaviour shared by every page.
type Component interface {
	// Init wires the component to the bus. It is called once, before any
	// key or action reaches the component.
	Init(tx action.Sender) error
	HandleKey(msg tea.KeyMsg) (action.Action, error)
	Update(a action.Action) error
	View(width, height int) string
}

type Downloader interface {
	Download(ctx context.Context, src sources.Source, comic string, chapter data.Chapter, tx action.Sender) (*services.Result, error)
}

// Env is the state shared by all components. Source may change at runtime
// through SelectSource; background tasks read it once, when they start.
type Env struct {
	Ctx        context.Context
	Config     *config.Config
	Sources    *sources.Registry
	Source     string
	Downloader Downloader
}

func (e *Env) source(name string) (sources.Source, error) {
	if name == "" {
		name = e.Source
	}
	return e.Sources.Get(name)
}

// New builds the component for page.
func New(env *Env, page action.Page) Component {
	switch p := page.(type) {
	case action.SearchPage:
		return NewSearch(env)
	case action.OptionsPage:
		return NewOptions(env)
	case action.ComicPage:
		return NewComic(env, p)
	case action.LoadingPage:
		return NewLoading(p)
	default:
		return NewHome(env)
	}
}

// Factory binds New to env.
func Factory(env *Env) func(action.Page) Component {
	return func(page action.Page) Component {
		return New(env, page)
	}
}

// send reports whether the receiver is still there. Any other failure is
// logged and treated as delivered.
func send(tx action.Sender, a action.Action) bool {
	err := tx.Send(a)
	if errors.Is(err, bus.ErrClosed) {
		return false
	}
	if err != nil {
		log.Printf("[screens] dropped %T: %v", a, err)
	}
	return true
}

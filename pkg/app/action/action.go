// Package action defines the messages the control loop understands.
//
// Actions are plain values. They are created by an input handler or a
// background task, sent once through the bus and consumed once by the loop.
package action

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/data"
)

// Action is a closed set: only types in this package implement it.
type Action interface {
	action()
}

// Sender is the producer side of the bus. Send never blocks; it fails only
// when the receiving end is gone.
type Sender interface {
	Send(Action) error
}

type (
	// Key is one key press.
	Key struct{ Msg tea.KeyMsg }

	// Render asks the loop to redraw the active page.
	Render struct{}

	// Quit sets the exit flag.
	Quit struct{}

	// Error reports a failed operation to the user. Op names the loading
	// screen the operation opened, if any; only that screen is lifted.
	Error struct {
		Op  string
		Err error
	}

	// ChangePage is intercepted by the loop, never forwarded to a component.
	// With Op set it only applies while that operation's loading screen is
	// still up.
	ChangePage struct {
		Page Page
		Op   string
	}

	SearchComic struct{ Query string }

	// SetSearchResults answers the SearchComic for Query.
	SetSearchResults struct {
		Query   string
		Results []data.Comic
	}

	SelectComic struct{ Comic data.Comic }

	// FetchNewChapters moves the chapter list one page forward or back.
	FetchNewChapters struct{ Forward bool }

	UpdateChapters struct{ Chapters []data.Chapter }

	DownloadChapter struct{ Chapter data.Chapter }

	// ProgressUpdate carries an increment, not an absolute ratio.
	ProgressUpdate struct {
		Operation string
		Delta     float64
	}

	// ShowLoadingScreen overlays a fresh loading screen. Cancel, when set,
	// is called if the user backs out.
	ShowLoadingScreen struct {
		Label  string
		Gauge  bool
		Cancel context.CancelFunc
	}

	// LiftLoadingScreen closes the loading screen labelled Op.
	LiftLoadingScreen struct{ Op string }

	SelectSource struct{ Name string }

	DownloadFinished struct {
		Chapter data.Chapter
		Dir     string
		Failed  []int
		EPUB    string
	}
)

func (Key) action()               {}
func (Render) action()            {}
func (Quit) action()              {}
func (Error) action()             {}
func (ChangePage) action()        {}
func (SearchComic) action()       {}
func (SetSearchResults) action()  {}
func (SelectComic) action()       {}
func (FetchNewChapters) action()  {}
func (UpdateChapters) action()    {}
func (DownloadChapter) action()   {}
func (ProgressUpdate) action()    {}
func (ShowLoadingScreen) action() {}
func (LiftLoadingScreen) action() {}
func (SelectSource) action()      {}
func (DownloadFinished) action()  {}

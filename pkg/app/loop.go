package app

import (
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/screens"
	"github.com/nika-tui/nika/pkg/app/styles"
)

// Loop applies actions to the active page. It is the only code that touches
// page state, so it must be driven from a single goroutine.
type Loop struct {
	env     *screens.Env
	tx      action.Sender
	factory func(action.Page) screens.Component

	page    action.Page
	current screens.Component

	// While the loading screen is up the page under it waits here.
	loading   bool
	stash     screens.Component
	stashPage action.Page

	status      string
	statusErr   bool
	statusUntil time.Time
	ttl         time.Duration
	now         func() time.Time

	exit          bool
	width, height int
	frame         string
	draws         int
}

func NewLoop(env *screens.Env, tx action.Sender, factory func(action.Page) screens.Component, errorTTL time.Duration) *Loop {
	l := &Loop{
		env:     env,
		tx:      tx,
		factory: factory,
		ttl:     errorTTL,
		now:     time.Now,
	}
	if err := l.change(action.HomePage{}); err != nil {
		log.Printf("[loop] %v", err)
	}
	l.draw()
	return l
}

func (l *Loop) Page() action.Page          { return l.page }
func (l *Loop) Current() screens.Component { return l.current }
func (l *Loop) Exit() bool                 { return l.exit }
func (l *Loop) Frame() string              { return l.frame }
func (l *Loop) Loading() bool              { return l.loading }
func (l *Loop) Status() string             { return l.activeStatus() }

// Draws counts redraws since the loop started.
func (l *Loop) Draws() int { return l.draws }

func (l *Loop) Resize(width, height int) {
	l.width, l.height = width, height
	l.draw()
}

// Dispatch applies a batch in order and redraws once if any of it asked for
// a render.
func (l *Loop) Dispatch(batch []action.Action) {
	redraw := false
	for _, a := range batch {
		if _, ok := a.(action.Render); ok {
			redraw = true
			continue
		}
		l.apply(a)
	}
	if redraw {
		l.draw()
	}
}

func (l *Loop) apply(a action.Action) {
	switch a := a.(type) {
	case action.Key:
		if a.Msg.Type == tea.KeyCtrlC {
			l.exit = true
			return
		}
		next, err := l.current.HandleKey(a.Msg)
		if err != nil {
			log.Printf("[loop] key %q on %T: %v", a.Msg.String(), l.page, err)
			return
		}
		// Applied right away so later keys in the same batch already see
		// the new state.
		if next != nil {
			l.apply(next)
		}

	case action.Quit:
		l.exit = true

	case action.ChangePage:
		if a.Op != "" && !l.loadingFor(a.Op) {
			log.Printf("[loop] dropped %T from %q, its loading screen is gone", a.Page, a.Op)
			return
		}
		if err := l.change(a.Page); err != nil {
			log.Printf("[loop] %v", err)
		}

	case action.ShowLoadingScreen:
		l.showLoading(a)

	case action.LiftLoadingScreen:
		if l.loadingFor(a.Op) {
			l.liftLoading()
		}

	case action.Error:
		log.Printf("[loop] error on %T: %v", l.page, a.Err)
		l.setStatus(a.Err.Error(), true)
		if a.Op != "" && l.loadingFor(a.Op) {
			l.liftLoading()
		}
		l.forward(a)

	case action.SelectSource:
		if _, err := l.env.Sources.Get(a.Name); err != nil {
			l.setStatus(err.Error(), true)
			return
		}
		l.env.Source = a.Name
		l.setStatus("source: "+a.Name, false)

	default:
		l.forward(a)
	}
}

func (l *Loop) forward(a action.Action) {
	if err := l.current.Update(a); err != nil {
		log.Printf("[loop] %T on %T: %v", a, l.page, err)
	}
}

// change swaps in a fresh component for page. The old component is dropped
// along with any page under a loading screen, and the operation behind that
// loading screen is cancelled.
func (l *Loop) change(page action.Page) error {
	next := l.factory(page)
	if err := next.Init(l.tx); err != nil {
		return fmt.Errorf("failed to open %T: %w", page, err)
	}
	l.cancelLoading()
	l.page, l.current = page, next
	l.loading, l.stash, l.stashPage = false, nil, nil
	return nil
}

func (l *Loop) showLoading(a action.ShowLoadingScreen) {
	page := action.LoadingPage{Label: a.Label, Gauge: a.Gauge, Cancel: a.Cancel}
	if a.Gauge {
		zero := 0.0
		page.Progress = &zero
	}
	next := l.factory(page)
	if err := next.Init(l.tx); err != nil {
		log.Printf("[loop] failed to open loading screen: %v", err)
		return
	}
	if l.loading {
		l.cancelLoading()
	} else {
		l.stash, l.stashPage = l.current, l.page
	}
	l.loading = true
	l.page, l.current = page, next
}

// loadingFor reports whether the loading screen opened for op is showing.
func (l *Loop) loadingFor(op string) bool {
	p, ok := l.page.(action.LoadingPage)
	return l.loading && ok && p.Label == op
}

// cancelLoading stops the operation behind the showing loading screen.
func (l *Loop) cancelLoading() {
	if p, ok := l.page.(action.LoadingPage); ok && l.loading && p.Cancel != nil {
		p.Cancel()
	}
}

func (l *Loop) liftLoading() {
	if !l.loading {
		return
	}
	stash, page := l.stash, l.stashPage
	l.loading, l.stash, l.stashPage = false, nil, nil
	if stash == nil {
		if err := l.change(action.HomePage{}); err != nil {
			log.Printf("[loop] %v", err)
		}
		return
	}
	l.page, l.current = page, stash
}

func (l *Loop) setStatus(msg string, isErr bool) {
	l.status, l.statusErr = msg, isErr
	l.statusUntil = l.now().Add(l.ttl)
}

func (l *Loop) activeStatus() string {
	if l.status == "" || !l.now().Before(l.statusUntil) {
		return ""
	}
	return l.status
}

func (l *Loop) draw() {
	l.draws++
	height := l.height
	status := l.activeStatus()
	if status != "" {
		style := styles.StatusInfo
		if l.statusErr {
			style = styles.StatusError
		}
		status = style.Render(status)
		height--
	}

	body := styles.Frame(l.current.View(max(l.width-4, 0), max(height-2, 0)), l.width, height)
	if status == "" {
		l.frame = body
		return
	}
	l.frame = lipgloss.JoinVertical(lipgloss.Left, body, status)
}

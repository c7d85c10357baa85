package app

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
	"github.com/nika-tui/nika/pkg/app/screens"
	"github.com/nika-tui/nika/pkg/config"
	"github.com/nika-tui/nika/pkg/sources"
	"github.com/nika-tui/nika/pkg/utils"
)

type fakeComponent struct {
	page    action.Page
	tx      action.Sender
	initErr error
	keyFunc func(msg tea.KeyMsg) (action.Action, error)
	keys    []string
	updates []action.Action
}

func (f *fakeComponent) Init(tx action.Sender) error {
	f.tx = tx
	return f.initErr
}

func (f *fakeComponent) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	f.keys = append(f.keys, msg.String())
	if f.keyFunc != nil {
		return f.keyFunc(msg)
	}
	return nil, nil
}

func (f *fakeComponent) Update(a action.Action) error {
	f.updates = append(f.updates, a)
	return nil
}

func (f *fakeComponent) View(int, int) string { return "fake" }

type harness struct {
	loop    *Loop
	bus     *bus.Bus
	env     *screens.Env
	built   []*fakeComponent
	clock   time.Time
	initErr error
}

// newHarness uses fakes for every page except the loading screen, which is
// the real component.
func newHarness(t *testing.T) *harness {
	t.Helper()

	client := utils.NewTestClient(http.DefaultClient)
	h := &harness{
		bus:   bus.New(),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.env = &screens.Env{
		Ctx:     context.Background(),
		Config:  config.Default(),
		Sources: sources.NewRegistry(sources.NewMangapill(client), sources.NewMangaDex(client)),
		Source:  "mangapill",
	}
	factory := func(page action.Page) screens.Component {
		if p, ok := page.(action.LoadingPage); ok {
			return screens.NewLoading(p)
		}
		f := &fakeComponent{page: page, initErr: h.initErr}
		h.built = append(h.built, f)
		return f
	}
	h.loop = NewLoop(h.env, h.bus, factory, 4*time.Second)
	h.loop.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) current(t *testing.T) *fakeComponent {
	t.Helper()
	f, ok := h.loop.Current().(*fakeComponent)
	if !ok {
		t.Fatalf("Expected a fake component, got %T", h.loop.Current())
	}
	return f
}

func runes(s string) action.Key {
	return action.Key{Msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}}
}

func TestLoopStartsOnHome(t *testing.T) {
	h := newHarness(t)

	if _, ok := h.loop.Page().(action.HomePage); !ok {
		t.Errorf("Expected HomePage, got %T", h.loop.Page())
	}
	if h.current(t).tx == nil {
		t.Error("Expected home component to be initialised with the sender")
	}
	if h.loop.Frame() == "" {
		t.Error("Expected an initial frame")
	}
}

func TestLoopAppliesInOrder(t *testing.T) {
	h := newHarness(t)

	const n = 200
	for i := 0; i < n; i++ {
		h.bus.Send(action.SearchComic{Query: strconv.Itoa(i)})
	}
	batch, err := h.bus.RecvBatch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	h.loop.Dispatch(batch)

	updates := h.current(t).updates
	if len(updates) != n {
		t.Fatalf("Expected %d updates, got %d", n, len(updates))
	}
	for i, a := range updates {
		if got := a.(action.SearchComic).Query; got != strconv.Itoa(i) {
			t.Fatalf("position %d: got query %s", i, got)
		}
	}
}

func TestLoopInterceptsChangePage(t *testing.T) {
	h := newHarness(t)
	home := h.current(t)
	home.keyFunc = func(msg tea.KeyMsg) (action.Action, error) {
		if msg.String() == "s" {
			return action.ChangePage{Page: action.SearchPage{}}, nil
		}
		return nil, nil
	}

	h.loop.Dispatch([]action.Action{runes("s"), runes("x")})

	if _, ok := h.loop.Page().(action.SearchPage); !ok {
		t.Fatalf("Expected SearchPage, got %T", h.loop.Page())
	}
	search := h.current(t)
	if search == home {
		t.Fatal("Expected a fresh component")
	}
	if search.tx != h.bus {
		t.Error("Expected new component to be wired to the bus")
	}
	if len(search.keys) != 1 || search.keys[0] != "x" {
		t.Errorf("Expected the next key to reach the new page, got %v", search.keys)
	}
	for _, a := range home.updates {
		if _, ok := a.(action.ChangePage); ok {
			t.Error("ChangePage must not be forwarded to the outgoing component")
		}
	}
}

func TestLoopChangePageInitFailureKeepsPage(t *testing.T) {
	h := newHarness(t)
	home := h.current(t)
	h.initErr = errors.New("broken")

	h.loop.Dispatch([]action.Action{action.ChangePage{Page: action.OptionsPage{}}})

	if h.loop.Current() != home {
		t.Error("Expected to stay on home when the next page fails to initialise")
	}
}

func TestLoopQuit(t *testing.T) {
	h := newHarness(t)
	h.loop.Dispatch([]action.Action{action.Quit{}})
	if !h.loop.Exit() {
		t.Error("Expected exit flag after Quit")
	}

	h = newHarness(t)
	h.loop.Dispatch([]action.Action{action.Key{Msg: tea.KeyMsg{Type: tea.KeyCtrlC}}})
	if !h.loop.Exit() {
		t.Error("Expected exit flag after ctrl+c")
	}
	if len(h.current(t).keys) != 0 {
		t.Error("ctrl+c must not reach the component")
	}
}

func TestLoopLoadingOverlay(t *testing.T) {
	h := newHarness(t)
	h.loop.Dispatch([]action.Action{action.ChangePage{Page: action.OptionsPage{}}})
	under := h.current(t)

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Downloading Ch. 1", Gauge: true},
		action.ProgressUpdate{Operation: "Downloading Ch. 1", Delta: 0.2},
		action.ProgressUpdate{Operation: "Downloading Ch. 1", Delta: 0.3},
	})

	loading, ok := h.loop.Current().(*screens.Loading)
	if !ok {
		t.Fatalf("Expected loading screen, got %T", h.loop.Current())
	}
	if math.Abs(loading.Ratio()-0.5) > 1e-9 {
		t.Errorf("Expected 0.5, got %v", loading.Ratio())
	}

	// A fresh loading screen starts over but keeps the original page underneath.
	h.loop.Dispatch([]action.Action{action.ShowLoadingScreen{Label: "Downloading Ch. 2", Gauge: true}})
	if r := h.loop.Current().(*screens.Loading).Ratio(); r != 0 {
		t.Errorf("Expected fresh loading screen at 0, got %v", r)
	}

	h.loop.Dispatch([]action.Action{action.LiftLoadingScreen{Op: "Downloading Ch. 2"}})
	if h.loop.Current() != under {
		t.Error("Expected the page under the loading screen back, state intact")
	}
	if h.loop.Loading() {
		t.Error("Expected loading flag cleared")
	}

	// Lifting again does nothing.
	h.loop.Dispatch([]action.Action{action.LiftLoadingScreen{Op: "Downloading Ch. 2"}})
	if h.loop.Current() != under {
		t.Error("Expected a second lift to be a no-op")
	}
}

func TestLoopLoadingEscCancels(t *testing.T) {
	h := newHarness(t)
	under := h.current(t)
	cancelled := false

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Loading", Cancel: func() { cancelled = true }},
		action.Key{Msg: tea.KeyMsg{Type: tea.KeyEsc}},
	})

	if !cancelled {
		t.Error("Expected esc to cancel the operation")
	}
	if h.loop.Current() != under {
		t.Error("Expected esc to lift the loading screen")
	}
}

func TestLoopUnrelatedErrorKeepsLoadingScreen(t *testing.T) {
	h := newHarness(t)
	h.loop.Dispatch([]action.Action{action.ChangePage{Page: action.ComicPage{}}})
	comic := h.current(t)
	cancelled := false

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Downloading Ch 1", Gauge: true, Cancel: func() { cancelled = true }},
		action.ProgressUpdate{Operation: "Downloading Ch 1", Delta: 0.2},
		action.Error{Err: errors.New("failed to refresh chapters")},
		action.ProgressUpdate{Operation: "Downloading Ch 1", Delta: 0.3},
	})

	loading, ok := h.loop.Current().(*screens.Loading)
	if !ok {
		t.Fatalf("Expected the download's loading screen to stay up, got %T", h.loop.Current())
	}
	if math.Abs(loading.Ratio()-0.5) > 1e-9 {
		t.Errorf("Expected progress to keep accumulating to 0.5, got %v", loading.Ratio())
	}
	if cancelled {
		t.Error("Expected the download to keep running")
	}
	if h.loop.Status() != "failed to refresh chapters" {
		t.Errorf("Expected the error on the status line, got %q", h.loop.Status())
	}

	// Another operation's lift or error leaves it alone too.
	h.loop.Dispatch([]action.Action{
		action.LiftLoadingScreen{Op: "Downloading Ch 2"},
		action.Error{Op: "Loading Naruto", Err: errors.New("stale")},
	})
	if !h.loop.Loading() {
		t.Fatal("Expected a lift for another operation to be ignored")
	}

	h.loop.Dispatch([]action.Action{action.Error{Op: "Downloading Ch 1", Err: errors.New("disk full")}})
	if h.loop.Current() != comic {
		t.Errorf("Expected the download's own error to lift its screen, got %T", h.loop.Current())
	}
}

func TestLoopReplacedLoadingScreenIsCancelled(t *testing.T) {
	h := newHarness(t)
	under := h.current(t)
	var cancelled []string

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Downloading Ch 1", Gauge: true, Cancel: func() { cancelled = append(cancelled, "Ch 1") }},
		action.ShowLoadingScreen{Label: "Downloading Ch 2", Gauge: true, Cancel: func() { cancelled = append(cancelled, "Ch 2") }},
	})
	if len(cancelled) != 1 || cancelled[0] != "Ch 1" {
		t.Fatalf("Expected only the replaced download to be cancelled, got %v", cancelled)
	}

	// The first download finishing late must not close the second one's gauge.
	h.loop.Dispatch([]action.Action{action.LiftLoadingScreen{Op: "Downloading Ch 1"}})
	if p, ok := h.loop.Page().(action.LoadingPage); !ok || p.Label != "Downloading Ch 2" {
		t.Fatalf("Expected Ch 2 still loading, got %#v", h.loop.Page())
	}

	h.loop.Dispatch([]action.Action{action.LiftLoadingScreen{Op: "Downloading Ch 2"}})
	if h.loop.Current() != under {
		t.Error("Expected the original page back")
	}
	if len(cancelled) != 1 {
		t.Errorf("Expected a finished operation not to be cancelled, got %v", cancelled)
	}
}

func TestLoopDropsChangePageAfterBackingOut(t *testing.T) {
	h := newHarness(t)
	h.loop.Dispatch([]action.Action{action.ChangePage{Page: action.SearchPage{}}})
	search := h.current(t)

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Loading Naruto", Cancel: func() {}},
		action.Key{Msg: tea.KeyMsg{Type: tea.KeyEsc}},
		action.ChangePage{Page: action.ComicPage{}, Op: "Loading Naruto"},
	})
	if h.loop.Current() != search {
		t.Errorf("Expected to stay on search after backing out, got %T", h.loop.Page())
	}

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Loading Naruto", Cancel: func() {}},
		action.ChangePage{Page: action.ComicPage{}, Op: "Loading Naruto"},
	})
	if _, ok := h.loop.Page().(action.ComicPage); !ok {
		t.Errorf("Expected the comic page while its loading screen is up, got %T", h.loop.Page())
	}
	if h.loop.Loading() {
		t.Error("Expected the loading screen to be gone")
	}
}

func TestLoopErrorStatus(t *testing.T) {
	h := newHarness(t)
	under := h.current(t)

	h.loop.Dispatch([]action.Action{
		action.ShowLoadingScreen{Label: "Loading"},
		action.Error{Op: "Loading", Err: errors.New("network down")},
		action.Render{},
	})

	if h.loop.Current() != under {
		t.Error("Expected an error to lift the loading screen")
	}
	if h.loop.Status() != "network down" {
		t.Errorf("Expected status, got %q", h.loop.Status())
	}
	last := under.updates[len(under.updates)-1]
	if _, ok := last.(action.Error); !ok {
		t.Errorf("Expected error forwarded to the page, got %T", last)
	}

	h.clock = h.clock.Add(3 * time.Second)
	if h.loop.Status() == "" {
		t.Error("Expected status to still be showing")
	}
	h.clock = h.clock.Add(2 * time.Second)
	if h.loop.Status() != "" {
		t.Errorf("Expected status to expire, got %q", h.loop.Status())
	}
}

func TestLoopRedrawsOncePerBatch(t *testing.T) {
	h := newHarness(t)
	start := h.loop.Draws()

	h.loop.Dispatch([]action.Action{action.Render{}, action.SearchComic{}, action.Render{}, action.Render{}})
	if got := h.loop.Draws() - start; got != 1 {
		t.Errorf("Expected one redraw, got %d", got)
	}

	h.loop.Dispatch([]action.Action{action.SearchComic{}})
	if got := h.loop.Draws() - start; got != 1 {
		t.Errorf("Expected no redraw without Render, got %d redraws", got)
	}
}

func TestLoopSelectSource(t *testing.T) {
	h := newHarness(t)

	h.loop.Dispatch([]action.Action{action.SelectSource{Name: "mangadex"}})
	if h.env.Source != "mangadex" {
		t.Errorf("Expected mangadex, got %s", h.env.Source)
	}

	h.loop.Dispatch([]action.Action{action.SelectSource{Name: "nowhere"}})
	if h.env.Source != "mangadex" {
		t.Errorf("Expected unknown source to be rejected, got %s", h.env.Source)
	}
	if h.loop.Status() == "" {
		t.Error("Expected an error status for an unknown source")
	}
}

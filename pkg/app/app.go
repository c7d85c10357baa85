package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
	"github.com/nika-tui/nika/pkg/app/events"
	"github.com/nika-tui/nika/pkg/app/screens"
	"github.com/nika-tui/nika/pkg/services"
)

type App struct {
	ctrl   *services.Controller
	source string
}

func NewApp(ctrl *services.Controller, source string) *App {
	if source == "" {
		source = ctrl.Config.DefaultSource
	}
	return &App{ctrl: ctrl, source: source}
}

// Run owns the terminal until the user quits. Every background task runs
// under ctx and is cancelled on return.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.ctrl.Sources.Get(a.source); err != nil {
		return err
	}

	cfg := a.ctrl.Config
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.LogFile, "nika")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := bus.New()
	defer b.Close()

	env := &screens.Env{
		Ctx:        ctx,
		Config:     cfg,
		Sources:    a.ctrl.Sources,
		Source:     a.source,
		Downloader: a.ctrl.Downloader,
	}
	src := events.NewSource(b)
	go src.Run(ctx)

	m := &model{
		ctx:    ctx,
		bus:    b,
		events: src,
		loop:   NewLoop(env, b, screens.Factory(env), cfg.ErrorTTL.Duration),
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type batchMsg []action.Action

// model adapts the loop to bubbletea: terminal input goes into the bus and
// the loop's last frame is what gets drawn.
type model struct {
	ctx    context.Context
	bus    *bus.Bus
	events *events.Source
	loop   *Loop
}

func (m *model) Init() tea.Cmd {
	return m.pump
}

// pump waits for the next batch of actions.
func (m *model) pump() tea.Msg {
	batch, err := m.bus.RecvBatch(m.ctx)
	if err != nil {
		return tea.QuitMsg{}
	}
	return batchMsg(batch)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.events.Key(msg)
	case tea.WindowSizeMsg:
		m.loop.Resize(msg.Width, msg.Height)
	case error:
		m.events.Err(msg)
	case batchMsg:
		m.loop.Dispatch(msg)
		if m.loop.Exit() {
			return m, tea.Quit
		}
		return m, m.pump
	}
	return m, nil
}

func (m *model) View() string {
	return m.loop.Frame()
}

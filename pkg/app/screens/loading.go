package screens

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/components"
	"github.com/nika-tui/nika/pkg/app/styles"
)

// Loading is shown over another page while a background task runs. Progress
// deltas are summed as they arrive.
type Loading struct {
	gauge     *components.Gauge
	showGauge bool
	cancel    context.CancelFunc
	started   time.Time
	help      help.Model
}

func NewLoading(p action.LoadingPage) *Loading {
	l := &Loading{
		gauge:     components.NewGauge(p.Label),
		showGauge: p.Gauge || p.Progress != nil,
		cancel:    p.Cancel,
		started:   time.Now(),
		help:      help.New(),
	}
	if p.Progress != nil {
		l.gauge.Add(*p.Progress)
	}
	return l
}

func (l *Loading) Init(action.Sender) error { return nil }

func (l *Loading) Ratio() float64 { return l.gauge.Ratio() }

func (l *Loading) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	if !key.Matches(msg, keyEsc) || l.cancel == nil {
		return nil, nil
	}
	l.cancel()
	return action.LiftLoadingScreen{Op: l.gauge.Label}, nil
}

func (l *Loading) Update(a action.Action) error {
	// Updates from an operation this screen was not opened for are stale.
	if u, ok := a.(action.ProgressUpdate); ok && (u.Operation == "" || u.Operation == l.gauge.Label) {
		l.gauge.Add(u.Delta)
	}
	return nil
}

func (l *Loading) View(width, height int) string {
	var b strings.Builder
	if l.showGauge {
		b.WriteString(l.gauge.View(width))
	} else {
		b.WriteString(spinnerFrame(time.Since(l.started)) + " " + styles.TextStyle.Render(l.gauge.Label))
	}
	if l.cancel != nil {
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render(l.help.ShortHelpView([]key.Binding{keyEsc})))
	}
	return b.String()
}

func spinnerFrame(elapsed time.Duration) string {
	s := spinner.Dot
	i := int(elapsed/s.FPS) % len(s.Frames)
	return styles.StatusInfo.Render(s.Frames[i])
}

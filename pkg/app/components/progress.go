package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/nika-tui/nika/pkg/app/styles"
)

// Gauge accumulates progress deltas for one operation. The total is never
// clamped; producers are responsible for deltas that sum to one.
type Gauge struct {
	Label string
	ratio float64
	bar   progress.Model
}

func NewGauge(label string) *Gauge {
	return &Gauge{
		Label: label,
		bar:   progress.New(progress.WithGradient(string(styles.Secondary), string(styles.Primary))),
	}
}

func (g *Gauge) Add(delta float64) {
	g.ratio += delta
}

func (g *Gauge) Ratio() float64 {
	return g.ratio
}

func (g *Gauge) Reset(label string) {
	g.Label = label
	g.ratio = 0
}

func (g *Gauge) View(width int) string {
	if width > 4 {
		g.bar.Width = width - 4
	}

	var b strings.Builder
	b.WriteString(styles.TextStyle.Render(g.Label))
	b.WriteString("\n\n")
	// The bar itself cannot draw past full.
	b.WriteString(g.bar.ViewAs(min(g.ratio, 1)))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%.0f%%", g.ratio*100)))
	return b.String()
}

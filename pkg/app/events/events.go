// Package events turns terminal input and a fixed render clock into actions.
package events

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
)

// RenderInterval is one frame at 60Hz.
const RenderInterval = time.Second / 60

type Source struct {
	tx       action.Sender
	interval time.Duration
}

func NewSource(tx action.Sender) *Source {
	return &Source{tx: tx, interval: RenderInterval}
}

// WithInterval overrides the render clock. Used by tests and the headless CLI.
func (s *Source) WithInterval(d time.Duration) *Source {
	s.interval = d
	return s
}

// Run sends one Render per tick until ctx is done or the bus is closed.
// Missed ticks are not made up for.
func (s *Source) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.tx.Send(action.Render{}); err != nil {
				if errors.Is(err, bus.ErrClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// Key forwards a key press. Only presses reach here: the terminal layer does
// not report releases.
func (s *Source) Key(msg tea.KeyMsg) {
	s.send(action.Key{Msg: msg})
}

// Err reports an input stream failure without stopping the source.
func (s *Source) Err(err error) {
	if err == nil {
		return
	}
	s.send(action.Error{Err: err})
}

func (s *Source) send(a action.Action) {
	if err := s.tx.Send(a); err != nil && !errors.Is(err, bus.ErrClosed) {
		log.Printf("[events] dropped %T: %v", a, err)
	}
}

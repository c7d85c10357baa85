package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/components"
	"github.com/nika-tui/nika/pkg/app/styles"
)

// Options shows the effective configuration and lets the user pick the
// active source.
type Options struct {
	env    *Env
	names  []string
	cursor components.Cursor
	help   help.Model
}

func NewOptions(env *Env) *Options {
	names := env.Sources.Names()
	o := &Options{env: env, names: names, cursor: components.Cursor{Len: len(names)}, help: help.New()}
	for i, name := range names {
		if name == env.Source {
			o.cursor.Index = i
		}
	}
	return o
}

func (o *Options) Init(action.Sender) error { return nil }

func (o *Options) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyUp):
		o.cursor.Prev()
	case key.Matches(msg, keyDown):
		o.cursor.Next()
	case key.Matches(msg, keyEnter):
		if o.cursor.Index < len(o.names) {
			return action.SelectSource{Name: o.names[o.cursor.Index]}, nil
		}
	case key.Matches(msg, keySearch):
		return action.ChangePage{Page: action.SearchPage{}}, nil
	case key.Matches(msg, keyHome), key.Matches(msg, keyEsc):
		return action.ChangePage{Page: action.HomePage{}}, nil
	case key.Matches(msg, keyQuit):
		return action.Quit{}, nil
	}
	return nil, nil
}

func (o *Options) Update(action.Action) error { return nil }

func (o *Options) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Options"))
	b.WriteString("\n")

	cfg := o.env.Config
	rows := [][2]string{
		{"chapter page size", fmt.Sprint(cfg.ChapterPageSize)},
		{"download dir", cfg.DownloadDir},
		{"library", cfg.LibraryPath},
		{"parallel downloads", fmt.Sprint(cfg.MaxConcurrentDownloads)},
		{"requests/second", fmt.Sprint(cfg.RequestsPerSecond)},
		{"pack epub", fmt.Sprint(cfg.EPUB)},
		{"anilist", tokenState(cfg.AnilistToken)},
	}
	for _, row := range rows {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%-20s", row[0])))
		b.WriteString(styles.TextStyle.Render(row[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Sources"))
	b.WriteString("\n")
	for i, name := range o.names {
		mark := "  "
		if name == o.env.Source {
			mark = "* "
		}
		if i == o.cursor.Index {
			b.WriteString(styles.SelectedStyle.Render("> " + mark + name))
		} else {
			b.WriteString("  " + styles.TextStyle.Render(mark+name))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render(o.help.ShortHelpView([]key.Binding{keyUp, keyDown, keyEnter, keySearch, keyHome, keyQuit})))
	return b.String()
}

func tokenState(token string) string {
	if token == "" {
		return "not set"
	}
	return "set"
}

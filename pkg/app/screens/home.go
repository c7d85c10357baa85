package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/styles"
)

const logo = `
 _ __  _ | | __ __ _
| '_ \| || |/ // _' |
| | | | ||   <| (_| |
|_| |_|_||_|\_\\__,_|`

type Home struct {
	env  *Env
	help help.Model
}

func NewHome(env *Env) *Home {
	return &Home{env: env, help: help.New()}
}

func (h *Home) Init(action.Sender) error { return nil }

func (h *Home) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keySearch):
		return action.ChangePage{Page: action.SearchPage{}}, nil
	case key.Matches(msg, keyOptions):
		return action.ChangePage{Page: action.OptionsPage{}}, nil
	case key.Matches(msg, keyQuit):
		return action.Quit{}, nil
	}
	return nil, nil
}

func (h *Home) Update(action.Action) error { return nil }

func (h *Home) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("read comics from your terminal"))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedStyle.Render("source: " + h.env.Source))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(h.help.ShortHelpView([]key.Binding{keySearch, keyOptions, keyQuit})))
	return b.String()
}

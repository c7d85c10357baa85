package screens

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/components"
	"github.com/nika-tui/nika/pkg/app/styles"
	"github.com/nika-tui/nika/pkg/data"
	"golang.org/x/sync/errgroup"
)

// Search has two modes. In normal mode keys move the cursor over results;
// in editing mode they go to the query, and every edit searches again.
type Search struct {
	env     *Env
	tx      action.Sender
	input   textinput.Model
	results *components.ComicList
	editing bool
	pending string
	help    help.Model
}

func NewSearch(env *Env) *Search {
	ti := textinput.New()
	ti.Placeholder = "Search comics..."
	ti.CharLimit = 100
	ti.Width = 50

	return &Search{
		env:     env,
		input:   ti,
		results: components.NewComicList(),
		help:    help.New(),
	}
}

func (s *Search) Init(tx action.Sender) error {
	s.tx = tx
	return nil
}

func (s *Search) Editing() bool { return s.editing }

func (s *Search) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	if s.editing {
		return s.handleEditing(msg)
	}

	switch {
	case key.Matches(msg, keyEdit):
		s.editing = true
		s.input.Focus()
		s.results.Cursor.Reset()
	case key.Matches(msg, keyUp):
		s.results.Cursor.Prev()
	case key.Matches(msg, keyDown):
		s.results.Cursor.Next()
	case key.Matches(msg, keyEnter):
		if comic, ok := s.results.Selected(); ok {
			return action.SelectComic{Comic: comic.Clone()}, nil
		}
	case key.Matches(msg, keyHome), key.Matches(msg, keyEsc):
		return action.ChangePage{Page: action.HomePage{}}, nil
	case key.Matches(msg, keyOptions):
		return action.ChangePage{Page: action.OptionsPage{}}, nil
	case key.Matches(msg, keyQuit):
		return action.Quit{}, nil
	}
	return nil, nil
}

func (s *Search) handleEditing(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyEsc):
		s.editing = false
		s.input.Blur()
		s.results.Cursor.Reset()
		return nil, nil
	case key.Matches(msg, keyEnter):
		return nil, nil
	}

	before := s.input.Value()
	s.input, _ = s.input.Update(msg)
	if s.input.Value() == before {
		return nil, nil
	}
	return action.SearchComic{Query: s.input.Value()}, nil
}

func (s *Search) Update(a action.Action) error {
	switch a := a.(type) {
	case action.SearchComic:
		return s.search(a.Query)
	case action.SetSearchResults:
		// Only the answer to what is in the box right now is shown.
		if a.Query != s.input.Value() {
			return nil
		}
		s.pending = ""
		s.results.SetItems(a.Results)
	case action.SelectComic:
		return s.open(a.Comic)
	case action.Error:
		s.pending = ""
	}
	return nil
}

func (s *Search) search(query string) error {
	if strings.TrimSpace(query) == "" {
		send(s.tx, action.SetSearchResults{Query: query})
		return nil
	}

	src, err := s.env.source("")
	if err != nil {
		return err
	}
	s.pending = query

	tx, ctx := s.tx, s.env.Ctx
	go func() {
		results, err := src.Search(ctx, query)
		if err != nil {
			log.Printf("[search] %s %q: %v", src.Name(), query, err)
			if send(tx, action.SetSearchResults{Query: query}) {
				send(tx, action.Error{Err: fmt.Errorf("search failed: %w", err)})
			}
			return
		}
		for i := range results {
			results[i].SourceName = src.Name()
		}
		send(tx, action.SetSearchResults{Query: query, Results: results})
	}()
	return nil
}

// open loads chapters and metadata concurrently behind a loading screen,
// then switches to the comic page.
func (s *Search) open(comic data.Comic) error {
	src, err := s.env.source(comic.SourceName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(s.env.Ctx)
	op := "Loading " + comic.Name
	if !send(s.tx, action.ShowLoadingScreen{Label: op, Cancel: cancel}) {
		cancel()
		return nil
	}

	tx := s.tx
	go func() {
		defer cancel()

		var (
			chapters []data.Chapter
			info     *data.Metadata
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			chapters, err = src.GetChapters(gctx, comic)
			return err
		})
		g.Go(func() (err error) {
			info, err = src.GetInfo(gctx, comic)
			return err
		})
		err := g.Wait()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("[search] opening %s: %v", comic.Name, err)
			send(tx, action.Error{Op: op, Err: fmt.Errorf("failed to open %s: %w", comic.Name, err)})
			return
		}

		comic.Chapters = chapters
		comic.Info = info
		// Dropped by the loop if the user backed out after the check above.
		send(tx, action.ChangePage{
			Page: action.ComicPage{Comic: comic, Source: src.Name(), Info: info},
			Op:   op,
		})
	}()
	return nil
}

func (s *Search) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Search"))
	b.WriteString("\n")

	inputStyle := styles.InputStyle
	if s.editing {
		inputStyle = styles.FocusedInputStyle
	}
	b.WriteString(inputStyle.Render(s.input.View()))
	b.WriteString("\n\n")

	if s.pending != "" {
		b.WriteString(styles.StatusInfo.Render("Searching..."))
		b.WriteString("\n")
	}
	s.results.Width = width
	s.results.Height = max(height-12, 3)
	b.WriteString(s.results.View(!s.editing))

	bindings := []key.Binding{keyEdit, keyUp, keyDown, keyEnter, keyHome, keyQuit}
	if s.editing {
		bindings = []key.Binding{keyEsc}
	}
	b.WriteString(styles.HelpStyle.Render(s.help.ShortHelpView(bindings)))
	return b.String()
}

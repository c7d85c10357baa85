package screens

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/components"
	"github.com/nika-tui/nika/pkg/app/styles"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/services"
)

// Comic lists the chapters of one comic a page at a time.
type Comic struct {
	env    *Env
	tx     action.Sender
	comic  data.Comic
	source string
	info   *data.Metadata

	pages  *components.Paginator
	cursor components.Cursor
	status string
	help   help.Model
}

func NewComic(env *Env, p action.ComicPage) *Comic {
	c := &Comic{
		env:    env,
		comic:  p.Comic,
		source: p.Source,
		info:   p.Info,
		pages:  components.NewPaginator(p.Comic.Chapters, env.Config.ChapterPageSize),
		help:   help.New(),
	}
	if c.info == nil {
		c.info = p.Comic.Info
	}
	c.cursor.SetLen(len(c.pages.Visible()))
	return c
}

func (c *Comic) Init(tx action.Sender) error {
	c.tx = tx
	return nil
}

// Page is the current chapter page, starting at 1.
func (c *Comic) Page() int { return c.pages.Page() }

func (c *Comic) Visible() []data.Chapter { return c.pages.Visible() }

func (c *Comic) HandleKey(msg tea.KeyMsg) (action.Action, error) {
	switch {
	case key.Matches(msg, keyNext):
		return action.FetchNewChapters{Forward: true}, nil
	case key.Matches(msg, keyPrev):
		return action.FetchNewChapters{Forward: false}, nil
	case key.Matches(msg, keyUp):
		c.cursor.Prev()
	case key.Matches(msg, keyDown):
		c.cursor.Next()
	case key.Matches(msg, keyEnter):
		visible := c.pages.Visible()
		if c.cursor.Index < len(visible) {
			return action.DownloadChapter{Chapter: visible[c.cursor.Index]}, nil
		}
	case key.Matches(msg, keyRefresh):
		return nil, c.refresh()
	case key.Matches(msg, keySearch), key.Matches(msg, keyEsc):
		return action.ChangePage{Page: action.SearchPage{}}, nil
	case key.Matches(msg, keyHome):
		return action.ChangePage{Page: action.HomePage{}}, nil
	case key.Matches(msg, keyQuit):
		return action.Quit{}, nil
	}
	return nil, nil
}

func (c *Comic) Update(a action.Action) error {
	switch a := a.(type) {
	case action.FetchNewChapters:
		if c.pages.Fetch(a.Forward) {
			c.cursor.Reset()
			c.cursor.SetLen(len(c.pages.Visible()))
		}
	case action.UpdateChapters:
		c.comic.Chapters = a.Chapters
		c.pages.SetChapters(a.Chapters)
		c.cursor.SetLen(len(c.pages.Visible()))
		c.status = fmt.Sprintf("%d chapters", len(a.Chapters))
	case action.DownloadChapter:
		return c.download(a.Chapter)
	case action.DownloadFinished:
		c.status = finishedStatus(a)
	}
	return nil
}

func (c *Comic) refresh() error {
	src, err := c.env.source(c.source)
	if err != nil {
		return err
	}
	tx, ctx, comic := c.tx, c.env.Ctx, c.comic.Clone()
	go func() {
		chapters, err := src.GetChapters(ctx, comic)
		if err != nil {
			send(tx, action.Error{Err: fmt.Errorf("failed to refresh chapters: %w", err)})
			return
		}
		send(tx, action.UpdateChapters{Chapters: chapters})
	}()
	return nil
}

// download runs the chapter download behind a loading screen with a gauge.
// Backing out of the loading screen cancels it.
func (c *Comic) download(chapter data.Chapter) error {
	src, err := c.env.source(c.source)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.env.Ctx)
	show := action.ShowLoadingScreen{Label: services.ProgressLabel(chapter), Gauge: true, Cancel: cancel}
	if !send(c.tx, show) {
		cancel()
		return nil
	}

	tx, name, downloader := c.tx, c.comic.Name, c.env.Downloader
	go func() {
		defer cancel()

		result, err := downloader.Download(ctx, src, name, chapter, tx)
		if ctx.Err() != nil {
			log.Printf("[download] %s cancelled", chapter.Name)
			return
		}
		if err != nil {
			log.Printf("[download] %s: %v", chapter.Name, err)
			if errors.Is(err, services.ErrNoAssets) {
				err = fmt.Errorf("%s has no pages", chapter.Name)
			}
			send(tx, action.Error{Op: show.Label, Err: err})
			return
		}

		if send(tx, action.LiftLoadingScreen{Op: show.Label}) {
			send(tx, action.DownloadFinished{
				Chapter: chapter,
				Dir:     result.Dir,
				Failed:  result.Failed(),
				EPUB:    result.EPUB,
			})
		}
	}()
	return nil
}

func finishedStatus(a action.DownloadFinished) string {
	msg := fmt.Sprintf("%s saved to %s", a.Chapter.Name, a.Dir)
	if len(a.Failed) > 0 {
		msg += fmt.Sprintf(" (%d pages failed)", len(a.Failed))
	}
	if a.EPUB != "" {
		msg += ", epub: " + a.EPUB
	}
	return msg
}

func (c *Comic) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(c.comic.Name))
	b.WriteString("\n")

	meta := []string{c.comic.Type.String(), c.source}
	if c.info != nil {
		if c.info.Status != "" {
			meta = append(meta, c.info.Status)
		}
		if c.info.Date != "" {
			meta = append(meta, c.info.Date)
		}
	}
	b.WriteString(styles.MutedStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")
	if c.info != nil && len(c.info.Genres) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(strings.Join(c.info.Genres, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	visible := c.pages.Visible()
	if len(visible) == 0 {
		b.WriteString(styles.MutedStyle.Render("No chapters"))
		b.WriteString("\n")
	}
	for i, ch := range visible {
		if i == c.cursor.Index {
			b.WriteString(styles.SelectedStyle.Render("> " + ch.Name))
		} else {
			b.WriteString("  " + styles.TextStyle.Render(ch.Name))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("page %d/%d · %d chapters",
		c.pages.Page(), max(c.pages.TotalPages(), 1), c.pages.Total())))
	if c.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusOK.Render(c.status))
	}
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(c.help.ShortHelpView(
		[]key.Binding{keyUp, keyDown, keyNext, keyPrev, keyEnter, keyRefresh, keySearch, keyQuit})))
	return b.String()
}

package components

import (
	"fmt"
	"strings"

	"github.com/nika-tui/nika/pkg/app/styles"
	"github.com/nika-tui/nika/pkg/data"
)

// Cursor is a selection index over a list of Len items. Movement is clamped
// at both ends.
type Cursor struct {
	Index int
	Len   int
}

func (c *Cursor) Next() {
	if c.Index+1 < c.Len {
		c.Index++
	}
}

func (c *Cursor) Prev() {
	if c.Index > 0 {
		c.Index--
	}
}

func (c *Cursor) Reset() {
	c.Index = 0
}

// SetLen resizes the list, pulling the cursor back inside it.
func (c *Cursor) SetLen(n int) {
	c.Len = n
	if c.Index >= n {
		c.Index = max(n-1, 0)
	}
}

// ComicList renders search results with a cursor.
type ComicList struct {
	Items  []data.Comic
	Cursor Cursor
	Width  int
	Height int
}

func NewComicList() *ComicList {
	return &ComicList{Width: 80, Height: 20}
}

func (l *ComicList) SetItems(items []data.Comic) {
	l.Items = items
	l.Cursor.SetLen(len(items))
}

func (l *ComicList) Selected() (data.Comic, bool) {
	if l.Cursor.Index >= len(l.Items) {
		return data.Comic{}, false
	}
	return l.Items[l.Cursor.Index], true
}

func (l *ComicList) View(focused bool) string {
	if len(l.Items) == 0 {
		return styles.MutedStyle.Render("No results")
	}

	var b strings.Builder
	start, end := window(l.Cursor.Index, len(l.Items), l.Height)
	for i := start; i < end; i++ {
		item := l.Items[i]
		line := fmt.Sprintf("%s  %s", item.Name, styles.MutedStyle.Render(item.Type.String()))
		if focused && i == l.Cursor.Index {
			b.WriteString(styles.SelectedStyle.Render("> " + item.Name))
			b.WriteString("  " + styles.MutedStyle.Render(item.Type.String()))
		} else {
			b.WriteString("  " + styles.TextStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// window keeps the cursor visible in a viewport of height rows.
func window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(0, min(start, n-height))
	return start, start + height
}

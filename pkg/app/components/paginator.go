package components

import "github.com/nika-tui/nika/pkg/data"

// Paginator slices a chapter list into fixed-size pages. Page is 1-based and
// stays within [1, TotalPages] whenever there is at least one chapter.
type Paginator struct {
	chapters []data.Chapter
	size     int
	page     int
}

func NewPaginator(chapters []data.Chapter, size int) *Paginator {
	if size <= 0 {
		size = 25
	}
	return &Paginator{chapters: chapters, size: size, page: 1}
}

func (p *Paginator) Page() int     { return p.page }
func (p *Paginator) PageSize() int { return p.size }
func (p *Paginator) Total() int    { return len(p.chapters) }

func (p *Paginator) TotalPages() int {
	return (len(p.chapters) + p.size - 1) / p.size
}

func (p *Paginator) Visible() []data.Chapter {
	return p.slice(p.page)
}

// Fetch moves one page forward or back. It reports whether the page changed;
// a move that would leave the bounds or show nothing is a no-op.
func (p *Paginator) Fetch(forward bool) bool {
	next := p.page - 1
	if forward {
		next = p.page + 1
	}
	if next < 1 || len(p.slice(next)) == 0 {
		return false
	}
	p.page = next
	return true
}

// SetChapters replaces the list, keeping the current page when it still has
// chapters and falling back to the last page otherwise.
func (p *Paginator) SetChapters(chapters []data.Chapter) {
	p.chapters = chapters
	if last := p.TotalPages(); p.page > last {
		p.page = max(last, 1)
	}
}

func (p *Paginator) slice(page int) []data.Chapter {
	start := (page - 1) * p.size
	if start < 0 || start >= len(p.chapters) {
		return nil
	}
	end := min(start+p.size, len(p.chapters))
	return p.chapters[start:end]
}

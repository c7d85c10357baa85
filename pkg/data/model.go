package data

import "time"

type ComicType int

const (
	Manga ComicType = iota
	Western
)

func (t ComicType) String() string {
	switch t {
	case Western:
		return "western"
	default:
		return "manga"
	}
}

// Comic is a search result or a fully resolved title. Chapters and Info are
// only populated once the comic has been opened.
type Comic struct {
	Name       string
	Source     string // canonical locator on the remote site
	SourceName string // registry name of the source that produced it
	Type       ComicType
	Info       *Metadata
	Chapters   []Chapter
}

// Clone returns a deep copy safe to hand to a background task.
func (c Comic) Clone() Comic {
	out := c
	if c.Info != nil {
		info := c.Info.Clone()
		out.Info = &info
	}
	if c.Chapters != nil {
		out.Chapters = make([]Chapter, len(c.Chapters))
		copy(out.Chapters, c.Chapters)
	}
	return out
}

type Chapter struct {
	Name   string
	Source string
}

func NewChapter(name, source string) Chapter {
	return Chapter{Name: name, Source: source}
}

type Metadata struct {
	Status string
	Date   string
	Genres []string
}

func (m Metadata) Clone() Metadata {
	out := m
	if m.Genres != nil {
		out.Genres = append([]string(nil), m.Genres...)
	}
	return out
}

// Download is a finished chapter download as recorded in the library.
type Download struct {
	ID         string
	Comic      string
	Chapter    string
	Source     string
	Dir        string
	EPUBPath   string
	Pages      int
	Failed     int
	FinishedAt time.Time
}

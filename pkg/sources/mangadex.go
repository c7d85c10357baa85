package sources

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/utils"
)

const (
	mangadexAPI  = "https://api.mangadex.org"
	mangadexSite = "https://mangadex.org"
	feedLimit    = 500
)

type mangaDexManga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title    map[string]string `json:"title"`
		Status   string            `json:"status"`
		Year     int               `json:"year"`
		Language string            `json:"originalLanguage"`
		Tags     []struct {
			Attributes struct {
				Name  map[string]string `json:"name"`
				Group string            `json:"group"`
			} `json:"attributes"`
		} `json:"tags"`
	} `json:"attributes"`
}

func (m *mangaDexManga) title() string {
	if t := m.Attributes.Title["en"]; t != "" {
		return t
	}
	for _, t := range m.Attributes.Title {
		return t
	}
	return m.ID
}

func (m *mangaDexManga) comicType() data.ComicType {
	switch m.Attributes.Language {
	case "ja", "ko", "zh", "zh-hk":
		return data.Manga
	default:
		return data.Western
	}
}

type mangaDexChapter struct {
	ID         string `json:"id"`
	Attributes struct {
		Title  string `json:"title"`
		Volume string `json:"volume"`
		Number string `json:"chapter"`
	} `json:"attributes"`
}

func (c *mangaDexChapter) name() string {
	name := "Ch. " + c.Attributes.Number
	if c.Attributes.Number == "" {
		name = "Oneshot"
	}
	if c.Attributes.Volume != "" {
		name = fmt.Sprintf("Vol. %s %s", c.Attributes.Volume, name)
	}
	if c.Attributes.Title != "" {
		name = fmt.Sprintf("%s: %s", name, c.Attributes.Title)
	}
	return name
}

// MangaDex talks to the public MangaDex JSON API.
type MangaDex struct {
	client  *utils.Client
	baseURL string
	site    string
}

func NewMangaDex(client *utils.Client) *MangaDex {
	return &MangaDex{client: client, baseURL: mangadexAPI, site: mangadexSite}
}

func (m *MangaDex) Name() string    { return "mangadex" }
func (m *MangaDex) BaseURL() string { return m.baseURL }

// locatorID extracts the trailing UUID of a title or chapter locator.
func locatorID(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	id := path.Base(strings.TrimSuffix(u.Path, "/"))
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("invalid locator %q", locator)
	}
	return id, nil
}

func (m *MangaDex) Search(ctx context.Context, query string) ([]data.Comic, error) {
	params := url.Values{"title": {query}, "limit": {"25"}}
	var mangas struct {
		Data []mangaDexManga `json:"data"`
	}
	if err := m.client.GetJSON(ctx, m.baseURL, "/manga", params, &mangas); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]data.Comic, len(mangas.Data))
	for i, manga := range mangas.Data {
		out[i] = data.Comic{
			Name:       manga.title(),
			Source:     fmt.Sprintf("%s/title/%s", m.site, manga.ID),
			SourceName: m.Name(),
			Type:       manga.comicType(),
		}
	}
	return out, nil
}

func (m *MangaDex) GetChapters(ctx context.Context, comic data.Comic) ([]data.Chapter, error) {
	id, err := locatorID(comic.Source)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"translatedLanguage[]": {"en"},
		"order[chapter]":       {"asc"},
		"limit":                {strconv.Itoa(feedLimit)},
	}
	var feed struct {
		Data []mangaDexChapter `json:"data"`
	}
	if err := m.client.GetJSON(ctx, m.baseURL, fmt.Sprintf("/manga/%s/feed", id), params, &feed); err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}

	out := make([]data.Chapter, len(feed.Data))
	for i, chapter := range feed.Data {
		out[i] = data.NewChapter(chapter.name(), fmt.Sprintf("%s/chapter/%s", m.site, chapter.ID))
	}
	return out, nil
}

func (m *MangaDex) GetInfo(ctx context.Context, comic data.Comic) (*data.Metadata, error) {
	id, err := locatorID(comic.Source)
	if err != nil {
		return nil, err
	}

	var manga struct {
		Data mangaDexManga `json:"data"`
	}
	if err := m.client.GetJSON(ctx, m.baseURL, "/manga/"+id, nil, &manga); err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	info := &data.Metadata{Status: manga.Data.Attributes.Status}
	if manga.Data.Attributes.Year > 0 {
		info.Date = strconv.Itoa(manga.Data.Attributes.Year)
	}
	for _, tag := range manga.Data.Attributes.Tags {
		if tag.Attributes.Group == "genre" {
			info.Genres = append(info.Genres, tag.Attributes.Name["en"])
		}
	}
	return info, nil
}

func (m *MangaDex) DownloadAssetURLs(ctx context.Context, chapter data.Chapter) ([]string, error) {
	id, err := locatorID(chapter.Source)
	if err != nil {
		return nil, err
	}

	var server struct {
		BaseURL string `json:"baseUrl"`
		Chapter struct {
			Hash string   `json:"hash"`
			Data []string `json:"data"`
		} `json:"chapter"`
	}
	if err := m.client.GetJSON(ctx, m.baseURL, "/at-home/server/"+id, nil, &server); err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}

	pages := make([]string, len(server.Chapter.Data))
	for i, file := range server.Chapter.Data {
		pages[i] = fmt.Sprintf("%s/data/%s/%s", server.BaseURL, server.Chapter.Hash, file)
	}
	return pages, nil
}

package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/utils"
)

const mangapillURL = "https://mangapill.com"

// Mangapill scrapes mangapill.com.
type Mangapill struct {
	client  *utils.Client
	baseURL string
}

func NewMangapill(client *utils.Client) *Mangapill {
	return &Mangapill{client: client, baseURL: mangapillURL}
}

func (m *Mangapill) Name() string    { return "mangapill" }
func (m *Mangapill) BaseURL() string { return m.baseURL }
func (m *Mangapill) Referer() string { return m.baseURL + "/" }

func (m *Mangapill) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := m.client.Get(ctx, rawURL, m.Referer())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	return doc, nil
}

func (m *Mangapill) resolve(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return m.baseURL + href
}

func (m *Mangapill) Search(ctx context.Context, query string) ([]data.Comic, error) {
	q := url.Values{"q": {query}}
	doc, err := m.document(ctx, m.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	needle := strings.ToLower(query)
	var comics []data.Comic
	doc.Find(`div[class~="lg:grid-cols-5"]`).First().Children().Each(func(_ int, s *goquery.Selection) {
		if !strings.Contains(strings.ToLower(s.Text()), needle) {
			return
		}
		name := strings.TrimSpace(s.Find(".leading-tight").First().Text())
		href, ok := s.Find("a").First().Attr("href")
		if name == "" || !ok {
			return
		}
		comics = append(comics, data.Comic{
			Name:       name,
			Source:     m.resolve(href),
			SourceName: m.Name(),
			Type:       data.Manga,
		})
	})
	return comics, nil
}

func (m *Mangapill) GetChapters(ctx context.Context, comic data.Comic) ([]data.Chapter, error) {
	doc, err := m.document(ctx, comic.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}

	var chapters []data.Chapter
	doc.Find("a.border-border").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		chapters = append(chapters, data.NewChapter(strings.TrimSpace(s.Text()), m.resolve(href)))
	})
	return chapters, nil
}

// GetInfo reads the label/value pairs of the details grid. It returns nil
// when the page has no details grid.
func (m *Mangapill) GetInfo(ctx context.Context, comic data.Comic) (*data.Metadata, error) {
	doc, err := m.document(ctx, comic.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	grid := doc.Find(`div[class~="md:grid-cols-3"]`).First()
	if grid.Length() == 0 {
		return nil, nil
	}

	info := &data.Metadata{}
	grid.Find("label").Each(func(_ int, s *goquery.Selection) {
		value := strings.TrimSpace(s.Next().Text())
		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "status":
			info.Status = value
		case "year":
			info.Date = value
		}
	})
	doc.Find(`a[href*="genre="]`).Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			info.Genres = append(info.Genres, g)
		}
	})
	return info, nil
}

func (m *Mangapill) DownloadAssetURLs(ctx context.Context, chapter data.Chapter) ([]string, error) {
	doc, err := m.document(ctx, chapter.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter page: %w", err)
	}

	var urls []string
	doc.Find("img.js-page").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("data-src")
		if !ok || src == "" {
			src, ok = s.Attr("src")
		}
		if ok && src != "" {
			urls = append(urls, m.resolve(src))
		}
	})
	return urls, nil
}

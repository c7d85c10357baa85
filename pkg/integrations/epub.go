package integrations

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-shiori/go-epub"
)

var ErrNoPages = errors.New("no usable pages")

// EPubBuilder packs one downloaded chapter into an EPUB next to the other
// books in outputDir.
type EPubBuilder struct {
	outputDir string
	pages     *PageNormalizer
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir, pages: NewPageNormalizer()}
}

// Pack writes "<comic> - <chapter>.epub". Pages that fail to decode are
// skipped; an EPUB with no pages is an error.
func (b *EPubBuilder) Pack(ctx context.Context, comic, chapter, dir string) (string, error) {
	files, err := pageFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoPages
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	work, err := os.MkdirTemp("", "nika-epub-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(work)

	title := comic
	if chapter != "" {
		title = fmt.Sprintf("%s - %s", comic, chapter)
	}
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor(comic)
	e.SetLang("en")

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(chapter)))

	added := 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		path, err := b.pages.Prepare(filepath.Join(dir, name), work)
		if err != nil {
			log.Printf("[epub] skipping %s: %v", name, err)
			continue
		}
		internal, err := e.AddImage(path, "")
		if err != nil {
			return "", fmt.Errorf("failed to add image %s: %w", name, err)
		}
		added++
		body.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			internal, added, "\n",
		))
	}
	if added == 0 {
		return "", ErrNoPages
	}

	if _, err := e.AddSection(body.String(), chapter, "", ""); err != nil {
		return "", fmt.Errorf("failed to add section: %w", err)
	}

	out := filepath.Join(b.outputDir, sanitizeFilename(title)+".epub")
	if err := e.Write(out); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	return out, nil
}

// pageFiles lists page-N.* files ordered by N.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := pageIndex(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := pageIndex(names[i])
		b, _ := pageIndex(names[j])
		return a < b
	})
	return names, nil
}

func pageIndex(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	n, ok := strings.CutPrefix(stem, "page-")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n)
	return i, err == nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}

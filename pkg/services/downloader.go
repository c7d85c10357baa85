package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nika-tui/nika/pkg/app/action"
	"github.com/nika-tui/nika/pkg/app/bus"
	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/integrations"
	"github.com/nika-tui/nika/pkg/sources"
	"github.com/nika-tui/nika/pkg/utils"
	"golang.org/x/sync/errgroup"
)

var ErrNoAssets = errors.New("chapter has no pages")

const chunkSize = 32 * 1024

// Repository records finished downloads.
type Repository interface {
	SaveDownload(d *data.Download) error
}

// Downloader fetches every page of a chapter in parallel into its own
// directory, reporting progress as deltas on the bus.
type Downloader struct {
	client      *utils.Client
	downloadDir string
	limit       int

	repo   Repository
	packer integrations.Packer
}

func NewDownloader(client *utils.Client, downloadDir string, limit int) *Downloader {
	if limit <= 0 {
		limit = 8
	}
	return &Downloader{client: client, downloadDir: downloadDir, limit: limit}
}

// WithRepository records each finished download in repo.
func (d *Downloader) WithRepository(repo Repository) *Downloader {
	d.repo = repo
	return d
}

// WithPacker bundles each finished download with p.
func (d *Downloader) WithPacker(p integrations.Packer) *Downloader {
	d.packer = p
	return d
}

type PageResult struct {
	Index int
	URL   string
	Path  string
	Bytes int64
	Err   error
}

type Result struct {
	Dir   string
	Pages []PageResult
	EPUB  string
}

// Failed lists the indices of pages that did not download.
func (r *Result) Failed() []int {
	var failed []int
	for _, p := range r.Pages {
		if p.Err != nil {
			failed = append(failed, p.Index)
		}
	}
	return failed
}

// Download writes page-0 … page-N of chapter into a fresh directory. A page
// failing does not stop the others; the result lists which ones failed. The
// error is non-nil only when nothing could be fetched or ctx was cancelled,
// and then the directory is removed again.
func (d *Downloader) Download(ctx context.Context, src sources.Source, comic string, chapter data.Chapter, tx action.Sender) (*Result, error) {
	urls, err := src.DownloadAssetURLs(ctx, chapter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages of %s: %w", chapter.Name, err)
	}
	if len(urls) == 0 {
		return nil, ErrNoAssets
	}

	var referer string
	if r, ok := src.(sources.Referer); ok {
		referer = r.Referer()
	}

	dir := filepath.Join(d.downloadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	sizes := d.probe(ctx, urls, referer)
	var total int64
	for _, size := range sizes {
		total += size
	}

	t := &transfer{
		label: ProgressLabel(chapter),
		total: total,
		tx:    tx,
	}

	result := &Result{Dir: dir, Pages: make([]PageResult, len(urls))}
	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, u := range urls {
		g.Go(func() error {
			result.Pages[i] = d.fetch(ctx, t, i, u, referer, dir, sizes[i])
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		discard(dir)
		return result, err
	}

	failed := result.Failed()
	if len(failed) == len(urls) {
		discard(dir)
		return result, fmt.Errorf("all %d pages failed: %w", len(urls), result.Pages[0].Err)
	}
	if len(failed) > 0 {
		log.Printf("[download] %s: %d/%d pages failed", chapter.Name, len(failed), len(urls))
	}

	if d.packer != nil {
		result.EPUB, err = d.packer.Pack(ctx, comic, chapter.Name, dir)
		if err != nil {
			log.Printf("[download] failed to pack %s: %v", chapter.Name, err)
		}
	}

	if d.repo != nil {
		record := &data.Download{
			ID:         filepath.Base(dir),
			Comic:      comic,
			Chapter:    chapter.Name,
			Source:     src.Name(),
			Dir:        dir,
			EPUBPath:   result.EPUB,
			Pages:      len(urls),
			Failed:     len(failed),
			FinishedAt: time.Now(),
		}
		if err := d.repo.SaveDownload(record); err != nil {
			log.Printf("[download] failed to record %s: %v", chapter.Name, err)
		}
	}

	return result, nil
}

// discard removes the partial pages of a download that produced nothing usable.
func discard(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("[download] failed to remove %s: %v", dir, err)
	}
}

// ProgressLabel is the operation name carried by the progress updates of a
// chapter download.
func ProgressLabel(chapter data.Chapter) string {
	return "Downloading " + chapter.Name
}

// probe asks every asset for its size concurrently. Unknown or failed sizes
// count as zero.
func (d *Downloader) probe(ctx context.Context, urls []string, referer string) []int64 {
	sizes := make([]int64, len(urls))

	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, u := range urls {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
			if err != nil {
				return nil
			}
			if referer != "" {
				req.Header.Set("Referer", referer)
			}
			resp, err := d.client.Do(req)
			if err != nil {
				log.Printf("[download] HEAD %s: %v", u, err)
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
				sizes[i] = resp.ContentLength
			}
			return nil
		})
	}
	g.Wait()
	return sizes
}

// transfer is the progress state shared by the page tasks of one download.
type transfer struct {
	label  string
	total  int64
	tx     action.Sender
	closed atomic.Bool
}

// report emits n/total. It returns false once the bus is gone.
func (t *transfer) report(n int64) bool {
	if t.total == 0 || n <= 0 || t.closed.Load() {
		return !t.closed.Load()
	}
	err := t.tx.Send(action.ProgressUpdate{
		Operation: t.label,
		Delta:     float64(n) / float64(t.total),
	})
	if errors.Is(err, bus.ErrClosed) {
		t.closed.Store(true)
		return false
	}
	return true
}

func (d *Downloader) fetch(ctx context.Context, t *transfer, index int, u, referer, dir string, declared int64) PageResult {
	res := PageResult{Index: index, URL: u}

	resp, err := d.client.Get(ctx, u, referer)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Path = filepath.Join(dir, fmt.Sprintf("page-%d%s", index, extension(u, resp.Header.Get("Content-Type"))))
	f, err := os.Create(res.Path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	// Deltas are capped at the size the probe saw so the download as a
	// whole never reports more than one.
	var reported int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				res.Err = err
				return res
			}
			res.Bytes += int64(n)

			step := min(int64(n), declared-reported)
			reported += max(step, 0)
			if !t.report(step) {
				res.Err = bus.ErrClosed
				return res
			}
		}
		if rerr == io.EOF {
			return res
		}
		if rerr != nil {
			res.Err = fmt.Errorf("failed to read page %d: %w", index, rerr)
			return res
		}
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// extension picks the file extension from the URL path, then the content
// type, then falls back to .jpg.
func extension(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); len(ext) > 1 && len(ext) <= 5 {
			return ext
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := imageExtensions[mediaType]; ok {
			return ext
		}
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ".jpg"
}

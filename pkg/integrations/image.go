package integrations

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	// Decoders for the formats sources serve.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 1600
	DefaultMaxHeight = 2560
	DefaultQuality   = 90
)

// PageNormalizer makes downloaded pages safe to embed in an EPUB: formats
// readers cannot show are re-encoded as JPEG and oversized pages are scaled
// down.
type PageNormalizer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewPageNormalizer() *PageNormalizer {
	return &PageNormalizer{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Quality:   DefaultQuality,
	}
}

// Prepare returns a path to an embeddable version of the page at path. Pages
// that need no work are returned as is; others are written to workDir.
func (p *PageNormalizer) Prepare(path, workDir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	width, height := p.calculateDimensions(cfg.Width, cfg.Height)
	resize := width != cfg.Width || height != cfg.Height
	if !resize && embeddable(format) {
		return path, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if resize {
		img = p.resize(img, width, height)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".jpg"
	out, err := os.Create(filepath.Join(workDir, name))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return out.Name(), nil
}

func embeddable(format string) bool {
	return format == "jpeg" || format == "png" || format == "gif"
}

// calculateDimensions fits width x height inside the maximum, keeping the
// aspect ratio.
func (p *PageNormalizer) calculateDimensions(width, height int) (int, int) {
	if width <= p.MaxWidth && height <= p.MaxHeight {
		return width, height
	}

	scale := min(float64(p.MaxWidth)/float64(width), float64(p.MaxHeight)/float64(height))
	return max(int(float64(width)*scale), 1), max(int(float64(height)*scale), 1)
}

func (p *PageNormalizer) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/yuanying/epubtext/internal/epub"
)

// maxCoverPixels bounds the decoded size of a cover image (width * height).
const maxCoverPixels = 100 * 1000 * 1000

// ErrUnsupportedImage reports cover bytes that are not a decodable raster image.
var ErrUnsupportedImage = errors.New("unsupported cover image")

// Cover is a detected cover image as stored in the archive.
type Cover struct {
	Info  *epub.CoverInfo
	Title string
	Data  []byte
}

// Thumbnail is a cover scaled down and re-encoded as JPEG.
type Thumbnail struct {
	Data       []byte
	Width      int
	Height     int
	SourcePath string
	SourceType string // MIME type sniffed from the cover bytes
}

// ExtractCover returns the raw cover image of the book at path. A book
// without a detectable cover fails with epub.ErrNoCover.
func (e *Engine) ExtractCover(path string) (*Cover, error) {
	log := e.log.With(zap.String("book", path))

	book, err := epub.OpenBook(path)
	if err != nil {
		log.Error("Unable to read book", zap.String("kind", epub.Kind(err)), zap.Error(err))
		return nil, err
	}
	defer book.Close()

	info, data, err := epub.ReadCover(book.Archive, book.Package)
	if err != nil {
		log.Warn("Cover not available", zap.Error(err))
		return nil, err
	}
	log.Debug("Cover found",
		zap.String("path", info.Path),
		zap.String("method", info.DetectionMethod))
	return &Cover{Info: info, Title: book.Package.Title, Data: data}, nil
}

// CoverThumbnail extracts the cover of the book at path and scales it to the
// configured width.
func (e *Engine) CoverThumbnail(path string) (*Thumbnail, *Cover, error) {
	cover, err := e.ExtractCover(path)
	if err != nil {
		return nil, nil, err
	}
	thumb, err := MakeThumbnail(cover.Data, e.opts.CoverWidth, e.opts.CoverQuality)
	if err != nil {
		e.log.Warn("Unable to build cover thumbnail",
			zap.String("book", path),
			zap.String("cover", cover.Info.Path),
			zap.Error(err))
		return nil, cover, err
	}
	thumb.SourcePath = cover.Info.Path
	return thumb, cover, nil
}

// WriteCoverThumbnail builds the cover thumbnail of the book at path and
// writes it into dir under CoverFileName(title, path, id). It returns the
// written file path.
func (e *Engine) WriteCoverThumbnail(path, dir, id string) (string, error) {
	thumb, cover, err := e.CoverThumbnail(path)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, CoverFileName(cover.Title, path, id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create cover directory: %w", err)
	}
	if err := os.WriteFile(out, thumb.Data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write cover: %w", err)
	}
	return out, nil
}

// MakeThumbnail decodes a raster image, shrinks it to at most width pixels
// wide keeping the aspect ratio, flattens transparency onto white and
// encodes the result as JPEG.
func MakeThumbnail(data []byte, width, quality int) (*Thumbnail, error) {
	if !filetype.IsImage(data) {
		return nil, ErrUnsupportedImage
	}
	kind, _ := filetype.Match(data)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedImage, kind.MIME.Value, err)
	}
	if pixels := uint64(cfg.Width) * uint64(cfg.Height); pixels > maxCoverPixels {
		return nil, fmt.Errorf("%w: image too large to decode: %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}

	if width > 0 && src.Bounds().Dx() > width {
		src = imaging.Resize(src, width, 0, imaging.Lanczos)
	}
	b := src.Bounds()
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), src, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &Thumbnail{
		Data:       buf.Bytes(),
		Width:      b.Dx(),
		Height:     b.Dy(),
		SourceType: kind.MIME.Value,
	}, nil
}

// CoverFileName names a cover thumbnail after the book title, falling back
// to the archive's base name. A non-empty id is appended so that books
// sharing a title get distinct files.
func CoverFileName(title, bookPath, id string) string {
	name := slug.Make(title)
	if name == "" {
		base := filepath.Base(bookPath)
		name = slug.Make(base[:len(base)-len(filepath.Ext(base))])
	}
	if name == "" {
		name = "cover"
	}
	if id != "" {
		name += "-" + slug.Make(id)
	}
	return name + ".jpg"
}

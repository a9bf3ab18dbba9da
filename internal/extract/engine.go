// Package extract runs the top-level extraction operations over EPUB files
// and shapes their results for callers.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanying/epubtext/internal/epub"
)

const (
	defaultCoverWidth   = 300
	defaultCoverQuality = 85
	defaultWorkers      = 4
)

// Format selects how chapter content is rendered.
type Format int

const (
	FormatText Format = iota
	FormatMarkdown
)

func (f Format) String() string {
	if f == FormatMarkdown {
		return "markdown"
	}
	return "text"
}

// ParseFormat parses "text" or "markdown". An empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimSpace(s) {
	case "", "text":
		return FormatText, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return FormatText, fmt.Errorf("chapter format must be text or markdown, got %q", s)
}

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	Pairing      epub.LabelPairing
	Format       Format
	CoverWidth   int
	CoverQuality int
	Workers      int
}

// Engine performs extraction calls. Every call opens and releases its own
// archive handle, so an Engine may be used from several goroutines.
type Engine struct {
	log  *zap.Logger
	opts Options
}

// New returns an Engine logging to log. A nil logger discards output.
func New(log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CoverWidth <= 0 {
		opts.CoverWidth = defaultCoverWidth
	}
	if opts.CoverQuality <= 0 || opts.CoverQuality > 100 {
		opts.CoverQuality = defaultCoverQuality
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Engine{log: log, opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Metadata extracts title, author and table of contents from the book at
// path. Structural failures are returned in the report's Fatal field and
// leave the metadata empty.
func (e *Engine) Metadata(path string) (epub.BookMetadata, *epub.Report) {
	log := e.log.With(zap.String("book", path))

	book, err := epub.OpenBook(path)
	if err != nil {
		rep := &epub.Report{Fatal: err}
		log.Error("Unable to read book", zap.String("kind", epub.Kind(err)), zap.Error(err))
		return epub.BookMetadata{Toc: []epub.TocEntry{}}, rep
	}
	defer book.Close()

	meta := book.Metadata(e.opts.Pairing)
	e.logAnomalies(log, book.Report)
	log.Debug("Metadata extracted",
		zap.String("title", meta.Title),
		zap.Int("chapters", meta.ChapterCount),
		zap.Int("toc", len(meta.Toc)))
	return meta, book.Report
}

// ParseMeta is Metadata shaped for transport. On failure the response is the
// empty shape and the report says why.
func (e *Engine) ParseMeta(path string) (MetaResponse, *epub.Report) {
	meta, rep := e.Metadata(path)
	if rep.Fatal != nil {
		return EmptyMeta(), rep
	}
	return NewMetaResponse(meta), rep
}

// Chapter extracts the spine item at index rendered in the given format.
func (e *Engine) Chapter(path string, index int, format Format) (epub.ChapterContent, error) {
	log := e.log.With(zap.String("book", path), zap.Int("chapter", index))

	content, err := e.chapter(path, index, format)
	if err != nil {
		log.Error("Unable to extract chapter", zap.String("kind", epub.Kind(err)), zap.Error(err))
		return epub.ChapterContent{Index: index}, err
	}
	log.Debug("Chapter extracted",
		zap.String("path", content.Path),
		zap.Stringer("format", format),
		zap.Int("length", len(content.Text)))
	return content, nil
}

func (e *Engine) chapter(path string, index int, format Format) (epub.ChapterContent, error) {
	book, err := epub.OpenBook(path)
	if err != nil {
		return epub.ChapterContent{}, err
	}
	defer book.Close()

	if format != FormatMarkdown {
		return book.Chapter(index)
	}

	p, data, err := epub.ChapterSource(book.Archive, book.Package, index)
	if err != nil {
		return epub.ChapterContent{}, err
	}
	content, err := epub.LoadContent(p, data)
	if err != nil {
		return epub.ChapterContent{}, err
	}
	md, err := renderMarkdown(content)
	if err != nil {
		return epub.ChapterContent{}, fmt.Errorf("chapter %d: %w", index, err)
	}
	return epub.ChapterContent{Index: index, Path: p, Text: md}, nil
}

// ParseContent is Chapter in the configured format, shaped for transport. On
// failure the response carries empty content and the error is returned for
// the caller to classify.
func (e *Engine) ParseContent(path string, index int) (ContentResponse, error) {
	content, err := e.Chapter(path, index, e.opts.Format)
	if err != nil {
		return ContentResponse{}, err
	}
	return ContentResponse{ChapterContent: content.Text}, nil
}

func (e *Engine) logAnomalies(log *zap.Logger, rep *epub.Report) {
	for _, a := range rep.Anomalies {
		log.Warn("Book degraded",
			zap.String("stage", a.Stage),
			zap.String("kind", epub.Kind(a.Err)),
			zap.Error(a.Err))
	}
}

// IsStructural reports whether err invalidates the whole book rather than a
// single feature of it.
func IsStructural(err error) bool {
	return errors.Is(err, epub.ErrArchive) ||
		errors.Is(err, epub.ErrContainer) ||
		errors.Is(err, epub.ErrPackage)
}

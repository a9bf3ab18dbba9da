package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yuanying/epubtext/internal/epub"
	"github.com/yuanying/epubtext/internal/store"
)

// ImportResult describes one imported book.
type ImportResult struct {
	Book   *store.Book
	Report *epub.Report
}

// Import extracts the book at path and saves its metadata and every chapter
// to st. Chapters are extracted concurrently, each call with its own archive
// handle. A chapter that cannot be extracted is saved empty and recorded in
// the report. When coverDir is not empty a cover thumbnail is written there.
//
// Only structural failures, store failures and cancellation abort the import.
func (e *Engine) Import(ctx context.Context, path string, st store.Store, coverDir string) (*ImportResult, error) {
	log := e.log.With(zap.String("book", path))

	meta, rep := e.Metadata(path)
	if rep.Fatal != nil {
		return &ImportResult{Report: rep}, rep.Fatal
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	book := &store.Book{
		Title:        meta.Title,
		Author:       meta.Author,
		Language:     meta.Language,
		Identifier:   meta.Identifier,
		FilePath:     abs,
		ChapterCount: meta.ChapterCount,
		Toc:          make([]store.TocEntry, 0, len(meta.Toc)),
		ImportedAt:   time.Now().UTC(),
	}
	for _, t := range meta.Toc {
		book.Toc = append(book.Toc, store.TocEntry{Title: t.Title, ContentSrc: t.ContentSrc, Index: t.Order})
	}

	if err := st.SaveBook(book); err != nil {
		return &ImportResult{Book: book, Report: rep}, fmt.Errorf("unable to save book: %w", err)
	}

	if coverDir != "" {
		out, err := e.WriteCoverThumbnail(path, coverDir, book.ID)
		if err != nil {
			rep.Add(epub.StageCover, err)
		} else {
			book.CoverImagePath = out
			if err := st.SaveBook(book); err != nil {
				return &ImportResult{Book: book, Report: rep}, fmt.Errorf("unable to save book: %w", err)
			}
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := 0; i < meta.ChapterCount; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := e.Chapter(path, i, e.opts.Format)
			if err != nil {
				mu.Lock()
				rep.Add(epub.StageChapter, fmt.Errorf("chapter %d: %w", i, err))
				mu.Unlock()
			}
			if err := st.SaveChapter(&store.Chapter{BookID: book.ID, Index: i, Content: content.Text}); err != nil {
				return fmt.Errorf("unable to save chapter %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &ImportResult{Book: book, Report: rep}, err
	}

	log.Info("Book imported",
		zap.String("id", book.ID),
		zap.String("title", book.Title),
		zap.Int("chapters", book.ChapterCount),
		zap.Int("anomalies", len(rep.Anomalies)))
	return &ImportResult{Book: book, Report: rep}, nil
}

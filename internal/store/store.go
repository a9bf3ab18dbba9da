// Package store persists extracted books and chapters.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book or chapter is not stored.
var ErrNotFound = errors.New("not found")

// Book is a stored book record.
type Book struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	Language       string     `json:"language,omitempty"`
	Identifier     string     `json:"identifier,omitempty"`
	FilePath       string     `json:"filePath"`
	CoverImagePath string     `json:"coverImagePath,omitempty"`
	ChapterCount   int        `json:"chapterCount"`
	Toc            []TocEntry `json:"toc"`
	ImportedAt     time.Time  `json:"importedAt"`
}

// TocEntry is a stored table of contents entry.
type TocEntry struct {
	Title      string `json:"title"`
	ContentSrc string `json:"contentSrc"`
	Index      int    `json:"index"`
}

// Chapter is the stored text of one spine item.
type Chapter struct {
	BookID  string `json:"bookId"`
	Index   int    `json:"chapterIndex"`
	Content string `json:"content"`
}

// Store accepts the values produced by extraction.
type Store interface {
	// SaveBook stores b, assigning a new ID when b.ID is empty.
	SaveBook(b *Book) error
	SaveChapter(c *Chapter) error
	Book(id string) (*Book, error)
	Chapter(bookID string, index int) (*Chapter, error)
	// Chapters returns the stored chapters of a book ordered by index.
	Chapters(bookID string) ([]*Chapter, error)
	ListBooks() ([]*Book, error)
	Close() error
}

package epub

import "io"

// Book is one extraction session over an open archive: the container has been
// resolved and the package document parsed. A Book must be closed.
type Book struct {
	Archive *Archive
	Package *PackageDocument
	Report  *Report
}

// OpenBook opens the archive at path and parses its package document. Any
// failure releases the archive before returning.
func OpenBook(path string) (*Book, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	return openBook(a)
}

// ReadBook is OpenBook for an in-memory archive.
func ReadBook(r io.ReaderAt, size int64) (*Book, error) {
	a, err := NewArchive(r, size)
	if err != nil {
		return nil, err
	}
	return openBook(a)
}

func openBook(a *Archive) (*Book, error) {
	rep := &Report{}

	opfPath, err := LocatePackageDocument(a)
	if err != nil {
		a.Close()
		return nil, err
	}

	pkg, err := ParsePackage(a, opfPath, rep)
	if err != nil {
		a.Close()
		return nil, err
	}

	return &Book{Archive: a, Package: pkg, Report: rep}, nil
}

// Close releases the archive.
func (b *Book) Close() error {
	return b.Archive.Close()
}

// Metadata returns title, author and table of contents. TOC problems are
// recorded in b.Report and leave the TOC empty.
func (b *Book) Metadata(pairing LabelPairing) BookMetadata {
	return BookMetadata{
		Title:        b.Package.Title,
		Author:       b.Package.Author,
		Language:     b.Package.Language,
		Identifier:   b.Package.Identifier,
		ChapterCount: b.Package.ChapterCount(),
		Toc:          ResolveToc(b.Archive, b.Package, pairing, b.Report),
	}
}

// Chapter returns the plain text of the spine item at index.
func (b *Book) Chapter(index int) (ChapterContent, error) {
	return ExtractChapter(b.Archive, b.Package, index)
}

package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Archive is an open OCF container. It owns the underlying file for the
// duration of one extraction call and must be closed by the caller.
// Entries may be read repeatedly and in any order.
type Archive struct {
	zr      *zip.Reader
	closer  io.Closer
	entries map[string]*zip.File
}

// OpenArchive opens the zip container at path.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArchive, path, err)
	}
	return newArchive(&rc.Reader, rc), nil
}

// NewArchive wraps an in-memory or otherwise random-access zip container.
// Closing the returned Archive does not close r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	return newArchive(zr, nil), nil
}

func newArchive(zr *zip.Reader, closer io.Closer) *Archive {
	a := &Archive{
		zr:      zr,
		closer:  closer,
		entries: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		name := normalizeEntryName(f.Name)
		// first entry wins on duplicate names, as with a sequential lookup
		if _, ok := a.entries[name]; !ok {
			a.entries[name] = f
		}
	}
	return a
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Has reports whether the archive contains an entry named name.
func (a *Archive) Has(name string) bool {
	_, ok := a.entries[normalizeEntryName(name)]
	return ok
}

// ReadEntry returns the decompressed contents of the entry named name.
// Names are archive keys and always use forward slashes.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	name = normalizeEntryName(name)
	f, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	return data, nil
}

// Entries returns the sorted names of all file entries.
func (a *Archive) Entries() []string {
	names := make([]string, 0, len(a.entries))
	for name, f := range a.entries {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeEntryName removes a leading "./" which some producers write.
func normalizeEntryName(name string) string {
	return strings.TrimPrefix(name, "./")
}

package epub

import "errors"

var (
	// ErrArchive reports that the container could not be opened as a zip archive.
	ErrArchive = errors.New("unable to open archive")
	// ErrContainer reports a missing or unusable META-INF/container.xml.
	ErrContainer = errors.New("invalid container document")
	// ErrPackage reports a missing or unparsable package (OPF) document.
	ErrPackage = errors.New("invalid package document")
	// ErrEntryNotFound reports that a referenced internal path is absent from the archive.
	ErrEntryNotFound = errors.New("archive entry not found")
	// ErrChapterNotFound reports a spine item without a manifest entry or archive entry.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrChapterIndex reports a chapter index outside the spine.
	ErrChapterIndex = errors.New("chapter index out of range")
	// ErrXMLParse reports malformed XML.
	ErrXMLParse = errors.New("malformed xml")
	// ErrNoCover reports that no cover image could be located.
	ErrNoCover = errors.New("cover image not found")
)

// kinds is ordered from most to least specific so wrapped chains classify
// by the failure the caller can act on.
var kinds = []struct {
	err  error
	name string
}{
	{ErrChapterIndex, "chapter-index"},
	{ErrChapterNotFound, "chapter-not-found"},
	{ErrArchive, "archive"},
	{ErrContainer, "container"},
	{ErrPackage, "package"},
	{ErrNoCover, "no-cover"},
	{ErrEntryNotFound, "entry-not-found"},
	{ErrXMLParse, "xml"},
}

// Kind returns the short taxonomy name of err, or "unknown" when err does not
// wrap any of the package errors. A nil error has an empty kind.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}

package epub

import (
	"errors"
	"fmt"
)

// ChapterSource returns the archive path and raw bytes of the spine item at
// index. The archive is not touched when index is out of range.
func ChapterSource(a *Archive, pkg *PackageDocument, index int) (string, []byte, error) {
	if index < 0 || index >= len(pkg.Spine) {
		return "", nil, fmt.Errorf("%w: %d not in [0, %d)", ErrChapterIndex, index, len(pkg.Spine))
	}

	idref := pkg.Spine[index]
	item, ok := pkg.Manifest[idref]
	if !ok {
		return "", nil, fmt.Errorf("%w: spine item %d refers to unknown manifest id %q",
			ErrChapterNotFound, index, idref)
	}

	p, data, err := readResolved(a, pkg.Path, item.Href)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return p, nil, fmt.Errorf("%w: manifest item %q: %w", ErrChapterNotFound, idref, err)
		}
		return p, nil, err
	}
	return p, data, nil
}

// ExtractChapter returns the plain text of the spine item at index.
func ExtractChapter(a *Archive, pkg *PackageDocument, index int) (ChapterContent, error) {
	p, data, err := ChapterSource(a, pkg, index)
	if err != nil {
		return ChapterContent{}, err
	}

	content, err := LoadContent(p, data)
	if err != nil {
		return ChapterContent{}, err
	}

	return ChapterContent{
		Index: index,
		Path:  p,
		Text:  content.Text(),
	}, nil
}

// readResolved resolves href against base and reads the entry, retrying with
// the percent-decoded path when the literal one is absent. The fragment, if
// any, is dropped.
func readResolved(a *Archive, base, href string) (string, []byte, error) {
	target, _ := splitFragment(href)
	p := ResolvePath(base, target)

	data, err := a.ReadEntry(p)
	if err == nil || !errors.Is(err, ErrEntryNotFound) {
		return p, data, err
	}
	if alt, ok := unescapedVariant(p); ok && a.Has(alt) {
		data, altErr := a.ReadEntry(alt)
		return alt, data, altErr
	}
	return p, nil, err
}

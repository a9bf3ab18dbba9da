package epub

import (
	"fmt"
	"strings"
)

// LocatePackageDocument reads META-INF/container.xml and returns the archive
// path of the package document named by the first rootfile element.
func LocatePackageDocument(a *Archive) (string, error) {
	data, err := a.ReadEntry(ContainerPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContainer, err)
	}

	doc, err := ParseXML(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContainer, err)
	}

	rootfile, ok := doc.First("rootfile")
	if !ok {
		return "", fmt.Errorf("%w: no rootfile element", ErrContainer)
	}
	fullPath, ok := rootfile.Attr("full-path")
	fullPath = strings.TrimSpace(fullPath)
	if !ok || fullPath == "" {
		return "", fmt.Errorf("%w: rootfile has no full-path", ErrContainer)
	}
	return normalizeEntryName(toSlash(fullPath)), nil
}

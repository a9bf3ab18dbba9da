package epub

import (
	"fmt"
	"path"
	"strings"
)

// CoverInfo holds information about the detected cover image.
type CoverInfo struct {
	ManifestID      string
	Path            string // archive path
	MediaType       string
	DetectionMethod string // "properties", "meta", "guide", "filename"
}

// DetectCover detects the cover image from the manifest. Methods are tried in
// priority order:
//  1. properties="cover-image" (EPUB 3)
//  2. <meta name="cover"> pointing at an image item (EPUB 2)
//  3. <guide><reference type="cover"> pointing directly at an image item
//  4. an image item whose basename contains "cover" (SVG excluded)
//
// Returns nil if no cover image is found.
func DetectCover(pkg *PackageDocument) *CoverInfo {
	items := pkg.Items()

	for _, item := range items {
		if !isImageMediaType(item.MediaType) {
			continue
		}
		for _, prop := range item.Properties {
			if strings.EqualFold(prop, "cover-image") {
				return newCoverInfo(pkg, item, "properties")
			}
		}
	}

	if pkg.CoverID != "" {
		if item, ok := pkg.Manifest[pkg.CoverID]; ok && isImageMediaType(item.MediaType) {
			return newCoverInfo(pkg, item, "meta")
		}
	}

	for _, ref := range pkg.Guide {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		target, _ := splitFragment(ref.Href)
		want := ResolvePath(pkg.Path, target)
		for _, item := range items {
			if isImageMediaType(item.MediaType) && ResolvePath(pkg.Path, item.Href) == want {
				return newCoverInfo(pkg, item, "guide")
			}
		}
	}

	for _, item := range items {
		if !isImageMediaType(item.MediaType) || item.MediaType == "image/svg+xml" {
			continue
		}
		if strings.Contains(strings.ToLower(path.Base(toSlash(item.Href))), "cover") {
			return newCoverInfo(pkg, item, "filename")
		}
	}

	return nil
}

// ReadCover detects the cover image and reads its bytes.
func ReadCover(a *Archive, pkg *PackageDocument) (*CoverInfo, []byte, error) {
	info := DetectCover(pkg)
	if info == nil {
		return nil, nil, ErrNoCover
	}
	item := pkg.Manifest[info.ManifestID]
	p, data, err := readResolved(a, pkg.Path, item.Href)
	if err != nil {
		return info, nil, fmt.Errorf("%w: %w", ErrNoCover, err)
	}
	info.Path = p
	return info, data, nil
}

func newCoverInfo(pkg *PackageDocument, item ManifestItem, method string) *CoverInfo {
	return &CoverInfo{
		ManifestID:      item.ID,
		Path:            ResolvePath(pkg.Path, item.Href),
		MediaType:       item.MediaType,
		DetectionMethod: method,
	}
}

func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), "image/")
}

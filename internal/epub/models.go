package epub

// NCXMediaType is the media type of the legacy NCX table of contents.
const NCXMediaType = "application/x-dtbncx+xml"

// ContainerPath is the fixed location of the OCF container document.
const ContainerPath = "META-INF/container.xml"

// PackageDocument represents the parsed package (OPF) document.
type PackageDocument struct {
	Path       string // archive path of the OPF document
	Title      string
	Author     string
	Language   string
	Identifier string
	CoverID    string // manifest id from <meta name="cover">

	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string                // ids in document order
	ByMediaType   map[string]ManifestItem // first item per media type
	Spine         []string                // idrefs in reading order
	Guide         []GuideReference
}

// GuideReference is an EPUB 2 <guide><reference> entry.
type GuideReference struct {
	Type  string
	Title string
	Href  string
}

// ManifestItem represents an item in the manifest. Href is verbatim and
// relative to the package document's directory.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// TocEntry is one entry of the table of contents, in NCX document order.
// Order indexes the TOC listing itself and is not a spine position.
type TocEntry struct {
	Title      string
	ContentSrc string // verbatim src attribute
	Path       string // archive path of ContentSrc without fragment
	Fragment   string
	Order      int
}

// BookMetadata is the result of metadata extraction.
type BookMetadata struct {
	Title        string
	Author       string
	Language     string
	Identifier   string
	ChapterCount int
	Toc          []TocEntry
}

// ChapterContent is the result of chapter extraction.
type ChapterContent struct {
	Index int
	Path  string
	Text  string
}

// ChapterCount returns the number of spine entries.
func (p *PackageDocument) ChapterCount() int {
	return len(p.Spine)
}

// Items returns manifest items in document order.
func (p *PackageDocument) Items() []ManifestItem {
	items := make([]ManifestItem, 0, len(p.ManifestOrder))
	for _, id := range p.ManifestOrder {
		items = append(items, p.Manifest[id])
	}
	return items
}

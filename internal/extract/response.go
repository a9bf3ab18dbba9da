package extract

import "github.com/yuanying/epubtext/internal/epub"

// TocItem is one table of contents entry in a MetaResponse.
type TocItem struct {
	Title      string `json:"title"`
	ContentSrc string `json:"contentSrc"`
	Index      int    `json:"index"`
}

// MetaResponse is the transport shape of a metadata extraction.
type MetaResponse struct {
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Toc    []TocItem `json:"toc"`
}

// ContentResponse is the transport shape of a chapter extraction.
type ContentResponse struct {
	ChapterContent string `json:"chapterContent"`
}

// EmptyMeta is the response of a failed metadata extraction. Its toc
// serializes as an empty list, not null.
func EmptyMeta() MetaResponse {
	return MetaResponse{Toc: []TocItem{}}
}

// NewMetaResponse converts extracted metadata to its transport shape.
func NewMetaResponse(meta epub.BookMetadata) MetaResponse {
	resp := MetaResponse{
		Title:  meta.Title,
		Author: meta.Author,
		Toc:    make([]TocItem, 0, len(meta.Toc)),
	}
	for _, t := range meta.Toc {
		resp.Toc = append(resp.Toc, TocItem{Title: t.Title, ContentSrc: t.ContentSrc, Index: t.Order})
	}
	return resp
}

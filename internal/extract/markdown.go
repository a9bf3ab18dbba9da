package extract

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/yuanying/epubtext/internal/epub"
)

// renderMarkdown converts the body of a content document to Markdown.
func renderMarkdown(c *epub.Content) (string, error) {
	body, err := c.BodyHTML()
	if err != nil {
		return "", fmt.Errorf("unable to serialize %s: %w", c.Path, err)
	}
	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("unable to convert %s to markdown: %w", c.Path, err)
	}
	return strings.TrimSpace(md), nil
}

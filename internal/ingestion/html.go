package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<\s*(html|body|div|p|br|ul|ol|li|span|h[1-6]|table|tr|td|strong|em|b|i|a|section)\b[^>]*>`)

// noiseSelectors are removed before text extraction.
var noiseSelectors = strings.Join([]string{
	"script", "style", "noscript", "nav", "footer", "header", "form",
	".cookie-banner", ".cookie-consent", ".apply-button-container",
	".social-share", ".share-buttons", ".eeo-statement",
}, ", ")

// blockSelectors end a line in the extracted text.
const blockSelectors = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, ul, ol, table"

// LooksLikeHTML reports whether s contains at least one common HTML tag.
func LooksLikeHTML(s string) bool {
	return htmlTag.MatchString(s)
}

// HTMLToText extracts readable text from an HTML fragment or page. Block
// elements become line breaks and list items become "- " bullets.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelectors).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find(blockSelectors).AppendHtml("\n")

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strings.Split(root.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

// Package ingestion normalizes pasted job posting text before it is stored
// and scored.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims trailing space and collapses inner whitespace. Headings
// and bullets keep their marker; other lines keep leading indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}
	return strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// CleanPosting normalizes a pasted description or requirements field. HTML
// (copied from a job board) is reduced to text first.
func CleanPosting(raw string) string {
	if LooksLikeHTML(raw) {
		if text, err := HTMLToText(raw); err == nil {
			raw = text
		}
	}
	return CleanText(raw)
}

// ReadPostingFile reads a job posting from a text or HTML file and cleans it.
func ReadPostingFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanPosting(string(content)), nil
}

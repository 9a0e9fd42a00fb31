package email

import (
	"strings"

	"github.com/k3a/html2text"
)

const previewLimit = 200

// HTMLToText converts HTML content to plain text, stripping tags and
// converting entities to their text equivalents.
func HTMLToText(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	return cleanupWhitespace(html2text.HTML2Text(htmlContent))
}

// textPreview produces a short, single-purpose log preview of an HTML body.
// The forwarded message content is never altered; this exists so the logs
// stay readable when body extraction falls back to raw markup.
func textPreview(htmlContent string) string {
	text := HTMLToText(htmlContent)
	if len(text) > previewLimit {
		text = text[:previewLimit] + "..."
	}
	return text
}

// cleanupWhitespace removes excessive blank lines while preserving structure.
func cleanupWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	blankCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blankCount++
			// Allow max 2 consecutive blank lines
			if blankCount <= 2 {
				result = append(result, "")
			}
		} else {
			blankCount = 0
			result = append(result, line)
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}

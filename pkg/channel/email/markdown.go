package email

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
)

// markdownToHTML renders a markdown message body to HTML for the multipart
// alternative. If rendering fails the raw markdown is returned; the plain
// text part always carries the original anyway.
func markdownToHTML(source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return buf.String()
}

package email

import (
	"strings"
	"testing"
)

func TestMarkdownToHTMLHeadingsAndBold(t *testing.T) {
	html := markdownToHTML("# Title\n\n**bold**")
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Errorf("Expected h1 element, got %q", html)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("Expected strong element, got %q", html)
	}
}

func TestMarkdownToHTMLTableExtension(t *testing.T) {
	html := markdownToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(html, "<table>") {
		t.Errorf("Expected table element, got %q", html)
	}
}

func TestMarkdownToHTMLStrikethroughExtension(t *testing.T) {
	html := markdownToHTML("~~gone~~")
	if !strings.Contains(html, "<del>gone</del>") {
		t.Errorf("Expected del element, got %q", html)
	}
}

func TestMarkdownToHTMLTaskListExtension(t *testing.T) {
	html := markdownToHTML("- [x] done\n- [ ] todo")
	if !strings.Contains(html, "checkbox") {
		t.Errorf("Expected task list checkboxes, got %q", html)
	}
}

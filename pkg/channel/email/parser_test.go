package email

import (
	"strings"
	"testing"
)

const multipartRaw = "From: Alice Example <alice@example.com>\r\n" +
	"To: bot@example.com\r\n" +
	"Subject: Question\r\n" +
	"Message-Id: <id-1@example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=frontier\r\n" +
	"\r\n" +
	"--frontier\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>hello <b>world</b></p>\r\n" +
	"--frontier\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"hello world\r\n" +
	"--frontier--\r\n"

func TestParseInboundMultipartPrefersTextPlain(t *testing.T) {
	inbound, err := parseInbound("42", []byte(multipartRaw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if inbound.uid != "42" {
		t.Errorf("Expected uid 42, got %s", inbound.uid)
	}
	if inbound.sender != "alice@example.com" {
		t.Errorf("Expected alice@example.com, got %s", inbound.sender)
	}
	if inbound.content != "hello world" {
		t.Errorf("Expected text/plain body, got %q", inbound.content)
	}
	if inbound.contentType != "text/plain" {
		t.Errorf("Expected text/plain, got %s", inbound.contentType)
	}
	if inbound.thread.MessageID == nil || *inbound.thread.MessageID != "<id-1@example.com>" {
		t.Errorf("Expected Message-Id captured verbatim, got %v", inbound.thread.MessageID)
	}
	if inbound.thread.Subject == nil || *inbound.thread.Subject != "Question" {
		t.Errorf("Expected subject captured, got %v", inbound.thread.Subject)
	}
}

func TestParseInboundSinglePart(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"To: b@example.com\r\n" +
		"Subject: T\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"  hello world  \r\n"

	inbound, err := parseInbound("1", []byte(raw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if inbound.content != "hello world" {
		t.Errorf("Expected trimmed body, got %q", inbound.content)
	}
}

func TestParseInboundHTMLOnlyFallsBack(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: T\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>only markup here</p>\r\n"

	inbound, err := parseInbound("1", []byte(raw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	// Fallback passes markup through verbatim.
	if !strings.Contains(inbound.content, "<p>only markup here</p>") {
		t.Errorf("Expected raw markup, got %q", inbound.content)
	}
	if inbound.contentType != "text/html" {
		t.Errorf("Expected text/html, got %s", inbound.contentType)
	}
}

func TestParseInboundNameAddrSender(t *testing.T) {
	raw := "From: Alice Example <alice@example.com>\r\n\r\nhi"
	inbound, err := parseInbound("1", []byte(raw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if inbound.sender != "alice@example.com" {
		t.Errorf("Expected bare address, got %s", inbound.sender)
	}
}

func TestParseInboundGroupSender(t *testing.T) {
	raw := "From: Team: alice@example.com, bob@example.com;\r\n\r\nhi"
	inbound, err := parseInbound("1", []byte(raw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if inbound.sender != "alice@example.com" {
		t.Errorf("Expected first group member, got %s", inbound.sender)
	}
}

func TestParseInboundMissingSender(t *testing.T) {
	raw := "Subject: no sender\r\n\r\nhi"
	if _, err := parseInbound("1", []byte(raw)); err == nil {
		t.Error("Expected error for missing From header")
	}
}

func TestParseInboundEmptyBody(t *testing.T) {
	raw := "From: a@example.com\r\nSubject: T\r\n\r\n   \r\n"
	if _, err := parseInbound("1", []byte(raw)); err == nil {
		t.Error("Expected error for whitespace-only body")
	}
}

func TestParseInboundNoThreadHeaders(t *testing.T) {
	raw := "From: a@example.com\r\n\r\nhi"
	inbound, err := parseInbound("1", []byte(raw))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if inbound.thread.MessageID != nil || inbound.thread.Subject != nil {
		t.Errorf("Expected absent thread metadata, got %+v", inbound.thread)
	}
}

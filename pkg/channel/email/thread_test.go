package email

import "testing"

func strptr(s string) *string { return &s }

func TestThreadMetaRoundtrip(t *testing.T) {
	meta := ThreadMeta{
		MessageID: strptr("<id@example.com>"),
		Subject:   strptr("Question"),
	}

	encoded, ok := encodeThreadMeta(meta)
	if !ok {
		t.Fatal("Expected encoding for populated metadata")
	}

	decoded, ok := decodeThreadMeta(encoded)
	if !ok {
		t.Fatal("Expected decode to succeed")
	}
	if decoded.MessageID == nil || *decoded.MessageID != "<id@example.com>" {
		t.Errorf("MessageID lost in roundtrip: %v", decoded.MessageID)
	}
	if decoded.Subject == nil || *decoded.Subject != "Question" {
		t.Errorf("Subject lost in roundtrip: %v", decoded.Subject)
	}
}

func TestThreadMetaRoundtripPartial(t *testing.T) {
	meta := ThreadMeta{Subject: strptr("Hello")}

	encoded, ok := encodeThreadMeta(meta)
	if !ok {
		t.Fatal("Expected encoding when one field is set")
	}

	decoded, ok := decodeThreadMeta(encoded)
	if !ok {
		t.Fatal("Expected decode to succeed")
	}
	if decoded.MessageID != nil {
		t.Errorf("Expected nil MessageID, got %q", *decoded.MessageID)
	}
	if decoded.Subject == nil || *decoded.Subject != "Hello" {
		t.Errorf("Subject lost in roundtrip: %v", decoded.Subject)
	}
}

func TestEncodeEmptyMetaRefused(t *testing.T) {
	if _, ok := encodeThreadMeta(ThreadMeta{}); ok {
		t.Error("Expected no encoding when both fields are absent")
	}
}

func TestDecodeMalformedMeta(t *testing.T) {
	for _, raw := range []string{"", "not json", `"just a string"`, `[1,2]`} {
		if _, ok := decodeThreadMeta(raw); ok {
			t.Errorf("Expected decode failure for %q", raw)
		}
	}
}

func TestSplitRecipientWithMeta(t *testing.T) {
	encoded, _ := encodeThreadMeta(ThreadMeta{
		MessageID: strptr("<id@example.com>"),
		Subject:   strptr("Question"),
	})
	recipient := "alice@example.com" + MetaSeparator + encoded

	addr, meta := splitRecipient(recipient)
	if addr != "alice@example.com" {
		t.Errorf("Expected address, got %q", addr)
	}
	if meta == nil {
		t.Fatal("Expected metadata")
	}
	if meta.MessageID == nil || *meta.MessageID != "<id@example.com>" {
		t.Errorf("Unexpected MessageID: %v", meta.MessageID)
	}
	if meta.Subject == nil || *meta.Subject != "Question" {
		t.Errorf("Unexpected Subject: %v", meta.Subject)
	}
}

func TestSplitRecipientLegacyUIDSegment(t *testing.T) {
	encoded, _ := encodeThreadMeta(ThreadMeta{
		MessageID: strptr("<id@example.com>"),
		Subject:   strptr("Politica Americana"),
	})
	recipient := "alice@example.com" + MetaSeparator + "12345" + MetaSeparator + encoded

	addr, meta := splitRecipient(recipient)
	if addr != "alice@example.com" {
		t.Errorf("Expected address, got %q", addr)
	}
	if meta == nil {
		t.Fatal("Expected metadata from legacy form")
	}
	if meta.Subject == nil || *meta.Subject != "Politica Americana" {
		t.Errorf("Unexpected Subject: %v", meta.Subject)
	}
}

func TestSplitRecipientNoSeparator(t *testing.T) {
	addr, meta := splitRecipient("alice@example.com")
	if addr != "alice@example.com" {
		t.Errorf("Expected address, got %q", addr)
	}
	if meta != nil {
		t.Error("Expected no metadata without separator")
	}
}

func TestSplitRecipientMalformedPayload(t *testing.T) {
	addr, meta := splitRecipient("alice@example.com" + MetaSeparator + "garbage")
	if addr != "alice@example.com" {
		t.Errorf("Expected address, got %q", addr)
	}
	if meta != nil {
		t.Error("Expected malformed payload to degrade to no metadata")
	}
}

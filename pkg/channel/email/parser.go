package email

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// inboundEmail is one fetched mailbox item, extracted and ready for
// normalization. uid is the sequence number the server assigned for this
// poll cycle; it is not guaranteed stable across reconnects on all servers,
// which is why the dedup key also folds in the thread metadata.
type inboundEmail struct {
	uid         string
	sender      string
	content     string
	contentType string // MIME type the content was taken from
	thread      ThreadMeta
}

// parseInbound extracts sender, body and thread metadata from a raw MIME
// message. Any extraction failure skips this single message; it never aborts
// the surrounding fetch cycle.
func parseInbound(uid string, raw []byte) (inboundEmail, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return inboundEmail{}, fmt.Errorf("malformed message: %w", err)
	}

	sender, err := parseSender(entity.Header)
	if err != nil {
		return inboundEmail{}, err
	}

	content, contentType, err := parseTextBody(raw)
	if err != nil {
		return inboundEmail{}, err
	}

	return inboundEmail{
		uid:         uid,
		sender:      sender,
		content:     content,
		contentType: contentType,
		thread:      parseThreadMeta(entity.Header),
	}, nil
}

// parseSender resolves the From header to a single address. Group syntax is
// flattened by the address parser, so the first listed address covers both
// the single and group cases.
func parseSender(h message.Header) (string, error) {
	header := mail.Header{Header: h}
	addrs, err := header.AddressList("From")
	if err != nil {
		return "", fmt.Errorf("unparseable From header: %w", err)
	}
	if len(addrs) == 0 || addrs[0].Address == "" {
		return "", fmt.Errorf("no sender address")
	}
	return addrs[0].Address, nil
}

// parseTextBody returns the first non-empty text/plain sub-part, trimmed.
// When no sub-part qualifies it falls back to the whole message body, which
// for HTML-only mail surfaces the markup verbatim; callers decide what to do
// with that. An empty result after trimming is treated as no content.
func parseTextBody(raw []byte) (body, contentType string, err error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", "", fmt.Errorf("malformed message: %w", err)
	}

	if mr := entity.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			ctype, _, err := part.Header.ContentType()
			if err != nil || ctype != "text/plain" {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
				return trimmed, ctype, nil
			}
		}

		// No usable text part; re-read so the fallback sees the raw body.
		entity, err = message.Read(bytes.NewReader(raw))
		if err != nil && !message.IsUnknownCharset(err) {
			return "", "", fmt.Errorf("malformed message: %w", err)
		}
	}

	data, err := io.ReadAll(entity.Body)
	if err != nil {
		return "", "", fmt.Errorf("unreadable body: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", "", fmt.Errorf("empty body")
	}
	ctype, _, err := entity.Header.ContentType()
	if err != nil {
		ctype = ""
	}
	return trimmed, ctype, nil
}

// parseThreadMeta reads the Message-ID and Subject headers. Message-ID is
// taken verbatim, angle brackets included, because that is the form the
// In-Reply-To and References headers of a reply need.
func parseThreadMeta(h message.Header) ThreadMeta {
	var meta ThreadMeta
	if id := h.Get("Message-Id"); id != "" {
		meta.MessageID = &id
	}
	header := mail.Header{Header: h}
	subject, err := header.Subject()
	if err != nil || subject == "" {
		subject = h.Get("Subject")
	}
	if subject != "" {
		meta.Subject = &subject
	}
	return meta
}

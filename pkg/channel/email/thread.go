package email

import (
	"encoding/json"
	"strings"
)

// MetaSeparator joins an email address and its encoded thread metadata in a
// recipient string. 0x1F (ASCII unit separator) cannot appear in a valid
// address or in the JSON payload, so splitting on it is unambiguous.
const MetaSeparator = "\x1f"

// ThreadMeta is the minimal context needed to reply in-thread: the original
// Message-ID and Subject, both optional. It travels across the bus as a
// compact JSON string appended to the recipient address.
type ThreadMeta struct {
	MessageID *string `json:"message_id"`
	Subject   *string `json:"subject"`
}

// encodeThreadMeta serializes meta, returning false when both fields are
// absent so callers never append a degenerate encoding.
func encodeThreadMeta(meta ThreadMeta) (string, bool) {
	if meta.MessageID == nil && meta.Subject == nil {
		return "", false
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// decodeThreadMeta parses an encoded metadata payload. Malformed input
// degrades to "no threading context" rather than an error.
func decodeThreadMeta(raw string) (ThreadMeta, bool) {
	var meta ThreadMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return ThreadMeta{}, false
	}
	return meta, true
}

// splitRecipient separates a recipient string into the target address and
// optional thread metadata. The legacy three-segment form
// "addr<SEP>uid<SEP>json" still decodes; the uid segment is discarded.
func splitRecipient(recipient string) (string, *ThreadMeta) {
	addr, payload, found := strings.Cut(recipient, MetaSeparator)
	if !found {
		return recipient, nil
	}

	if meta, ok := decodeThreadMeta(payload); ok {
		return addr, &meta
	}

	// Legacy path: payload may be "<uid><SEP><json>".
	if _, tail, found := strings.Cut(payload, MetaSeparator); found {
		if meta, ok := decodeThreadMeta(tail); ok {
			return addr, &meta
		}
	}

	return addr, nil
}

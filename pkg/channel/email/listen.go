package email

import (
	"context"
	"strings"
	"time"

	"github.com/nobletrout/mailbridge/pkg/channel"
	"github.com/nobletrout/mailbridge/pkg/dedup"
)

// minPollInterval is the floor applied to the configured poll interval so a
// misconfigured value cannot hammer the mailbox server.
const minPollInterval = 5 * time.Second

type pollResult struct {
	messages []inboundEmail
	err      error
}

// Listen polls the mailbox forever, pushing normalized messages into sink.
// Each cycle's blocking IMAP work runs on its own goroutine so the loop can
// observe cancellation while the protocol calls are in flight. Listen
// returns nil only when ctx is cancelled, which is how the bus signals that
// its receiving side is gone.
func (c *Channel) Listen(ctx context.Context, sink chan<- channel.Message) error {
	c.logger.Info().Str("folder", c.cfg.InboxFolder).Msg("email channel listening")

	interval := time.Duration(c.cfg.PollIntervalSeconds) * time.Second
	if interval < minPollInterval {
		interval = minPollInterval
	}

	seen := dedup.NewBounded(c.cfg.SeenLimit)

	for {
		results := make(chan pollResult, 1)
		go func() {
			messages, err := c.pollUnseen()
			results <- pollResult{messages: messages, err: err}
		}()

		var batch []inboundEmail
		select {
		case <-ctx.Done():
			return nil
		case res := <-results:
			if res.err != nil {
				// The whole cycle is abandoned; the next one starts from a
				// fresh connection after the interval.
				c.logger.Warn().Err(res.err).Msg("email poll failed")
			} else {
				batch = res.messages
			}
		}

		if !c.dispatch(ctx, batch, sink, seen) {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// dispatch normalizes, deduplicates and authorizes one fetched batch,
// handing the survivors to the sink. It returns false when the receiving
// side is gone.
func (c *Channel) dispatch(ctx context.Context, batch []inboundEmail, sink chan<- channel.Message, seen *dedup.Set) bool {
	for _, inbound := range batch {
		id := messageID(inbound)
		if seen.Contains(id) {
			continue
		}
		seen.Add(id)

		if !c.isSenderAllowed(inbound.sender) {
			c.logger.Warn().Str("sender", inbound.sender).Msg("ignoring message from unauthorized sender")
			continue
		}

		if strings.Contains(inbound.contentType, "text/html") {
			// Body extraction fell back to raw markup; the content is
			// forwarded untouched, only the log gets a readable preview.
			c.logger.Debug().Str("preview", textPreview(inbound.content)).Msg("forwarding html fallback body")
		}

		msg := channel.Message{
			ID:        id,
			Sender:    inbound.sender,
			Content:   inbound.content,
			Channel:   channelName,
			Timestamp: time.Now().Unix(),
		}

		select {
		case sink <- msg:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// messageID builds the dedup key: the uid alone, or uid plus the encoded
// thread metadata when any thread context exists. Two fetches of the same
// physical email produce the same key within one process lifetime.
func messageID(inbound inboundEmail) string {
	if encoded, ok := encodeThreadMeta(inbound.thread); ok {
		return inbound.uid + MetaSeparator + encoded
	}
	return inbound.uid
}

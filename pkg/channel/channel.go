// Package channel defines the contract shared by every messaging transport
// and the envelope type carried on the message bus between a transport and
// the orchestrator that consumes it.
package channel

import "context"

// Message is the normalized envelope pushed onto the bus for every inbound
// message, regardless of which transport produced it. ID is the dedup key:
// two deliveries of the same physical message within one process lifetime
// carry the same ID.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Channel   string `json:"channel"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// Channel is a pluggable transport adapter. Implementations are
// interchangeable behind this interface; the router selects one by Name.
type Channel interface {
	// Name returns the constant channel identifier, e.g. "email".
	Name() string

	// Send delivers an outbound message to recipient. The recipient string
	// may carry transport-specific routing metadata beyond a bare address.
	Send(ctx context.Context, message, recipient string) error

	// Listen blocks, pushing normalized messages into sink. It returns nil
	// when the receiving side is gone (ctx cancelled) and an error only on
	// unrecoverable setup failure.
	Listen(ctx context.Context, sink chan<- Message) error

	// HealthCheck reports whether the transport's backing services are
	// currently reachable. It is a shallow signal: any failure collapses
	// to false with no detail.
	HealthCheck(ctx context.Context) bool
}

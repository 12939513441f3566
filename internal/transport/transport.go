// SPDX-License-Identifier: MIT

// Package transport publishes analysis results to out-of-process
// consumers. A Transport sits on the consumer side of the executor's
// message channel; it must never apply backpressure to a caller on the
// real-time side.
package transport

import "spectro/internal/engine"

// Transport sends processed data or events. Implementations must be
// safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Event is the wire envelope for an engine message: a type tag plus the
// message body.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// NewEvent wraps an engine message for the wire.
func NewEvent(m engine.Message) Event {
	switch m := m.(type) {
	case engine.RMSLevels:
		return Event{Type: "rms_levels", Data: m}
	case engine.FFTResult:
		return Event{Type: "fft_result", Data: m}
	case engine.StreamClosed:
		return Event{Type: "stream_closed"}
	default:
		return Event{Type: "unknown"}
	}
}

// Publish drains an executor's message channel into a transport,
// returning when the channel closes. It runs at the consumer's pace; the
// bounded channel is what throttles the producer.
func Publish(t Transport, msgs <-chan engine.Message) {
	for m := range msgs {
		_ = t.Send(NewEvent(m))
	}
}

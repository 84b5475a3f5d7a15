// Package llm defines the Model Gateway: the single opaque collaborator
// through which the application talks to a language model. The core never
// sees transport details: it hands the gateway an assembled request and
// gets back either a complete text or a chunk stream.
//
// Streaming and non-streaming generation share one interface rather than
// two code paths, so the context assembler and the economy ledger stay
// transport-agnostic.
package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed is the distinguishable failure condition raised when
// the upstream model call fails or returns empty output. Partial output is
// never assumed usable.
var ErrGenerationFailed = errors.New("generation failed")

// Part is one piece of a message: text, an inline image, or both.
type Part struct {
	Text      string
	ImageMIME string
	ImageData []byte
}

// Message is a single turn in the assembled context. Role is "user" or
// "model" and every message carries at least one part.
type Message struct {
	Role  string
	Parts []Part
}

// Request is a fully assembled model call.
type Request struct {
	SystemInstruction string
	Messages          []Message
	Temperature       float32
}

// Result is the outcome of a non-streaming call.
type Result struct {
	Text string
}

// Gateway generates model responses. Implementations must honor ctx for
// cancellation and deadlines; a stalled upstream call must not hold the
// caller's transaction window open indefinitely.
type Gateway interface {
	// Generate runs a blocking call and returns the complete text.
	Generate(ctx context.Context, req Request) (*Result, error)

	// GenerateStream runs a streaming call, invoking emit once per text
	// chunk in order. A non-nil error from emit cancels the stream and is
	// returned verbatim.
	GenerateStream(ctx context.Context, req Request, emit func(chunk string) error) error
}

package domain

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Document is an uploaded file after text extraction. It is immutable:
// loading a new file replaces the document rather than mutating it.
type Document struct {
	Name string
	Text string
}

// Segment is one overlapping slice of a document's text. Position is its
// rank in the ordered sequence produced by chunking and never changes.
type Segment struct {
	Position int
	Text     string
}

// Message is a single chat turn. Assistant messages carry the segments
// their answer was grounded on, in retrieval order.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Sources   []Segment
	CreatedAt time.Time
}

// Snapshot is everything the presentation layer needs: the ordered chat
// history, the active document's label, and whether questions can be asked.
type Snapshot struct {
	Messages     []Message
	DocumentName string
	Ready        bool
}

// Embedder converts text into fixed-dimension vectors. Embed returns one
// vector per input text, in input order, from a single batched provider call.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Completer produces an answer for a fully assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns uploaded file bytes into plain text.
type Extractor interface {
	Extract(name string, data []byte) (string, error)
}

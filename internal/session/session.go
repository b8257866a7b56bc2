// Package session owns the conversation state machine: one active document,
// the vector index built from it, and the ordered chat history.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docchat/internal/chunker"
	"docchat/internal/domain"
	"docchat/internal/index"
)

// State is the document lifecycle state of a session.
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateReady
)

var (
	// ErrNoDocument is returned when asking before any document is loaded.
	ErrNoDocument = errors.New("session: no document loaded")
	// ErrBuilding is returned for transitions attempted while a build is in flight.
	ErrBuilding = errors.New("session: document build in progress")
	// ErrEmptyDocument is returned when extraction yields no text to chunk.
	ErrEmptyDocument = errors.New("session: document contains no extractable text")
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("session: question is empty")
	// ErrDocumentReplaced is returned when the document changed mid-question.
	ErrDocumentReplaced = errors.New("session: document was replaced while answering")
)

// Session orchestrates the build pipeline (extract, chunk, embed, index)
// and the ask pipeline (embed, retrieve, complete) for one document at a
// time. All state transitions are serialized; the mutex is released during
// network calls, with the Building state guarding against overlapping builds.
type Session struct {
	chunker   *chunker.Chunker
	extractor domain.Extractor
	embedder  domain.Embedder
	completer domain.Completer
	topK      int
	log       *slog.Logger

	mu       sync.Mutex
	state    State
	gen      uint64 // bumped on every document swap
	doc      *domain.Document
	segments []domain.Segment
	idx      *index.Flat
	docHash  [sha256.Size]byte
	messages []domain.Message
}

// New creates an empty session.
func New(ch *chunker.Chunker, extractor domain.Extractor, embedder domain.Embedder, completer domain.Completer, topK int, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	if topK <= 0 {
		topK = 4
	}
	return &Session{
		chunker:   ch,
		extractor: extractor,
		embedder:  embedder,
		completer: completer,
		topK:      topK,
		log:       log,
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadDocument runs the build pipeline for the given file. Reloading bytes
// identical to the active document is a no-op that keeps the existing index
// and history. Replacing a document swaps index, segments, and hash
// atomically and clears the chat history; on any failure or cancellation
// the session stays exactly in its prior state.
func (s *Session) LoadDocument(ctx context.Context, name string, data []byte) error {
	sum := sha256.Sum256(data)

	s.mu.Lock()
	if s.state == StateBuilding {
		s.mu.Unlock()
		return ErrBuilding
	}
	if s.state == StateReady && s.docHash == sum {
		s.mu.Unlock()
		s.log.Debug("document unchanged, keeping index", "name", name)
		return nil
	}
	prior := s.state
	s.state = StateBuilding
	s.mu.Unlock()

	doc, segments, idx, err := s.build(ctx, name, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = prior
		s.log.Warn("document build failed", "name", name, "err", err)
		return err
	}
	s.doc = doc
	s.segments = segments
	s.idx = idx
	s.docHash = sum
	s.messages = nil
	s.gen++
	s.state = StateReady
	s.log.Info("document ready", "name", name, "segments", len(segments), "dimension", idx.Dimension())
	return nil
}

func (s *Session) build(ctx context.Context, name string, data []byte) (*domain.Document, []domain.Segment, *index.Flat, error) {
	text, err := s.extractor.Extract(name, data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extract %s: %w", name, err)
	}
	segments := s.chunker.Chunk(text)
	if len(segments) == 0 {
		return nil, nil, nil, ErrEmptyDocument
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("embed %d segments: %w", len(segments), err)
	}
	idx, err := index.Build(vectors)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build index: %w", err)
	}
	return &domain.Document{Name: name, Text: text}, segments, idx, nil
}

// Ask answers one question against the active document. On success the
// question and the answer are appended to history in that order, the answer
// carrying its retrieved segments as sources. On failure the question is
// still recorded but no assistant message is appended.
func (s *Session) Ask(ctx context.Context, question string) (domain.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Message{}, ErrEmptyQuestion
	}

	s.mu.Lock()
	switch s.state {
	case StateEmpty:
		s.mu.Unlock()
		return domain.Message{}, ErrNoDocument
	case StateBuilding:
		s.mu.Unlock()
		return domain.Message{}, ErrBuilding
	}
	gen := s.gen
	idx := s.idx
	segments := s.segments
	window := lastMessages(s.messages, historyWindow)
	s.messages = append(s.messages, newMessage(domain.RoleUser, question, nil))
	s.mu.Unlock()

	vector, err := s.embedder.EmbedOne(ctx, question)
	if err != nil {
		return domain.Message{}, fmt.Errorf("embed question: %w", err)
	}
	sources, err := index.Retrieve(vector, idx, segments, s.topK)
	if err != nil {
		return domain.Message{}, fmt.Errorf("retrieve context: %w", err)
	}
	answer, err := s.completer.Complete(ctx, buildPrompt(window, sources, question))
	if err != nil {
		return domain.Message{}, fmt.Errorf("complete answer: %w", err)
	}

	msg := newMessage(domain.RoleAssistant, answer, sources)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// The document was swapped while this answer was in flight; it must
		// not land in the new document's history.
		return domain.Message{}, ErrDocumentReplaced
	}
	s.messages = append(s.messages, msg)
	s.log.Debug("question answered", "sources", len(sources))
	return msg, nil
}

// ClearChat empties the message history; the document and index stay.
func (s *Session) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Snapshot returns the presentation-layer view of the session.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domain.Snapshot{
		Messages: append([]domain.Message(nil), s.messages...),
		Ready:    s.state == StateReady,
	}
	if s.doc != nil {
		snap.DocumentName = s.doc.Name
	}
	return snap
}

func newMessage(role domain.Role, content string, sources []domain.Segment) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
}

func lastMessages(messages []domain.Message, n int) []domain.Message {
	if len(messages) <= n {
		return append([]domain.Message(nil), messages...)
	}
	return append([]domain.Message(nil), messages[len(messages)-n:]...)
}

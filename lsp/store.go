package lsp

import (
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/digitallyserviced/flux-lsp/analysis"
)

// Store is the per-URI source text map, the only state shared between
// requests. The lock is held just long enough to insert, remove or copy a
// string, never across analysis or an await.
type Store struct {
	logger *zap.Logger

	mu   sync.Mutex
	docs map[protocol.DocumentURI]string
}

// NewStore creates an empty document store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger: logger,
		docs:   make(map[protocol.DocumentURI]string),
	}
}

// Open inserts a document. Some clients open files twice; the duplicate is
// logged and ignored rather than treated as an error.
func (s *Store) Open(uri protocol.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; ok {
		s.logger.Warn("textDocument/didOpen called on open file", zap.String("uri", string(uri)))

		return
	}
	s.docs[uri] = text
}

// Apply applies ordered change events to a document. An event with a range
// substitutes that range; an event without one replaces the whole text. A
// change for an unknown URI is logged and dropped.
//
// The protocol type carries the range by value, so a full replacement is
// recognized by its zero range and zero replaced length.
func (s *Store) Apply(uri protocol.DocumentURI, changes []protocol.TextDocumentContentChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, ok := s.docs[uri]
	if !ok {
		s.logger.Warn("textDocument/didChange called on unknown file", zap.String("uri", string(uri)))

		return
	}

	for _, change := range changes {
		if isFullReplacement(change) {
			contents = change.Text

			continue
		}
		replaced, err := analysis.ReplaceRange(contents, change.Range, change.Text)
		if err != nil {
			s.logger.Error("dropping malformed range edit",
				zap.String("uri", string(uri)),
				zap.Error(err))
		}
		contents = replaced
	}

	s.docs[uri] = contents
}

func isFullReplacement(change protocol.TextDocumentContentChangeEvent) bool {
	return change.Range == (protocol.Range{}) && change.RangeLength == 0
}

// Save replaces a document's text when the save notification carried any.
func (s *Store) Save(uri protocol.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; !ok {
		s.logger.Warn("textDocument/didSave called on unknown file", zap.String("uri", string(uri)))

		return
	}
	s.docs[uri] = text
}

// Close removes a document; closing an unknown URI is logged, not an error.
func (s *Store) Close(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[uri]; !ok {
		s.logger.Warn("textDocument/didClose called on unknown file", zap.String("uri", string(uri)))

		return
	}
	delete(s.docs, uri)
}

// Snapshot returns an owned copy of a document's text for analysis outside
// the lock.
func (s *Store) Snapshot(uri protocol.DocumentURI) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, ok := s.docs[uri]
	if !ok {
		return "", ErrUnknownDocument
	}

	return contents, nil
}

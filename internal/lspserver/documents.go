package lspserver

import (
	"maps"
	"slices"
	"sync"

	"github.com/sourcegraph/go-lsp"
)

// Document is an open editor buffer.
type Document struct {
	URI        lsp.DocumentURI
	LanguageID string
	Version    int
	Content    string
}

// DocumentStore tracks open documents by URI.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[lsp.DocumentURI]*Document
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[lsp.DocumentURI]*Document)}
}

// Open records a newly opened document.
func (s *DocumentStore) Open(uri lsp.DocumentURI, languageID string, version int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &Document{URI: uri, LanguageID: languageID, Version: version, Content: content}
}

// Update replaces the content of an open document. Unknown URIs are ignored.
func (s *DocumentStore) Update(uri lsp.DocumentURI, version int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return
	}
	// Readers may still hold the previous snapshot.
	s.docs[uri] = &Document{URI: uri, LanguageID: doc.LanguageID, Version: version, Content: content}
}

// Get returns a snapshot of the document, or nil when it is not open.
func (s *DocumentStore) Get(uri lsp.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// Close forgets a document.
func (s *DocumentStore) Close(uri lsp.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// All returns the open documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := slices.Sorted(maps.Keys(s.docs))
	out := make([]*Document, len(uris))
	for i, uri := range uris {
		out[i] = s.docs[uri]
	}
	return out
}

package lspserver

import (
	"sync"

	"github.com/sourcegraph/go-lsp"
)

// versionCache keeps one value per document, valid for a single document
// version. Diagnostics and code actions for the same edit share a lint run.
type versionCache[V any] struct {
	mu      sync.Mutex
	entries map[lsp.DocumentURI]versioned[V]
}

type versioned[V any] struct {
	version int
	value   V
}

func newVersionCache[V any]() *versionCache[V] {
	return &versionCache[V]{entries: map[lsp.DocumentURI]versioned[V]{}}
}

func (c *versionCache[V]) get(uri lsp.DocumentURI, version int) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[uri]
	if !ok || e.version != version {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *versionCache[V]) set(uri lsp.DocumentURI, version int, value V) {
	c.mu.Lock()
	c.entries[uri] = versioned[V]{version, value}
	c.mu.Unlock()
}

func (c *versionCache[V]) delete(uri lsp.DocumentURI) {
	c.mu.Lock()
	delete(c.entries, uri)
	c.mu.Unlock()
}

func (c *versionCache[V]) clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

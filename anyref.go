package edn

import (
	"sync"
	"sync/atomic"
)

var anyRefSeq atomic.Uint64

// AnyRef is an opaque handle to host-owned data. Two AnyRef values are
// equal only when they are the same handle; the content is never compared.
// Cloning a Value containing an AnyRef shares the handle, not the data.
// Read/write discipline on the referenced data belongs to the host; the
// handle only guards its own slot.
type AnyRef struct {
	id   uint64
	mu   sync.RWMutex
	data any
}

// NewAnyRef wraps host data in a fresh handle.
func NewAnyRef(data any) *AnyRef {
	return &AnyRef{id: anyRefSeq.Add(1), data: data}
}

// Load returns the current referenced data.
func (r *AnyRef) Load() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Store replaces the referenced data.
func (r *AnyRef) Store(data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
}

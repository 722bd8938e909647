package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory is a Store backed by a map. Contents are lost on exit.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]Document
	closed bool
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document), now: time.Now}
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, id, content string, opts ...SaveOption) (Document, error) {
	if err := checkID("save", id); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Document{}, ErrClosed
	}

	var prev *Document
	if d, ok := m.docs[id]; ok {
		prev = &d
	}
	doc := revise(prev, id, content, opts, m.now().UTC())
	m.docs[id] = doc
	return doc, nil
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Document{}, ErrClosed
	}

	doc, ok := m.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(m.docs, id)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	docs := make([]Document, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, d)
	}
	sortRecent(docs)
	return docs, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func sortRecent(docs []Document) {
	slices.SortFunc(docs, func(a, b Document) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

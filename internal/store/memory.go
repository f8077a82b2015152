package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Memory is an in-process Store. It backs tests and STORE_DRIVER=memory dry
// runs, where a feed can be exercised end to end without a database.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string][]Document
	schemas map[string]Mapping

	// CommitDelay artificially delays batch acknowledgments; tests use it
	// to keep writes in flight while the barrier is observed.
	CommitDelay time.Duration
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:    make(map[string][]Document),
		schemas: make(map[string]Mapping),
	}
}

// DeclareSchema records the mapping and drops any existing documents, the
// same drop-then-recreate semantics the database adapter applies.
func (m *Memory) DeclareSchema(_ context.Context, collection string, mapping Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas[collection] = mapping
	m.docs[collection] = nil
	return nil
}

// Purge removes every document in the collection matching q.
func (m *Memory) Purge(_ context.Context, collection string, q Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[collection][:0]
	for _, d := range m.docs[collection] {
		if !matches(d.Doc, q) {
			kept = append(kept, d)
		}
	}
	m.docs[collection] = kept
	return nil
}

// CommitBatch applies ops in order. All-or-nothing is trivial here: the
// only failure mode is an update referencing a missing document.
func (m *Memory) CommitBatch(ctx context.Context, collection string, ops []Op) error {
	if m.CommitDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.CommitDelay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		switch op.Kind {
		case OpCreate:
			m.docs[collection] = append(m.docs[collection], Document{ID: op.ID, Doc: cloneRecord(op.Doc)})
		case OpUpdate:
			if err := m.merge(collection, op.ID, op.Doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Search returns copies of the documents matching q, in insertion order.
func (m *Memory) Search(_ context.Context, collection string, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, d := range m.docs[collection] {
		if matches(d.Doc, q) {
			out = append(out, Document{ID: d.ID, Doc: cloneRecord(d.Doc)})
		}
	}
	return out, nil
}

// Update merges partial into the identified document.
func (m *Memory) Update(_ context.Context, collection, id string, partial Record, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merge(collection, id, partial)
}

// Count reports how many documents a collection holds; test helper.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func (m *Memory) merge(collection, id string, partial Record) error {
	for i, d := range m.docs[collection] {
		if d.ID == id {
			for k, v := range partial {
				m.docs[collection][i].Doc[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("memory store: document %s/%s not found", collection, id)
}

func matches(doc Record, q Query) bool {
	for k, want := range q {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

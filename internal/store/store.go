package store

import (
	"context"
	"fmt"
)

// Record is a loose-schema document: field name to scalar or coordinate pair.
type Record map[string]any

// FieldType enumerates the types a collection schema can declare.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeGeoPoint FieldType = "geo_point"
)

// Mapping declares the typed fields of a collection.
type Mapping map[string]FieldType

// Query is a conjunction of field = value equality filters.
type Query map[string]any

// OpKind identifies a bulk operation.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
)

// Op is one pending write inside a bulk batch.
type Op struct {
	Kind OpKind
	ID   string
	Doc  Record
	// RetryOnConflict bounds retries when an update races a concurrent
	// write to the same document. Updates enqueued by the importer use 3.
	RetryOnConflict int
}

// Document is a stored record plus its identifier.
type Document struct {
	ID  string
	Doc Record
}

// Store is the persistence collaborator: collections of documents with
// schema declaration, purge, batched writes, equality search and partial
// update. Batches are all-or-nothing; partial success is not modeled.
type Store interface {
	DeclareSchema(ctx context.Context, collection string, mapping Mapping) error
	Purge(ctx context.Context, collection string, q Query) error
	CommitBatch(ctx context.Context, collection string, ops []Op) error
	Search(ctx context.Context, collection string, q Query) ([]Document, error)
	Update(ctx context.Context, collection string, id string, partial Record, retryOnConflict int) error
}

// BatchError reports a failed bulk commit with enough context to tell
// which collection and source file produced it.
type BatchError struct {
	Collection string
	Origin     string
	Err        error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("bulk commit failed for collection %q (from %s): %v", e.Collection, e.Origin, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

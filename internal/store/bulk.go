package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/transitload/internal/metrics"
)

// waitInterval is how often Wait re-checks the in-flight counter. Short
// enough not to stall the pipeline, long enough not to busy-spin.
const waitInterval = 250 * time.Millisecond

// BulkWriter accumulates write operations per collection and flushes each
// collection's buffer as a single asynchronous batch. One writer is created
// per agency task; it is not shared across tasks.
type BulkWriter struct {
	store Store
	log   *zap.Logger

	mu      sync.Mutex
	pending map[string][]Op

	inflight atomic.Int64

	errMu    sync.Mutex
	firstErr error
}

// NewBulkWriter returns a writer flushing into s.
func NewBulkWriter(s Store, log *zap.Logger) *BulkWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &BulkWriter{
		store:   s,
		log:     log,
		pending: make(map[string][]Op),
	}
}

// EnqueueCreate appends a create op for doc to the collection's buffer.
// The document id is minted here so a batch can be retried verbatim.
func (w *BulkWriter) EnqueueCreate(collection string, doc Record) {
	w.enqueue(collection, Op{Kind: OpCreate, ID: uuid.NewString(), Doc: doc})
}

// EnqueueUpdate appends an update op for an existing document.
func (w *BulkWriter) EnqueueUpdate(collection, id string, doc Record) {
	w.enqueue(collection, Op{Kind: OpUpdate, ID: id, Doc: doc, RetryOnConflict: 3})
}

func (w *BulkWriter) enqueue(collection string, op Op) {
	w.mu.Lock()
	w.pending[collection] = append(w.pending[collection], op)
	w.mu.Unlock()
}

// Commit snapshots the collection's buffer, clears it, and issues one bulk
// write for the snapshot without waiting for the acknowledgment. The
// snapshot is taken before the buffer is cleared, so an append racing the
// flush lands in the next commit instead of being lost. origin names the
// source file for error reporting.
func (w *BulkWriter) Commit(ctx context.Context, collection, origin string) {
	w.mu.Lock()
	snapshot := w.pending[collection]
	delete(w.pending, collection)
	w.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	w.inflight.Add(1)
	metrics.WritesInFlight.Inc()

	go func() {
		err := w.store.CommitBatch(ctx, collection, snapshot)
		if err != nil {
			metrics.BatchFailures.Inc()
			w.recordErr(&BatchError{Collection: collection, Origin: origin, Err: err})
			w.log.Error("bulk commit failed",
				zap.String("collection", collection),
				zap.String("origin", origin),
				zap.Int("ops", len(snapshot)),
				zap.Error(err))
		} else {
			metrics.BatchesCommitted.Inc()
			w.log.Debug("bulk commit acknowledged",
				zap.String("collection", collection),
				zap.Int("ops", len(snapshot)))
		}
		metrics.WritesInFlight.Dec()
		w.inflight.Add(-1)
	}()
}

// InFlight reports how many issued batches have not been acknowledged yet.
func (w *BulkWriter) InFlight() int64 { return w.inflight.Load() }

// Wait blocks until every issued batch has been acknowledged. A writer
// with nothing in flight passes through immediately.
func (w *BulkWriter) Wait(ctx context.Context) error {
	if w.inflight.Load() == 0 {
		return nil
	}
	ticker := time.NewTicker(waitInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n := w.inflight.Load()
			if n == 0 {
				return nil
			}
			w.log.Debug("waiting for bulk writes", zap.Int64("in_flight", n))
		}
	}
}

// Err returns the first batch error recorded by an asynchronous commit,
// if any. Meaningful once Wait has returned.
func (w *BulkWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.firstErr
}

func (w *BulkWriter) recordErr(err error) {
	w.errMu.Lock()
	if w.firstErr == nil {
		w.firstErr = err
	}
	w.errMu.Unlock()
}

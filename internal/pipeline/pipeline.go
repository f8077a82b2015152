package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourorg/transitload/internal/fetch"
	"github.com/yourorg/transitload/internal/gtfs"
	"github.com/yourorg/transitload/internal/metrics"
	"github.com/yourorg/transitload/internal/store"
)

// Runner executes the six-stage ingestion pipeline for one agency task at a
// time. It holds only per-run collaborators; all per-task state lives on the
// task context so repeated runs cannot cross-contaminate.
type Runner struct {
	Store   store.Store
	Fetcher *fetch.Fetcher
	WorkDir string
	Files   []gtfs.FileSpec
	Log     *zap.Logger
}

// taskContext carries the state scoped to a single agency task: its working
// directory, bounds accumulator and bulk writer. Fresh per task.
type taskContext struct {
	task   Task
	log    *zap.Logger
	dir    string
	bounds *gtfs.Bounds
	writer *store.BulkWriter
}

type stage struct {
	name string
	fn   func(context.Context, *taskContext) error
}

// Run executes cleanup, fetch, purge, import, post-process and cleanup in
// strict series. The first failing stage aborts the rest; the error names
// the stage for the task log.
func (r *Runner) Run(ctx context.Context, task Task) error {
	log := r.logger().With(zap.String("agency_key", task.AgencyKey))
	tc := &taskContext{
		task:   task,
		log:    log,
		dir:    filepath.Join(r.workDir(), task.AgencyKey),
		bounds: &gtfs.Bounds{},
	}
	tc.writer = store.NewBulkWriter(r.Store, log)

	log.Info("starting agency import", zap.String("source", task.Source()))

	stages := []stage{
		{"cleanup", r.cleanupStage},
		{"fetch", r.fetchStage},
		{"purge", r.purgeStage},
		{"import", r.importStage},
		{"postprocess", r.postProcessStage},
		{"cleanup", r.cleanupStage},
	}
	for _, st := range stages {
		if err := st.fn(ctx, tc); err != nil {
			log.Error("stage failed", zap.String("stage", st.name), zap.Error(err))
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}

	log.Info("completed")
	return nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) workDir() string {
	if r.WorkDir == "" {
		return "downloads"
	}
	return r.WorkDir
}

func (r *Runner) fileSpecs() []gtfs.FileSpec {
	if r.Files == nil {
		return gtfs.Files
	}
	return r.Files
}

// cleanupStage removes any leftover working directory and recreates it. A
// pre-existing directory is not an error.
func (r *Runner) cleanupStage(_ context.Context, tc *taskContext) error {
	if err := os.RemoveAll(tc.dir); err != nil {
		return fmt.Errorf("remove workdir %s: %w", tc.dir, err)
	}
	if err := os.MkdirAll(tc.dir, 0o755); err != nil {
		return fmt.Errorf("create workdir %s: %w", tc.dir, err)
	}
	return nil
}

// fetchStage resolves the archive to a local zip and extracts it into the
// working directory. Any failure here is hard for the task.
func (r *Runner) fetchStage(ctx context.Context, tc *taskContext) error {
	source := tc.task.Source()
	zipPath, err := r.Fetcher.Fetch(ctx, source, tc.dir)
	if err != nil {
		return &TransportError{Source: source, Err: err}
	}
	tc.log.Info("archive fetched", zap.String("path", zipPath))
	if err := fetch.Extract(zipPath, tc.dir); err != nil {
		return &TransportError{Source: source, Err: err}
	}
	return nil
}

// purgeStage deletes prior records for this agency across every target
// collection, so re-running the same agency never duplicates data. It
// completes before import begins.
func (r *Runner) purgeStage(ctx context.Context, tc *taskContext) error {
	q := store.Query{"agency_key": tc.task.AgencyKey}
	for _, fs := range r.fileSpecs() {
		if err := r.Store.Purge(ctx, fs.Collection, q); err != nil {
			return fmt.Errorf("purge %s: %w", fs.Collection, err)
		}
		tc.log.Debug("purged collection", zap.String("collection", fs.Collection))
	}
	return nil
}

// importStage streams each present file through the transformer into the
// bulk writer, committing each collection's buffer once at end of stream.
// Commits are asynchronous; the post-process stage waits them out.
func (r *Runner) importStage(ctx context.Context, tc *taskContext) error {
	tr := &gtfs.Transformer{
		AgencyKey: tc.task.AgencyKey,
		Proj:      tc.task.Proj,
		Bounds:    tc.bounds,
	}

	for _, fs := range r.fileSpecs() {
		if fs.Mapping != nil {
			if err := r.Store.DeclareSchema(ctx, fs.Collection, fs.Mapping); err != nil {
				return fmt.Errorf("declare schema for %s: %w", fs.Collection, err)
			}
		}

		path := filepath.Join(tc.dir, fs.FileNameBase+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			tc.log.Info("file absent, skipping", zap.String("file", fs.FileNameBase))
			continue
		}

		skipped := 0
		rows, err := gtfs.StreamFile(path, func(row map[string]string) error {
			rec, err := tr.Transform(row)
			if err != nil {
				if errors.Is(err, gtfs.ErrMalformedRow) {
					skipped++
					return nil
				}
				return err
			}
			tc.writer.EnqueueCreate(fs.Collection, rec)
			metrics.RowsImported.Inc()
			return nil
		})
		if err != nil {
			return &ParseError{File: fs.FileNameBase, Err: err}
		}

		tc.writer.Commit(ctx, fs.Collection, fs.FileNameBase)
		tc.log.Info("file imported",
			zap.String("file", fs.FileNameBase),
			zap.String("collection", fs.Collection),
			zap.Int("rows", rows),
			zap.Int("skipped", skipped))
	}
	return nil
}

// postProcessStage waits for every in-flight bulk write to be acknowledged,
// surfaces any batch error from the import stage, then runs the spatial
// post-processors in series.
func (r *Runner) postProcessStage(ctx context.Context, tc *taskContext) error {
	tc.log.Info("awaiting bulk writes", zap.Int64("in_flight", tc.writer.InFlight()))
	if err := tc.writer.Wait(ctx); err != nil {
		return err
	}
	if err := tc.writer.Err(); err != nil {
		return err
	}

	steps := []stage{
		{"agency center", r.agencyCenter},
		{"trip lengths", r.tripLengths},
		{"coordinate repair", r.fixCoordinates},
	}
	for _, st := range steps {
		if err := st.fn(ctx, tc); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return nil
}

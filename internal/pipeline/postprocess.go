package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/transitload/internal/store"
	"github.com/yourorg/transitload/internal/validation"
)

// agencyCenter writes the accumulated bounds and their midpoint onto the
// agency's own record. An agency without an agency file, or without a single
// valid coordinate, is skipped rather than failed.
func (r *Runner) agencyCenter(ctx context.Context, tc *taskContext) error {
	key := tc.task.AgencyKey
	docs, err := r.Store.Search(ctx, "agencies", store.Query{"agency_key": key})
	if err != nil {
		return fmt.Errorf("search agencies: %w", err)
	}
	if len(docs) == 0 {
		tc.log.Warn("agency record not found, skipping center")
		return nil
	}
	lon, lat, ok := tc.bounds.Center()
	if !ok {
		tc.log.Warn("no coordinates accumulated, skipping center")
		return nil
	}
	sw, ne := tc.bounds.SW(), tc.bounds.NE()
	partial := store.Record{
		"agency_bounds": map[string]any{
			"sw": []float64{sw[0], sw[1]},
			"ne": []float64{ne[0], ne[1]},
		},
		"agency_center": []float64{lon, lat},
	}
	if err := r.Store.Update(ctx, "agencies", docs[0].ID, partial, 0); err != nil {
		return fmt.Errorf("update agency record: %w", err)
	}
	tc.log.Info("agency center computed",
		zap.Float64("lon", lon),
		zap.Float64("lat", lat))
	return nil
}

// tripLengths is a reserved extension point for trip-length analysis over
// stop times. It currently passes through.
func (r *Runner) tripLengths(_ context.Context, _ *taskContext) error {
	return nil
}

// fixCoordinates repairs stations whose coordinate pair carries the (0,0)
// bad marker by copying the pair from the first child stop that references
// the station as its parent. Stations without such a child stay as they are.
func (r *Runner) fixCoordinates(ctx context.Context, tc *taskContext) error {
	key := tc.task.AgencyKey
	stations, err := r.Store.Search(ctx, "stops", store.Query{
		"agency_key":    key,
		"location_type": "1",
	})
	if err != nil {
		return fmt.Errorf("search stations: %w", err)
	}

	for _, station := range stations {
		lon, lat, ok := locPair(station.Doc["loc"])
		if !ok || !validation.IsZeroCoordinate(lat, lon) {
			continue
		}
		stopID, _ := station.Doc["stop_id"].(string)
		if stopID == "" {
			continue
		}
		slog := tc.log.With(zap.String("stop_id", stopID))
		slog.Info("station has bad location, looking for a child stop")

		children, err := r.Store.Search(ctx, "stops", store.Query{
			"agency_key":     key,
			"parent_station": stopID,
		})
		if err != nil {
			return fmt.Errorf("search child stops of %s: %w", stopID, err)
		}

		repaired := false
		for _, child := range children {
			clon, clat, ok := locPair(child.Doc["loc"])
			if !ok || validation.IsZeroCoordinate(clat, clon) {
				continue
			}
			partial := store.Record{"loc": []float64{clon, clat}}
			if err := r.Store.Update(ctx, "stops", station.ID, partial, 3); err != nil {
				return fmt.Errorf("update station %s: %w", stopID, err)
			}
			slog.Info("station location fixed",
				zap.Float64("lon", clon),
				zap.Float64("lat", clat))
			repaired = true
			break
		}
		if !repaired {
			slog.Warn("no child stop with a usable location, leaving station as is")
		}
	}
	return nil
}

// locPair reads a [lon, lat] pair that may arrive as []float64 (in-memory)
// or []any of float64 (after a JSON round trip).
func locPair(v any) (lon, lat float64, ok bool) {
	switch pair := v.(type) {
	case []float64:
		if len(pair) == 2 {
			return pair[0], pair[1], true
		}
	case []any:
		if len(pair) == 2 {
			lon, lonOK := pair[0].(float64)
			lat, latOK := pair[1].(float64)
			if lonOK && latOK {
				return lon, lat, true
			}
		}
	}
	return 0, 0, false
}

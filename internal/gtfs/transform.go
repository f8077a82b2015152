package gtfs

import (
	"errors"
	"math"
	"strconv"

	"github.com/yourorg/transitload/internal/proj"
	"github.com/yourorg/transitload/internal/store"
	"github.com/yourorg/transitload/internal/validation"
)

// ErrMalformedRow signals a row that is not a flat key/value record.
var ErrMalformedRow = errors.New("gtfs: malformed row")

// intFields are coerced to integers when present; parse failure leaves the
// field absent rather than failing the row.
var intFields = []string{"stop_sequence", "direction_id"}

// Transformer normalizes raw csv rows for one agency. It owns no state
// besides the task-scoped bounds accumulator it feeds.
type Transformer struct {
	AgencyKey string
	Proj      proj.Func // optional reprojection into WGS84
	Bounds    *Bounds
}

// Transform turns a raw row into a store-ready record. Empty fields are
// dropped (absence, not null, means unknown downstream), the agency key is
// attached, known integer fields are coerced best-effort, and a present
// lon/lat pair becomes a loc coordinate with unparsable axes corrected to
// 0.0 so the row survives for later repair.
func (t *Transformer) Transform(row map[string]string) (store.Record, error) {
	if len(row) == 0 {
		return nil, ErrMalformedRow
	}

	rec := make(store.Record, len(row)+2)
	for k, v := range row {
		if v == "" {
			continue
		}
		rec[k] = v
	}
	rec["agency_key"] = t.AgencyKey

	for _, field := range intFields {
		v, ok := rec[field].(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil {
			rec[field] = n
		} else {
			delete(rec, field)
		}
	}

	lonStr, hasLon := rec["stop_lon"].(string)
	latStr, hasLat := rec["stop_lat"].(string)
	if hasLon && hasLat {
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		lat, latErr := strconv.ParseFloat(latStr, 64)
		bad := lonErr != nil || latErr != nil || math.IsNaN(lon) || math.IsNaN(lat)
		if bad {
			// both axes carry the (0,0) marker so repair can match the
			// pair exactly; projecting it would hide the marker
			lon, lat = 0, 0
		} else if t.Proj != nil {
			lon, lat = t.Proj(lon, lat)
		}
		rec["stop_lon"] = lon
		rec["stop_lat"] = lat
		rec["loc"] = []float64{lon, lat}

		if !bad && !validation.IsZeroCoordinate(lat, lon) && t.Bounds != nil {
			t.Bounds.Extend(lon, lat)
		}
	}

	return rec, nil
}

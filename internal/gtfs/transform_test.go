package gtfs

import (
	"errors"
	"testing"
)

func TestTransformDropsEmptyFields(t *testing.T) {
	tr := &Transformer{AgencyKey: "x"}
	rec, err := tr.Transform(map[string]string{
		"stop_name": "Gare du Nord",
		"stop_desc": "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rec["stop_desc"]; ok {
		t.Error("empty field must be dropped, not kept as null")
	}
	if rec["stop_name"] != "Gare du Nord" {
		t.Errorf("stop_name=%v", rec["stop_name"])
	}
	if rec["agency_key"] != "x" {
		t.Errorf("agency_key=%v; want x", rec["agency_key"])
	}
}

func TestTransformIntCoercion(t *testing.T) {
	tr := &Transformer{AgencyKey: "x"}
	rec, err := tr.Transform(map[string]string{"stop_sequence": "7", "direction_id": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["stop_sequence"] != 7 {
		t.Errorf("stop_sequence=%v (%T); want int 7", rec["stop_sequence"], rec["stop_sequence"])
	}
	if rec["direction_id"] != 1 {
		t.Errorf("direction_id=%v (%T); want int 1", rec["direction_id"], rec["direction_id"])
	}
}

func TestTransformUnparsableIntLeftAbsent(t *testing.T) {
	tr := &Transformer{AgencyKey: "x"}
	rec, err := tr.Transform(map[string]string{"stop_sequence": "seven"})
	if err != nil {
		t.Fatalf("coercion failure must not be fatal: %v", err)
	}
	if _, ok := rec["stop_sequence"]; ok {
		t.Error("unparsable stop_sequence must be absent")
	}
}

func TestTransformCoordinatePair(t *testing.T) {
	var b Bounds
	tr := &Transformer{AgencyKey: "x", Bounds: &b}
	rec, err := tr.Transform(map[string]string{"stop_lon": "2.35", "stop_lat": "48.85"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, ok := rec["loc"].([]float64)
	if !ok || len(loc) != 2 || loc[0] != 2.35 || loc[1] != 48.85 {
		t.Fatalf("loc=%v; want [2.35 48.85]", rec["loc"])
	}
	if rec["stop_lon"] != 2.35 || rec["stop_lat"] != 48.85 {
		t.Errorf("lon/lat not stored as floats: %v %v", rec["stop_lon"], rec["stop_lat"])
	}
	if !b.IsSet() || b.SW() != [2]float64{2.35, 48.85} {
		t.Errorf("bounds not fed: set=%v sw=%v", b.IsSet(), b.SW())
	}
}

func TestTransformBadCoordinateKeptAsZeroPair(t *testing.T) {
	var b Bounds
	tr := &Transformer{AgencyKey: "x", Bounds: &b}
	rec, err := tr.Transform(map[string]string{"stop_lon": "not-a-number", "stop_lat": "48.85"})
	if err != nil {
		t.Fatalf("row with a bad coordinate must be kept: %v", err)
	}
	loc, ok := rec["loc"].([]float64)
	if !ok || loc[0] != 0 || loc[1] != 0 {
		t.Fatalf("loc=%v; want the exact (0,0) marker", rec["loc"])
	}
	if b.IsSet() {
		t.Error("bad pair must not be fed into bounds")
	}
}

func TestTransformProjectionAppliedBeforeBounds(t *testing.T) {
	var b Bounds
	shift := func(lon, lat float64) (float64, float64) { return lon + 100, lat + 10 }
	tr := &Transformer{AgencyKey: "x", Proj: shift, Bounds: &b}
	rec, err := tr.Transform(map[string]string{"stop_lon": "1", "stop_lat": "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["stop_lon"] != 101.0 || rec["stop_lat"] != 12.0 {
		t.Errorf("projected values must overwrite lon/lat: %v %v", rec["stop_lon"], rec["stop_lat"])
	}
	if b.SW() != [2]float64{101, 12} {
		t.Errorf("bounds must see projected coordinates, sw=%v", b.SW())
	}
}

func TestTransformBadPairNotProjected(t *testing.T) {
	shift := func(lon, lat float64) (float64, float64) { return lon + 100, lat + 10 }
	tr := &Transformer{AgencyKey: "x", Proj: shift}
	rec, err := tr.Transform(map[string]string{"stop_lon": "oops", "stop_lat": "oops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc := rec["loc"].([]float64)
	if loc[0] != 0 || loc[1] != 0 {
		t.Errorf("corrected pair must keep its (0,0) marker, got %v", loc)
	}
}

func TestTransformMalformedRow(t *testing.T) {
	tr := &Transformer{AgencyKey: "x"}
	if _, err := tr.Transform(nil); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("err=%v; want ErrMalformedRow", err)
	}
}

package gtfs

import (
	"math/rand"
	"testing"
)

func TestBoundsFirstObservationInitializes(t *testing.T) {
	var b Bounds
	if b.IsSet() {
		t.Fatal("zero-value bounds must be unset")
	}
	b.Extend(-5, 10)
	if !b.IsSet() {
		t.Fatal("bounds must be set after first Extend")
	}
	if b.SW() != [2]float64{-5, 10} || b.NE() != [2]float64{-5, 10} {
		t.Fatalf("first observation must set both corners, got sw=%v ne=%v", b.SW(), b.NE())
	}
}

func TestBoundsExtend(t *testing.T) {
	var b Bounds
	b.Extend(2, 2)
	b.Extend(-1, 5)
	b.Extend(3, -4)
	if b.SW() != [2]float64{-1, -4} {
		t.Errorf("sw=%v; want [-1 -4]", b.SW())
	}
	if b.NE() != [2]float64{3, 5} {
		t.Errorf("ne=%v; want [3 5]", b.NE())
	}
}

func TestBoundsOrderIndependent(t *testing.T) {
	points := [][2]float64{{2.35, 48.85}, {-0.5, 44.8}, {5.4, 43.3}, {1.1, 49.4}, {3.0, 50.6}}

	var want Bounds
	for _, p := range points {
		want.Extend(p[0], p[1])
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([][2]float64(nil), points...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		var got Bounds
		for _, p := range shuffled {
			got.Extend(p[0], p[1])
		}
		if got.SW() != want.SW() || got.NE() != want.NE() {
			t.Fatalf("order-dependent bounds: got sw=%v ne=%v, want sw=%v ne=%v", got.SW(), got.NE(), want.SW(), want.NE())
		}
	}
}

func TestBoundsCenter(t *testing.T) {
	var b Bounds
	if _, _, ok := b.Center(); ok {
		t.Fatal("unset bounds must not produce a center")
	}
	b.Extend(2, 40)
	b.Extend(4, 50)
	lon, lat, ok := b.Center()
	if !ok {
		t.Fatal("expected a center")
	}
	if lon != 3 || lat != 45 {
		t.Errorf("center=(%v, %v); want (3, 45)", lon, lat)
	}
}

func TestBoundsCenterSinglePoint(t *testing.T) {
	var b Bounds
	b.Extend(2.35, 48.85)
	lon, lat, ok := b.Center()
	if !ok || lon != 2.35 || lat != 48.85 {
		t.Errorf("center=(%v, %v, %v); want (2.35, 48.85, true)", lon, lat, ok)
	}
}

package gtfs

// Bounds is the running axis-aligned rectangle containing every valid
// coordinate seen during one agency import. The zero value is unset; the
// first Extend initializes both corners so an empty bound never compares as
// a real coordinate.
type Bounds struct {
	sw  [2]float64
	ne  [2]float64
	set bool
}

// Extend grows the rectangle to include (lon, lat).
func (b *Bounds) Extend(lon, lat float64) {
	if !b.set {
		b.sw = [2]float64{lon, lat}
		b.ne = [2]float64{lon, lat}
		b.set = true
		return
	}
	if lon < b.sw[0] {
		b.sw[0] = lon
	}
	if lon > b.ne[0] {
		b.ne[0] = lon
	}
	if lat < b.sw[1] {
		b.sw[1] = lat
	}
	if lat > b.ne[1] {
		b.ne[1] = lat
	}
}

// IsSet reports whether any coordinate has been accumulated.
func (b *Bounds) IsSet() bool { return b.set }

// SW returns the southwest corner as [lon, lat].
func (b *Bounds) SW() [2]float64 { return b.sw }

// NE returns the northeast corner as [lon, lat].
func (b *Bounds) NE() [2]float64 { return b.ne }

// Center returns the midpoint of the rectangle on each axis.
func (b *Bounds) Center() (lon, lat float64, ok bool) {
	if !b.set {
		return 0, 0, false
	}
	lon = (b.ne[0]-b.sw[0])/2 + b.sw[0]
	lat = (b.ne[1]-b.sw[1])/2 + b.sw[1]
	return lon, lat, true
}

package gtfs

import "github.com/yourorg/transitload/internal/store"

// FileSpec declares one importable GTFS file: its base name inside the
// archive, the target collection, and an optional schema for the collection.
type FileSpec struct {
	FileNameBase string
	Collection   string
	Mapping      store.Mapping
}

// Files is the closed list of GTFS files the importer knows about, in import
// order. Shared read-only across all agency tasks.
var Files = []FileSpec{
	{
		FileNameBase: "agency",
		Collection:   "agencies",
		Mapping: store.Mapping{
			"agency_id":       store.TypeString,
			"agency_name":     store.TypeString,
			"agency_key":      store.TypeString,
			"agency_url":      store.TypeString,
			"agency_timezone": store.TypeString,
			"agency_lang":     store.TypeString,
		},
	},
	{
		FileNameBase: "calendar_dates",
		Collection:   "calendardates",
		Mapping: store.Mapping{
			"service_id":     store.TypeString,
			"agency_key":     store.TypeString,
			"date":           store.TypeInteger,
			"exception_type": store.TypeInteger,
		},
	},
	{
		FileNameBase: "calendar",
		Collection:   "calendars",
		Mapping: store.Mapping{
			"service_id": store.TypeString,
			"agency_key": store.TypeString,
			"monday":     store.TypeInteger,
			"tuesday":    store.TypeInteger,
			"wednesday":  store.TypeInteger,
			"thursday":   store.TypeInteger,
			"friday":     store.TypeInteger,
			"saturday":   store.TypeInteger,
			"sunday":     store.TypeInteger,
			"start_date": store.TypeInteger,
			"end_date":   store.TypeInteger,
		},
	},
	{
		FileNameBase: "fare_attributes",
		Collection:   "fareattributes",
	},
	{
		FileNameBase: "fare_rules",
		Collection:   "farerules",
	},
	{
		FileNameBase: "feed_info",
		Collection:   "feedinfos",
	},
	{
		FileNameBase: "frequencies",
		Collection:   "frequencies",
	},
	{
		FileNameBase: "routes",
		Collection:   "routes",
		Mapping: store.Mapping{
			"route_id":         store.TypeString,
			"agency_id":        store.TypeString,
			"agency_key":       store.TypeString,
			"route_short_name": store.TypeString,
			"route_long_name":  store.TypeString,
			"route_desc":       store.TypeString,
			"route_type":       store.TypeString,
			"route_url":        store.TypeString,
			"route_color":      store.TypeString,
			"route_text_color": store.TypeString,
		},
	},
	{
		FileNameBase: "stop_times",
		Collection:   "stoptimes",
		Mapping: store.Mapping{
			"trip_id":             store.TypeString,
			"agency_key":          store.TypeString,
			"arrival_time":        store.TypeString,
			"departure_time":      store.TypeString,
			"stop_id":             store.TypeString,
			"stop_sequence":       store.TypeInteger,
			"stop_headsign":       store.TypeString,
			"pickup_type":         store.TypeString,
			"drop_off_type":       store.TypeString,
			"shape_dist_traveled": store.TypeString,
		},
	},
	{
		FileNameBase: "stops",
		Collection:   "stops",
		Mapping: store.Mapping{
			"stop_id":        store.TypeString,
			"agency_key":     store.TypeString,
			"stop_name":      store.TypeString,
			"stop_desc":      store.TypeString,
			"stop_lat":       store.TypeFloat,
			"stop_lon":       store.TypeFloat,
			"zone_id":        store.TypeString,
			"stop_url":       store.TypeString,
			"location_type":  store.TypeString,
			"parent_station": store.TypeString,
			"loc":            store.TypeGeoPoint,
		},
	},
	{
		FileNameBase: "transfers",
		Collection:   "transfers",
		Mapping: store.Mapping{
			"from_stop_id":      store.TypeString,
			"agency_key":        store.TypeString,
			"to_stop_id":        store.TypeString,
			"transfer_type":     store.TypeString,
			"min_transfer_time": store.TypeString,
		},
	},
	{
		FileNameBase: "trips",
		Collection:   "trips",
		Mapping: store.Mapping{
			"route_id":      store.TypeString,
			"agency_key":    store.TypeString,
			"service_id":    store.TypeString,
			"trip_id":       store.TypeString,
			"trip_headsign": store.TypeString,
			"direction_id":  store.TypeString,
			"block_id":      store.TypeString,
			"shape_id":      store.TypeString,
		},
	},
}

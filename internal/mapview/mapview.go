// Package mapview exports a simulation as GeoJSON for the dashboard map: one point per
// station and one line string per corridor segment, each carrying its congestion.
package mapview

import (
	"github.com/paulmach/orb/geojson"

	"github.com/cxd309/tram-policy/internal/corridor"
	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/station"
)

// feature kinds
const (
	KindStation = "station"
	KindSegment = "segment"
)

// FeatureCollection builds the map layer for result. c may be nil, in which case only
// station points are emitted. Stations without a per-station result are shown with zero
// congestion.
func FeatureCollection(stations []station.Station, result engine.Result, c *corridor.Corridor) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	byID := make(map[int]engine.StationResult, len(result.PerStation))
	for _, sr := range result.PerStation {
		byID[sr.StationID] = sr
	}

	for _, s := range stations {
		sr := byID[s.ID]
		f := geojson.NewFeature(s.Point())
		f.ID = s.ID
		f.Properties["kind"] = KindStation
		f.Properties["id"] = s.ID
		f.Properties["name"] = s.Name
		f.Properties["congestion"] = sr.CongestionPercent
		f.Properties["level"] = string(corridor.LevelFor(sr.CongestionPercent))
		f.Properties["passengers"] = sr.ProjectedPassengers
		f.Properties["shared"] = s.IsShared
		if s.Zone != nil && s.Zone.Type != "" {
			f.Properties["zone"] = string(s.Zone.Type)
		}
		fc.Append(f)
	}

	if c == nil {
		return fc
	}
	for _, l := range c.Load(result.PerStation) {
		f := geojson.NewFeature(c.Geometry(l.Segment))
		f.ID = l.ID
		f.Properties["kind"] = KindSegment
		f.Properties["line"] = l.Line
		f.Properties["from"] = l.From
		f.Properties["to"] = l.To
		f.Properties["congestion"] = l.CongestionPercent
		f.Properties["level"] = string(l.Level)
		f.Properties["length_m"] = l.LengthM
		fc.Append(f)
	}
	return fc
}

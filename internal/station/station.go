// Package station provides the station dataset consumed by the policy engine: the station
// records themselves, a CSV loader matching the dashboard's export format and an embedded
// default dataset for Daejeon tram line 2.
package station

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ZoneType classifies the land use around a station.
type ZoneType string

const (
	ZoneResidential ZoneType = "residential"
	ZoneCommercial  ZoneType = "commercial"
	ZoneOffice      ZoneType = "office"
	ZoneTransfer    ZoneType = "transfer"
)

// Zone is optional demand-weighting metadata. A nil CommercialScore means the station has
// no commercial weighting.
type Zone struct {
	Type            ZoneType `json:"type" validate:"omitempty,oneof=residential commercial office transfer"`
	CommercialScore *float64 `json:"commercial_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Station is one tram stop. Stations are loaded once and never mutated afterwards.
type Station struct {
	ID             int     `json:"id" validate:"gt=0"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon            float64 `json:"lon" validate:"gte=-180,lte=180"`
	BasePassengers float64 `json:"base_passengers" validate:"gte=0"` // daily boardings
	IsShared       bool    `json:"is_shared"`                        // right-of-way shared with road traffic
	Zone           *Zone   `json:"zone,omitempty"`
}

// Validate checks s against its field tags. Infinite or NaN numbers are rejected too;
// the range tags let +Inf through.
func (s Station) Validate() error {
	if err := finite("lat", s.Lat); err != nil {
		return err
	}
	if err := finite("lon", s.Lon); err != nil {
		return err
	}
	if err := finite("base_passengers", s.BasePassengers); err != nil {
		return err
	}
	if s.Zone != nil && s.Zone.CommercialScore != nil {
		if err := finite("commercial_score", *s.Zone.CommercialScore); err != nil {
			return err
		}
	}
	return validate.Struct(s)
}

func finite(name string, v float64) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%s is not finite: %v", name, v)
	}
	return nil
}

// Point returns the station location as an orb point (lon, lat order).
func (s Station) Point() orb.Point {
	return orb.Point{s.Lon, s.Lat}
}

// Line is an ordered run of station ids. A Loop line connects its last station back to its
// first.
type Line struct {
	Name       string `json:"name" yaml:"name"`
	StationIDs []int  `json:"station_ids" yaml:"stationIds"`
	Loop       bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
}

// Index maps station ids to stations.
func Index(stations []Station) map[int]Station {
	m := make(map[int]Station, len(stations))
	for _, s := range stations {
		m[s.ID] = s
	}
	return m
}

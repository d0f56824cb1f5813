package station

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultBasePassengers replaces a missing or zero base_passengers value.
const DefaultBasePassengers = 600

var validate = validator.New()

// column names of the station export
const (
	colID         = "station_id"
	colName       = "station_name"
	colLat        = "lat"
	colLon        = "lon"
	colPassengers = "base_passengers"
	colShared     = "is_shared"
	colZone       = "zone_type"
	colCommercial = "commercial_score"
)

// LoadCSVFile opens path and parses it with LoadCSV.
func LoadCSVFile(path string) ([]Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stations, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stations, nil
}

// LoadCSV parses a station table with a header row. Rows missing an id or coordinates are
// skipped; a missing base_passengers falls back to DefaultBasePassengers. The result is
// sorted by station id.
func LoadCSV(r io.Reader) ([]Station, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Station{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(clean(h))] = i
	}
	for _, required := range []string{colID, colLat, colLon} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return clean(rec[i])
	}

	stations := make([]Station, 0)
	seen := make(map[int]int)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, errID := strconv.Atoi(field(rec, colID))
		lat, errLat := strconv.ParseFloat(field(rec, colLat), 64)
		lon, errLon := strconv.ParseFloat(field(rec, colLon), 64)
		if errID != nil || errLat != nil || errLon != nil || id == 0 || lat == 0 || lon == 0 {
			continue
		}

		if first, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: duplicate station_id %d (first on line %d)", line, id, first)
		}
		seen[id] = line

		st := Station{
			ID:             id,
			Name:           field(rec, colName),
			Lat:            lat,
			Lon:            lon,
			BasePassengers: DefaultBasePassengers,
			IsShared:       strings.EqualFold(field(rec, colShared), "true"),
		}
		if v := field(rec, colPassengers); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: base_passengers %q: %w", line, v, err)
			}
			if n != 0 {
				st.BasePassengers = n
			}
		}
		zone, err := parseZone(field(rec, colZone), field(rec, colCommercial))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		st.Zone = zone

		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: station %d: %w", line, id, err)
		}
		stations = append(stations, st)
	}

	sort.SliceStable(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

func parseZone(zoneType, commercial string) (*Zone, error) {
	if zoneType == "" && commercial == "" {
		return nil, nil
	}
	z := &Zone{Type: ZoneType(strings.ToLower(zoneType))}
	if commercial != "" {
		v, err := strconv.ParseFloat(commercial, 64)
		if err != nil {
			return nil, fmt.Errorf("commercial_score %q: %w", commercial, err)
		}
		z.CommercialScore = &v
	}
	return z, nil
}

// clean strips quotes and surrounding whitespace, which the source spreadsheets leave
// behind.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

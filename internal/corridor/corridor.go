// Package corridor models the tram network as stations joined by track segments, so
// per-station congestion can be shown along the line and between two stops.
package corridor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/station"
)

// ErrUnknownStation is returned when a line or route names a station that is not in the
// corridor.
var ErrUnknownStation = errors.New("unknown station")

// ErrNoRoute is returned when two stations are not connected.
var ErrNoRoute = errors.New("no route")

// Level is the traffic level shown for a segment.
type Level string

const (
	LevelSmooth    Level = "smooth"
	LevelSlow      Level = "slow"
	LevelCongested Level = "congested"
	LevelHeavy     Level = "heavy"
	LevelGridlock  Level = "gridlock"
)

// LevelFor bands a congestion percentage.
func LevelFor(congestion float64) Level {
	switch {
	case congestion <= 30:
		return LevelSmooth
	case congestion <= 50:
		return LevelSlow
	case congestion <= 75:
		return LevelCongested
	case congestion <= 90:
		return LevelHeavy
	default:
		return LevelGridlock
	}
}

// Node is a station position in the corridor.
type Node struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Point orb.Point `json:"point"` // lon, lat
}

// Segment is the track between two adjacent stations of a line.
type Segment struct {
	ID      string  `json:"id"`
	Line    string  `json:"line"`
	From    int     `json:"from"`
	To      int     `json:"to"`
	LengthM float64 `json:"length_m"` // great-circle metres
}

// Corridor is the station network. It is safe for concurrent readers once built.
type Corridor struct {
	nodes    []Node
	nodeMap  map[int]Node
	segments []Segment
	segMap   map[string]Segment
	adjacent map[int]map[int]Segment // both directions

	// all-pairs tables; nil until a route is first requested
	mu   sync.Mutex
	dist map[int]map[int]float64
	next map[int]map[int]int
}

// New builds a corridor from stations and the lines that run through them.
func New(stations []station.Station, lines []station.Line) (*Corridor, error) {
	c := &Corridor{
		nodeMap:  make(map[int]Node),
		segMap:   make(map[string]Segment),
		adjacent: make(map[int]map[int]Segment),
	}
	for _, s := range stations {
		if err := c.AddNode(Node{ID: s.ID, Name: s.Name, Point: s.Point()}); err != nil {
			return nil, err
		}
	}
	for _, l := range lines {
		if err := c.AddLine(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddNode adds a station. Returns an error if the id already exists.
func (c *Corridor) AddNode(n Node) error {
	if _, exists := c.nodeMap[n.ID]; exists {
		return fmt.Errorf("station %d already exists", n.ID)
	}
	c.nodes = append(c.nodes, n)
	c.nodeMap[n.ID] = n
	c.invalidate()
	return nil
}

// AddLine adds a segment between every consecutive pair of the line's stations, and from
// the last back to the first for a loop.
func (c *Corridor) AddLine(l station.Line) error {
	ids := l.StationIDs
	for i := 1; i < len(ids); i++ {
		if err := c.AddSegment(l.Name, ids[i-1], ids[i]); err != nil {
			return fmt.Errorf("line %q: %w", l.Name, err)
		}
	}
	if l.Loop && len(ids) > 2 {
		if err := c.AddSegment(l.Name, ids[len(ids)-1], ids[0]); err != nil {
			return fmt.Errorf("line %q: %w", l.Name, err)
		}
	}
	return nil
}

// AddSegment joins two stations. Returns an error if either station is missing or the
// pair is already joined.
func (c *Corridor) AddSegment(line string, from, to int) error {
	u, ok := c.nodeMap[from]
	if !ok {
		return fmt.Errorf("segment %d-%d: %w %d", from, to, ErrUnknownStation, from)
	}
	v, ok := c.nodeMap[to]
	if !ok {
		return fmt.Errorf("segment %d-%d: %w %d", from, to, ErrUnknownStation, to)
	}
	if _, exists := c.adjacent[from][to]; exists {
		return fmt.Errorf("segment %d-%d already exists", from, to)
	}
	s := Segment{
		ID:      fmt.Sprintf("%s:%d-%d", line, from, to),
		Line:    line,
		From:    from,
		To:      to,
		LengthM: geo.Distance(u.Point, v.Point),
	}
	c.segments = append(c.segments, s)
	c.segMap[s.ID] = s
	c.link(from, to, s)
	c.link(to, from, s)
	c.invalidate()
	return nil
}

func (c *Corridor) link(u, v int, s Segment) {
	if c.adjacent[u] == nil {
		c.adjacent[u] = make(map[int]Segment)
	}
	c.adjacent[u][v] = s
}

func (c *Corridor) invalidate() {
	c.mu.Lock()
	c.dist, c.next = nil, nil
	c.mu.Unlock()
}

// Nodes returns the stations in insertion order.
func (c *Corridor) Nodes() []Node {
	return append([]Node(nil), c.nodes...)
}

// Segments returns the segments in insertion order.
func (c *Corridor) Segments() []Segment {
	return append([]Segment(nil), c.segments...)
}

// Segment returns the segment joining u and v in either direction.
func (c *Corridor) Segment(u, v int) (Segment, error) {
	if s, ok := c.adjacent[u][v]; ok {
		return s, nil
	}
	return Segment{}, fmt.Errorf("no segment between %d and %d", u, v)
}

// Geometry returns the segment as a line string from its From to its To station.
func (c *Corridor) Geometry(s Segment) orb.LineString {
	return orb.LineString{c.nodeMap[s.From].Point, c.nodeMap[s.To].Point}
}

// SegmentLoad is a segment with the congestion it carries under one simulation.
type SegmentLoad struct {
	Segment
	CongestionPercent float64 `json:"congestion_percent"`
	Level             Level   `json:"level"`
}

// Load rates every segment by the mean clamped congestion of its two stations. Stations
// missing from perStation count as zero.
func (c *Corridor) Load(perStation []engine.StationResult) []SegmentLoad {
	return LoadSegments(c.segments, perStation)
}

// LoadSegments rates segs as Load does.
func LoadSegments(segs []Segment, perStation []engine.StationResult) []SegmentLoad {
	byID := make(map[int]float64, len(perStation))
	for _, sr := range perStation {
		byID[sr.StationID] = sr.CongestionPercent
	}
	out := make([]SegmentLoad, 0, len(segs))
	for _, s := range segs {
		cong := (byID[s.From] + byID[s.To]) / 2
		out = append(out, SegmentLoad{Segment: s, CongestionPercent: cong, Level: LevelFor(cong)})
	}
	return out
}

// MeanCongestion is the length-weighted mean congestion of loads; zero-length input
// returns zero.
func MeanCongestion(loads []SegmentLoad) float64 {
	var sum, length float64
	for _, l := range loads {
		sum += l.CongestionPercent * l.LengthM
		length += l.LengthM
	}
	if length == 0 {
		return 0
	}
	return sum / length
}

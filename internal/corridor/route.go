package corridor

import (
	"fmt"
	"math"
)

// Route is the shortest track path between two stations.
type Route struct {
	From     int       `json:"from"`
	To       int       `json:"to"`
	Stations []int     `json:"stations"` // ordered from From to To
	Segments []Segment `json:"segments"`
	LengthM  float64   `json:"length_m"`
}

// computeRoutes runs Floyd-Warshall over all stations using segment lengths. The caller
// holds c.mu.
func (c *Corridor) computeRoutes() {
	dist := make(map[int]map[int]float64, len(c.nodes))
	next := make(map[int]map[int]int, len(c.nodes))
	for _, i := range c.nodes {
		dist[i.ID] = make(map[int]float64, len(c.nodes))
		next[i.ID] = make(map[int]int)
		for _, j := range c.nodes {
			dist[i.ID][j.ID] = math.Inf(1)
		}
		dist[i.ID][i.ID] = 0
	}
	for u, m := range c.adjacent {
		for v, s := range m {
			dist[u][v] = s.LengthM
			next[u][v] = v
		}
	}
	for _, k := range c.nodes {
		for _, i := range c.nodes {
			for _, j := range c.nodes {
				if d := dist[i.ID][k.ID] + dist[k.ID][j.ID]; d < dist[i.ID][j.ID] {
					dist[i.ID][j.ID] = d
					next[i.ID][j.ID] = next[i.ID][k.ID]
				}
			}
		}
	}
	c.dist = dist
	c.next = next
}

// Route returns the shortest path from one station to another. Returns an error wrapping
// ErrUnknownStation for an id outside the corridor, or ErrNoRoute if the two are not
// connected.
func (c *Corridor) Route(from, to int) (Route, error) {
	for _, id := range []int{from, to} {
		if _, ok := c.nodeMap[id]; !ok {
			return Route{}, fmt.Errorf("route %d-%d: %w %d", from, to, ErrUnknownStation, id)
		}
	}
	if from == to {
		return Route{From: from, To: to, Stations: []int{from}, Segments: []Segment{}}, nil
	}

	c.mu.Lock()
	if c.dist == nil {
		c.computeRoutes()
	}
	d := c.dist[from][to]
	next := c.next
	c.mu.Unlock()

	if math.IsInf(d, 1) {
		return Route{}, fmt.Errorf("%w from %d to %d", ErrNoRoute, from, to)
	}

	r := Route{From: from, To: to, Stations: []int{from}, LengthM: d}
	for u := from; u != to; {
		v, ok := next[u][to]
		if !ok {
			return Route{}, fmt.Errorf("%w from %d to %d", ErrNoRoute, from, to)
		}
		r.Segments = append(r.Segments, c.adjacent[u][v])
		r.Stations = append(r.Stations, v)
		u = v
	}
	return r, nil
}

package station

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed data/daejeon_line2.csv
var daejeonCSV []byte

// Default returns the embedded Daejeon line 2 dataset. It panics if the embedded file is
// malformed, which would be a build defect.
func Default() []Station {
	stations, err := LoadCSV(bytes.NewReader(daejeonCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded station dataset: %v", err))
	}
	return stations
}

// DefaultLines returns the line layout of the embedded dataset: the 201-240 loop and the
// northern and southern branches.
func DefaultLines() []Line {
	loop := make([]int, 0, 40)
	for id := 201; id <= 240; id++ {
		loop = append(loop, id)
	}
	return []Line{
		{Name: "loop", StationIDs: loop, Loop: true},
		{Name: "north", StationIDs: []int{212, 241, 242, 243, 244}},
		{Name: "south", StationIDs: []int{233, 245}},
	}
}

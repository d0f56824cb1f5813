// Command tram-policy reads a dashboard Request JSON from a file argument (or stdin),
// runs the simulation, and writes the Response JSON to stdout.
//
//	tram-policy [-stations stations.csv] [-alternative] [request.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cxd309/tram-policy/internal/dashboard"
	"github.com/cxd309/tram-policy/internal/station"
)

func main() {
	stationsPath := flag.String("stations", "", "station CSV to use instead of the embedded dataset")
	alternative := flag.Bool("alternative", false, "also search for the cheapest acceptable alternative")
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	var (
		data []byte
		err  error
	)
	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		logger.Error().Err(err).Msg("error reading input")
		os.Exit(1)
	}

	var req dashboard.Request
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Error().Err(err).Msg("invalid input JSON")
		os.Exit(1)
	}
	if *stationsPath != "" {
		req.Stations, err = station.LoadCSVFile(*stationsPath)
		if err != nil {
			logger.Error().Err(err).Msg("error loading stations")
			os.Exit(1)
		}
		logger.Debug().Int("stations", len(req.Stations)).Str("path", *stationsPath).Msg("stations loaded")
	}
	if *alternative && req.Alternative == nil {
		req.Alternative = &dashboard.AlternativeRequest{}
	}

	resp, err := dashboard.Run(req)
	if err != nil {
		logger.Error().Err(err).Msg("simulation error")
		os.Exit(1)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		logger.Error().Err(err).Msg("marshaling output")
		os.Exit(1)
	}
	fmt.Println(string(out))
}

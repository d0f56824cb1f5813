// Command server serves the tram policy engine over HTTP for the dashboard.
//
// Configuration is read from the file named by TRAM_POLICY_CONFIG, or config.yml in the
// working directory; a .env file is loaded first if present. Without a configuration file
// the embedded Daejeon dataset and default calibration are used.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/cxd309/tram-policy/internal/api"
	"github.com/cxd309/tram-policy/internal/config"
	"github.com/cxd309/tram-policy/internal/corridor"
	"github.com/cxd309/tram-policy/internal/scenario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	missing := errors.Is(err, config.ErrNotFound)
	switch {
	case missing:
		cfg = config.Default()
	case err != nil:
		return err
	}

	logger, err := cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = logger
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using the process environment")
	}
	if missing {
		logger.Warn().Msg("no configuration file found, using defaults")
	}

	stations, err := cfg.Stations()
	if err != nil {
		return fmt.Errorf("loading stations: %w", err)
	}
	network, err := corridor.New(stations, cfg.Data.Lines)
	if err != nil {
		return fmt.Errorf("building corridor: %w", err)
	}
	logger.Info().
		Int("stations", len(stations)).
		Int("segments", len(network.Segments())).
		Msg("station data loaded")

	handler := api.NewHandler(api.Options{
		Model:     cfg.Model(),
		Stations:  stations,
		Corridor:  network,
		Scenarios: scenario.NewLog(cfg.Scenarios.Capacity),
		Search:    cfg.SearchOptions(),
		Logger:    logger,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	handler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()
	logger.Info().Str("addr", addr).Msg("server listening")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		return err
	case sig := <-sigs:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server shut down")
	return nil
}

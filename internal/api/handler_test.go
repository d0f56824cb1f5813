package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cxd309/tram-policy/internal/corridor"
	"github.com/cxd309/tram-policy/internal/engine"
	"github.com/cxd309/tram-policy/internal/judge"
	"github.com/cxd309/tram-policy/internal/scenario"
	"github.com/cxd309/tram-policy/internal/search"
	"github.com/cxd309/tram-policy/internal/station"
)

func newTestRouter(t *testing.T, stations []station.Station) (*gin.Engine, *scenario.Log) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var c *corridor.Corridor
	if len(stations) > 0 {
		var err error
		c, err = corridor.New(stations, station.DefaultLines())
		if err != nil {
			t.Fatalf("corridor.New: %v", err)
		}
	}
	log := scenario.NewLog(2)
	h := NewHandler(Options{
		Model:     engine.Default(),
		Stations:  stations,
		Corridor:  c,
		Scenarios: log,
		Search:    search.Options{Workers: 4},
		Logger:    zerolog.Nop(),
	})
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	h.RegisterRoutes(r)
	return r, log
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndStations(t *testing.T) {
	r, _ := newTestRouter(t, station.Default())

	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/stations", "")
	var stations []station.Station
	if err := json.Unmarshal(w.Body.Bytes(), &stations); err != nil {
		t.Fatalf("decoding stations: %v", err)
	}
	if len(stations) != len(station.Default()) {
		t.Errorf("got %d stations, want %d", len(stations), len(station.Default()))
	}
}

func TestSimulate(t *testing.T) {
	r, _ := newTestRouter(t, station.Default())

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "valid", body: `{"dispatch_interval_minutes": 6, "bus_reduction_percent": 10, "weather": {"kind": "rain", "intensity": 50}}`, want: http.StatusOK},
		{name: "malformed body", body: `{"dispatch_interval_minutes": "six"}`, want: http.StatusBadRequest},
		{name: "zero interval", body: `{"dispatch_interval_minutes": 0}`, want: http.StatusBadRequest},
		{name: "unknown time slot", body: `{"dispatch_interval_minutes": 6, "time_slot": "night"}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/simulate", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var resp SimulateResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if !resp.Result.Ready || resp.Judgment == nil {
				t.Errorf("expected a ready, judged result: %+v", resp)
			}
		})
	}
}

func TestSimulateNotReady(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := do(t, r, http.MethodPost, "/api/simulate", `{"dispatch_interval_minutes": 6}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SimulateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Result.Ready || resp.Judgment != nil {
		t.Errorf("expected the not-ready result without a judgment: %+v", resp)
	}
}

func TestJudge(t *testing.T) {
	r, _ := newTestRouter(t, station.Default())
	w := do(t, r, http.MethodPost, "/api/judge", `{"congestion": 115, "complaint_score": 10, "budget_change_percent": 5}`)
	var j judge.Judgment
	if err := json.Unmarshal(w.Body.Bytes(), &j); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if j.Tier != judge.TierTrialCaution {
		t.Errorf("tier = %q, want %q", j.Tier, judge.TierTrialCaution)
	}
}

func TestAlternative(t *testing.T) {
	r, _ := newTestRouter(t, station.Default())
	w := do(t, r, http.MethodPost, "/api/alternative", `{"weather": {"kind": "snow", "intensity": 80}, "time_slot": "morning"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var alt search.Alternative
	if err := json.Unmarshal(w.Body.Bytes(), &alt); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !alt.Found || alt.Best == nil || alt.Best.Judgment.Tier == judge.TierReject {
		t.Errorf("expected an acceptable alternative: %+v", alt)
	}
}

func TestMapAndRoute(t *testing.T) {
	r, _ := newTestRouter(t, station.Default())

	w := do(t, r, http.MethodPost, "/api/map", `{"dispatch_interval_minutes": 8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("map status = %d: %s", w.Code, w.Body.String())
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decoding map: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) <= len(station.Default()) {
		t.Errorf("expected station and segment features, got %d of type %q", len(fc.Features), fc.Type)
	}

	w = do(t, r, http.MethodPost, "/api/route", `{"params": {"dispatch_interval_minutes": 8}, "from": 201, "to": 205}`)
	if w.Code != http.StatusOK {
		t.Fatalf("route status = %d: %s", w.Code, w.Body.String())
	}
	var route RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &route); err != nil {
		t.Fatalf("decoding route: %v", err)
	}
	if len(route.Route.Stations) < 2 || len(route.Segments) != len(route.Route.Stations)-1 {
		t.Errorf("inconsistent route %+v", route)
	}

	w = do(t, r, http.MethodPost, "/api/route", `{"params": {"dispatch_interval_minutes": 8}, "from": 201, "to": 999}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown station status = %d, want 404", w.Code)
	}
}

func TestScenarios(t *testing.T) {
	r, log := newTestRouter(t, station.Default())

	for _, label := range []string{"a", "b", "c"} {
		w := do(t, r, http.MethodPost, "/api/scenarios", `{"label": "`+label+`", "params": {"dispatch_interval_minutes": 7}}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
		}
	}
	if log.Len() != 2 {
		t.Errorf("log holds %d entries, want its capacity of 2", log.Len())
	}

	w := do(t, r, http.MethodGet, "/api/scenarios", "")
	var entries []scenario.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(entries) != 2 || entries[0].Label != "c" {
		t.Errorf("expected newest first, got %+v", entries)
	}

	if w := do(t, r, http.MethodPost, "/api/scenarios", `{"params": {"dispatch_interval_minutes": -1}}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid scenario status = %d, want 400", w.Code)
	}

	if w := do(t, r, http.MethodDelete, "/api/scenarios", ""); w.Code != http.StatusNoContent {
		t.Errorf("clear status = %d, want 204", w.Code)
	}
	if log.Len() != 0 {
		t.Errorf("log not cleared: %d entries", log.Len())
	}
}

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/logger"
	"github.com/dbehnke/gdl90-nexus/pkg/metrics"
	"github.com/dbehnke/gdl90-nexus/pkg/traffic"
)

// API handles REST API endpoints
type API struct {
	collector *metrics.Collector
	table     *traffic.Table
	logger    *logger.Logger
}

// NewAPI creates a new API instance
func NewAPI(collector *metrics.Collector, table *traffic.Table, log *logger.Logger) *API {
	return &API{
		collector: collector,
		table:     table,
		logger:    log,
	}
}

// fixView is the JSON shape of a position fix.
type fixView struct {
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Altitude           int32   `json:"altitude"`
	AltitudeValid      bool    `json:"altitude_valid"`
	GroundSpeed        uint16  `json:"ground_speed"`
	GroundSpeedValid   bool    `json:"ground_speed_valid"`
	VerticalSpeed      int32   `json:"vertical_speed"`
	VerticalSpeedValid bool    `json:"vertical_speed_valid"`
	Track              float64 `json:"track"`
	Airborne           bool    `json:"airborne"`
}

// targetView is the JSON shape of one traffic target.
type targetView struct {
	ICAO      string    `json:"icao"`
	Callsign  string    `json:"callsign"`
	Emitter   uint8     `json:"emitter"`
	Alert     bool      `json:"alert"`
	Position  fixView   `json:"position"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Reports   uint64    `json:"reports"`
}

func icaoString(icao uint32) string {
	return fmt.Sprintf("%06X", icao)
}

func newFixView(f traffic.Fix) fixView {
	return fixView{
		Latitude:           f.Latitude,
		Longitude:          f.Longitude,
		Altitude:           f.Altitude,
		AltitudeValid:      f.AltitudeValid,
		GroundSpeed:        f.GroundSpeed,
		GroundSpeedValid:   f.GroundSpeedValid,
		VerticalSpeed:      f.VerticalSpeed,
		VerticalSpeedValid: f.VerticalSpeedValid,
		Track:              f.Track,
		Airborne:           f.Airborne,
	}
}

func newTargetView(snap traffic.TargetSnapshot) targetView {
	return targetView{
		ICAO:      icaoString(snap.ICAO),
		Callsign:  snap.Callsign,
		Emitter:   snap.Emitter,
		Alert:     snap.Alert,
		Position:  newFixView(snap.Fix),
		FirstSeen: snap.FirstSeen,
		LastSeen:  snap.LastSeen,
		Reports:   snap.Reports,
	}
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	info := GetVersionInfo()
	response := map[string]interface{}{
		"status":         "running",
		"service":        "gdl90-nexus",
		"version":        info.Version,
		"commit":         info.Commit,
		"built":          info.Built,
		"active_targets": a.table.Count(),
	}

	json.NewEncoder(w).Encode(response)
}

// HandleStatistics handles the /api/statistics endpoint
func (a *API) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(a.collector.Snapshot())
}

// HandleTraffic handles the /api/traffic endpoint
func (a *API) HandleTraffic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	targets := make([]targetView, 0)
	for _, snap := range a.table.Active() {
		targets = append(targets, newTargetView(snap))
	}
	json.NewEncoder(w).Encode(targets)
}

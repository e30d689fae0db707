package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jpalmerr/wifiboard/internal/monitor"
	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/scan"
)

// errorReply is the JSON body for any failed API call.
type errorReply struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// scanReply carries a one-shot snapshot, strongest network first.
type scanReply struct {
	Success   bool               `json:"success"`
	Networks  []scan.Observation `json:"networks"`
	Timestamp time.Time          `json:"timestamp"`
	Count     int                `json:"count"`
}

// signalReply is scanReply plus the prediction capability flags reported by
// GET /api/signal.
type signalReply struct {
	scanReply
	MLAvailable bool    `json:"ml_available"`
	ModelType   *string `json:"model_type"`
}

// commandReply acknowledges a monitor command with the resulting session
// status.
type commandReply struct {
	Success bool                   `json:"success"`
	Status  monitor.StatusSnapshot `json:"status"`
}

// historyReply carries the rolling history for one network.
type historyReply struct {
	Success bool               `json:"success"`
	SSID    string             `json:"ssid"`
	History []scan.Observation `json:"history"`
	Count   int                `json:"count"`
}

// predictReply wraps either a location-based or a basic prediction.
type predictReply struct {
	Success    bool `json:"success"`
	Prediction any  `json:"prediction"`
	MLPowered  bool `json:"ml_powered"`
}

// locationPrediction is the model-backed prediction body.
type locationPrediction struct {
	LocationX      float64   `json:"location_x"`
	LocationY      float64   `json:"location_y"`
	PredictedRSSI  float64   `json:"predicted_rssi"`
	SignalQuality  int       `json:"signal_quality"`
	Status         string    `json:"status"`
	Recommendation string    `json:"recommendation"`
	ModelUsed      string    `json:"model_used"`
	Timestamp      time.Time `json:"timestamp"`
}

// basicPrediction is the fallback body computed from a raw signal strength.
type basicPrediction struct {
	SSID           string    `json:"ssid"`
	SignalStrength int       `json:"signal_strength"`
	SignalQuality  int       `json:"signal_quality"`
	Status         string    `json:"status"`
	Recommendation string    `json:"recommendation"`
	ModelUsed      string    `json:"model_used"`
	Timestamp      time.Time `json:"timestamp"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorReply{Success: false, Error: msg})
}

// handleSignal performs a one-shot scan and reports the snapshot together
// with the prediction capability of this instance.
func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	obs, err := s.session.ScanOnce(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rep := signalReply{
		scanReply: scanReply{
			Success:   true,
			Networks:  obs,
			Timestamp: time.Now().UTC(),
			Count:     len(obs),
		},
		MLAvailable: s.cfg.Model != nil,
	}
	if s.cfg.Model != nil {
		name := s.cfg.Model.DisplayName()
		rep.ModelType = &name
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// handleScan performs a one-shot scan on demand.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	obs, err := s.session.ScanOnce(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, scanReply{
		Success:   true,
		Networks:  obs,
		Timestamp: time.Now().UTC(),
		Count:     len(obs),
	})
}

// handleNetworks reports the latest observation for every tracked network.
func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	networks := s.session.Tracked()
	s.writeJSON(w, http.StatusOK, scanReply{
		Success:   true,
		Networks:  networks,
		Timestamp: time.Now().UTC(),
		Count:     len(networks),
	})
}

// handleHistory reports the rolling history for one network.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ssid := chi.URLParam(r, "ssid")
	history, ok := s.session.History(ssid)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no history for %q", ssid))
		return
	}
	s.writeJSON(w, http.StatusOK, historyReply{
		Success: true,
		SSID:    ssid,
		History: history,
		Count:   len(history),
	})
}

// handleMonitorStatus reports the session state machine as-is.
func (s *Server) handleMonitorStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Status())
}

// handleMonitorStart starts monitoring. The optional body selects what to
// track: {"target": id} for single mode, {"targets": [id, ...]} for multi
// mode (an empty list tracks everything). Without a body the previous
// selection is reused.
//
// The session is anchored on the server's lifetime context, not the
// request's: monitoring must outlive the request that started it.
func (s *Server) handleMonitorStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target  string   `json:"target"`
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.session.Start(s.baseCtx, monitor.StartOptions{
		Target:  req.Target,
		Targets: req.Targets,
	})
	if errors.Is(err, monitor.ErrAlreadyRunning) {
		s.writeError(w, http.StatusConflict, "monitoring already running")
		return
	}
	s.writeJSON(w, http.StatusOK, commandReply{Success: true, Status: s.session.Status()})
}

// handleMonitorStop stops monitoring; history buffers survive.
func (s *Server) handleMonitorStop(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Stop(); errors.Is(err, monitor.ErrNotRunning) {
		s.writeError(w, http.StatusConflict, "monitoring not running")
		return
	}
	s.writeJSON(w, http.StatusOK, commandReply{Success: true, Status: s.session.Status()})
}

// handleSelect mutates the tracked-network selection. Body:
// {"ssid": id, "action": "toggle"|"all"|"clear"}; the action defaults to
// the mode's natural operation (replace in single, toggle in multi).
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SSID   string `json:"ssid"`
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.session.Select(req.SSID, req.Action); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, commandReply{Success: true, Status: s.session.Status()})
}

// handleRefresh clears every network's history buffer.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.session.Refresh()
	s.writeJSON(w, http.StatusOK, commandReply{Success: true, Status: s.session.Status()})
}

// handlePredict estimates signal quality either from floor-plan coordinates
// (model-backed) or from a raw signal strength (basic calculation).
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationX      *float64 `json:"location_x"`
		LocationY      *float64 `json:"location_y"`
		SignalStrength *int     `json:"signal_strength"`
		SSID           string   `json:"ssid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "No input data provided")
		return
	}

	now := time.Now().UTC()
	switch {
	case req.LocationX != nil && req.LocationY != nil && s.cfg.Model != nil:
		rssi := s.cfg.Model.Predict(*req.LocationX, *req.LocationY)
		quality := scan.QualityFloat(rssi)
		s.writeJSON(w, http.StatusOK, predictReply{
			Success:   true,
			MLPowered: true,
			Prediction: locationPrediction{
				LocationX:      *req.LocationX,
				LocationY:      *req.LocationY,
				PredictedRSSI:  math.Round(rssi*100) / 100,
				SignalQuality:  quality,
				Status:         predict.Grade(quality),
				Recommendation: predict.Recommendation(quality),
				ModelUsed:      s.cfg.Model.DisplayName(),
				Timestamp:      now,
			},
		})

	case req.LocationX != nil && req.LocationY != nil:
		// coordinates given but no model is loaded
		s.writeError(w, http.StatusBadRequest,
			"No prediction model loaded. Provide signal_strength for a basic calculation")

	case req.SignalStrength != nil:
		ssid := req.SSID
		if ssid == "" {
			ssid = "Unknown"
		}
		quality := scan.Quality(*req.SignalStrength)
		s.writeJSON(w, http.StatusOK, predictReply{
			Success:   true,
			MLPowered: false,
			Prediction: basicPrediction{
				SSID:           ssid,
				SignalStrength: *req.SignalStrength,
				SignalQuality:  quality,
				Status:         predict.Grade(quality),
				Recommendation: predict.Recommendation(quality),
				ModelUsed:      "Basic calculation",
				Timestamp:      now,
			},
		})

	default:
		s.writeError(w, http.StatusBadRequest,
			"Invalid input. Provide either (location_x, location_y) or signal_strength")
	}
}

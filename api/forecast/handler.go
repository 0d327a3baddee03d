// Package forecast exposes the model over a small JSON API consumed by the
// dashboard. The model itself is not safe for concurrent use, so every
// handler serializes access through one mutex.
package forecast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/core/logger"
)

// Defaults supply the request parameters callers may omit.
type Defaults struct {
	ForecastDays   int
	Replicas       int
	Bounds         causal.Bounds
	MaxGenerations int
	UseCurrent     bool
}

// Feed receives completed forecasts and calibrations; nil disables it.
type Feed interface {
	PublishForecast(from time.Time, series []int) error
	PublishCalibration(res causal.CalibrationResult) error
}

// Handler serves the forecast API.
type Handler struct {
	mu       sync.Mutex
	model    *causal.Model
	defaults Defaults
	feed     Feed
	log      logger.Logger
}

// NewHandler wires the model into an API handler.
func NewHandler(model *causal.Model, defaults Defaults, feed Feed, log logger.Logger) *Handler {
	return &Handler{model: model, defaults: defaults, feed: feed, log: log}
}

// Register attaches the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/forecast", h.handleForecast)
	mux.HandleFunc("/api/calibrate", h.handleCalibrate)
	mux.HandleFunc("/api/window", h.handleWindow)
}

type forecastResponse struct {
	From      string `json:"from"`
	Days      int    `json:"days"`
	Replicas  int    `json:"replicas"`
	Mode      string `json:"mode"`
	Occupancy []int  `json:"occupancy"`
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	days, err := queryInt(r, "days", h.defaults.ForecastDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	replicas, err := queryInt(r, "replicas", h.defaults.Replicas)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	_, _, _, to, _ := h.model.Window()
	series, err := h.model.Predict(days, replicas, mode)
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	from := to.AddDate(0, 0, 1)
	if h.feed != nil {
		if err := h.feed.PublishForecast(from, series); err != nil {
			h.log.Warnf("publish forecast: %v", err)
		}
	}
	writeJSON(w, forecastResponse{
		From:      from.Format(time.DateOnly),
		Days:      days,
		Replicas:  replicas,
		Mode:      mode.String(),
		Occupancy: series,
	})
}

type calibrateRequest struct {
	Replicas       int            `json:"replicas"`
	MaxGenerations int            `json:"max_generations"`
	UseCurrent     *bool          `json:"use_current"`
	Bounds         *[4][2]float64 `json:"bounds"`
}

func (h *Handler) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := calibrateRequest{
		Replicas:       h.defaults.Replicas,
		MaxGenerations: h.defaults.MaxGenerations,
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
			return
		}
	}
	opts := causal.CalibrateOptions{
		Replicas:       req.Replicas,
		Bounds:         h.defaults.Bounds,
		MaxGenerations: req.MaxGenerations,
		UseCurrent:     h.defaults.UseCurrent,
	}
	if req.UseCurrent != nil {
		opts.UseCurrent = *req.UseCurrent
	}
	if req.Bounds != nil {
		for i, b := range req.Bounds {
			opts.Bounds[i].Min = b[0]
			opts.Bounds[i].Max = b[1]
		}
	}

	h.mu.Lock()
	res, err := h.model.Calibrate(opts)
	h.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if h.feed != nil {
		if err := h.feed.PublishCalibration(res); err != nil {
			h.log.Warnf("publish calibration: %v", err)
		}
	}
	writeJSON(w, res)
}

type windowResponse struct {
	Region    string        `json:"region"`
	BedType   string        `json:"bed_type"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Buffer    int           `json:"buffer"`
	Params    causal.Params `json:"params"`
	Occupancy []int         `json:"occupancy"`
}

func (h *Handler) handleWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.mu.Lock()
	region, bedType, from, to, buffer := h.model.Window()
	resp := windowResponse{
		Region:    region,
		BedType:   string(bedType),
		From:      from.Format(time.DateOnly),
		To:        to.Format(time.DateOnly),
		Buffer:    buffer,
		Params:    h.model.Params(),
		Occupancy: h.model.ReferenceOccupancy(),
	}
	h.mu.Unlock()
	writeJSON(w, resp)
}

func parseMode(s string) (causal.Mode, error) {
	switch s {
	case "", "concurrent":
		return causal.Concurrent, nil
	case "sequential":
		return causal.Sequential, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

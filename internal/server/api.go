package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/atharvtrasi/playlist-stand-chart/internal/chart"
	"github.com/atharvtrasi/playlist-stand-chart/internal/shared"
	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// API serves chart computations against a lazily loaded reference table.
type API struct {
	stands *stands.Handle
	logger *log.Logger
}

// NewAPI creates an [API] backed by h.
func NewAPI(h *stands.Handle, logger *log.Logger) *API {
	return &API{stands: h, logger: logger}
}

// Routes implements [Handler].
func (a *API) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/chart", Handler: http.HandlerFunc(a.Chart)},
		{Method: http.MethodPost, Path: "/chart/tracks", Handler: http.HandlerFunc(a.ChartTracks)},
		{Method: http.MethodGet, Path: "/stands", Handler: http.HandlerFunc(a.ListStands)},
		{Method: http.MethodGet, Path: "/stands/{name}", Handler: http.HandlerFunc(a.GetStand)},
		{Method: http.MethodGet, Path: "/health", Handler: http.HandlerFunc(a.Health)},
	}
}

// NewRouter builds the router with the full middleware stack and the API mounted.
func NewRouter(cfg shared.ServerConfig, api *API, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recoverer, RequestID, AccessLog(logger), CORS(cfg.AllowedOrigins), RateLimit(cfg.RequestsPerSecond, cfg.Burst))
	r.Handler(api)
	return r
}

// table returns the reference table, writing a 500 if it could not be loaded.
func (a *API) table(w http.ResponseWriter) (*stands.Table, bool) {
	t, err := a.stands.Table()
	if err != nil {
		a.logger.Error("reference table unavailable", "err", err)
		writeError(w, http.StatusInternalServerError, "reference table unavailable")
		return nil, false
	}
	return t, true
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", shared.ErrInvalidInput, err)
	}
	return data, nil
}

// Chart handles POST /chart. The body is a JSON object with the six playlist metrics.
func (a *API) Chart(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	m, err := chart.ParseMetrics(data)
	if err != nil {
		writeErr(w, err)
		return
	}

	table, ok := a.table(w)
	if !ok {
		return
	}

	res, err := chart.ComputeMatch(m, table)
	if err != nil {
		writeErr(w, err)
		return
	}

	a.logger.Debug("matched", "stand", res.Stand.Name, "distance", res.Distance)
	writeJSON(w, http.StatusOK, res)
}

// tracksRequest is the body of POST /chart/tracks.
type tracksRequest struct {
	Tracks    []chart.TrackAnalysis `json:"tracks"`
	Potential *int                  `json:"potential"`
}

// ChartTracks handles POST /chart/tracks: per-track analyses are aggregated and then matched.
func (a *API) ChartTracks(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req tracksRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writeErr(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}
	if req.Potential == nil {
		writeErr(w, &chart.ValidationError{Fields: []string{chart.KeyPotential}})
		return
	}

	raw, err := chart.Aggregate(req.Tracks, *req.Potential)
	if err != nil {
		writeErr(w, err)
		return
	}

	m, err := raw.Validate()
	if err != nil {
		writeErr(w, err)
		return
	}

	table, ok := a.table(w)
	if !ok {
		return
	}

	res, err := chart.ComputeMatch(m, table)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Metrics chart.Metrics `json:"metrics"`
		chart.Result
	}{Metrics: m, Result: res})
}

// ListStands handles GET /stands.
func (a *API) ListStands(w http.ResponseWriter, r *http.Request) {
	table, ok := a.table(w)
	if !ok {
		return
	}

	rows := make([]stands.Row, 0, table.Len())
	for row := range table.Rows() {
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetStand handles GET /stands/{name}.
func (a *API) GetStand(w http.ResponseWriter, r *http.Request) {
	table, ok := a.table(w)
	if !ok {
		return
	}

	name := r.PathValue("name")
	row, found := table.Lookup(name)
	if !found {
		writeErr(w, fmt.Errorf("%w: %s", shared.ErrStandMissing, name))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// Health handles GET /health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

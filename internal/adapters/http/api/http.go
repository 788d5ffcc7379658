// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/bounceland/internal/app"
	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/tabular"
	"github.com/okian/bounceland/internal/domain/types"
)

// CallerHeader carries the id of the chat user making the request.
const CallerHeader = "X-User-ID"

const maxJSONBody = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BouncelandDependencies
	TableDependencies
	MealDependencies
	LiveDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	bouncelandHandler *BouncelandHandler
	tableHandler      *TableHandler
	mealHandler       *MealHandler
	liveHandler       *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := options{maxUpload: defaultMaxUpload}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		bouncelandHandler: NewBouncelandHandler(deps),
		tableHandler:      NewTableHandler(deps, cfg.maxUpload),
		mealHandler:       NewMealHandler(deps),
		liveHandler:       NewLiveHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/bounceland/modes", MetricsMiddleware(s.bouncelandHandler.HandleModes, "bounceland_modes"))
	mux.HandleFunc("/bounceland/weeks", MetricsMiddleware(s.bouncelandHandler.HandleWeeks, "bounceland_weeks"))
	mux.HandleFunc("/bounceland/summary", MetricsMiddleware(s.bouncelandHandler.HandleSummary, "bounceland_summary"))
	mux.HandleFunc("/bounceland/view", MetricsMiddleware(s.bouncelandHandler.HandleView, "bounceland_view"))
	mux.HandleFunc("/bounceland/dataset", MetricsMiddleware(s.bouncelandHandler.HandleDataset, "bounceland_dataset"))
	mux.HandleFunc("/bounceland/post", MetricsMiddleware(s.bouncelandHandler.HandlePost, "bounceland_post"))
	mux.HandleFunc("/actions", MetricsMiddleware(s.bouncelandHandler.HandleAction, "actions"))

	mux.HandleFunc("/bounceland/export", MetricsMiddleware(s.tableHandler.HandleExport, "bounceland_export"))
	mux.HandleFunc("/bounceland/import", MetricsMiddleware(s.tableHandler.HandleImport, "bounceland_import"))
	mux.HandleFunc("/bounceland/reset", MetricsMiddleware(s.tableHandler.HandleReset, "bounceland_reset"))

	mux.HandleFunc("/meal/toggle", MetricsMiddleware(s.mealHandler.HandleToggle, "meal_toggle"))
	mux.HandleFunc("/meal/summary", MetricsMiddleware(s.mealHandler.HandleSummary, "meal_summary"))
	mux.HandleFunc("/meal/post", MetricsMiddleware(s.mealHandler.HandlePost, "meal_post"))

	mux.HandleFunc("/live/", MetricsMiddleware(s.liveHandler.HandleGetLive, "live"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code and error body.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	case errors.Is(err, service.ErrBackupFailed):
		return http.StatusInternalServerError, "backup_failed"
	case isValidation(err):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

var validationErrors = []error{
	ErrBadRequest,
	ErrMissingCaller,
	types.ErrMissingField,
	attendance.ErrUnknownMode,
	attendance.ErrInvalidChoice,
	attendance.ErrInvalidWeek,
	meal.ErrUnknownDay,
	tabular.ErrUnreadableTable,
	service.ErrInvalidAction,
	service.ErrUnsupportedFormat,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func caller(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(CallerHeader))
	if id == "" {
		return "", ErrMissingCaller
	}
	return id, nil
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, op string, v interface{ Validate() error }) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := v.Validate(); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

package api

import (
	"context"
	"net/http"

	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/types"
)

// BouncelandDependencies defines the interface for Bounceland poll operations.
type BouncelandDependencies interface {
	ToggleMode(ctx context.Context, userID string, req types.ModeRequest) (types.InteractionResponse, error)
	SetWeekChoice(ctx context.Context, userID string, req types.WeekRequest) (types.InteractionResponse, error)
	HandleAction(ctx context.Context, userID string, req types.ActionRequest) (types.InteractionResponse, error)
	PostBounceland(ctx context.Context, caller string) (types.PostResponse, error)
	Summary() string
	View(userID string) attendance.View
	Dataset() *model.Dataset
}

// BouncelandHandler handles Bounceland poll requests.
type BouncelandHandler struct {
	deps BouncelandDependencies
}

// NewBouncelandHandler creates a new Bounceland handler.
func NewBouncelandHandler(deps BouncelandDependencies) *BouncelandHandler {
	return &BouncelandHandler{deps: deps}
}

// HandleModes handles POST /bounceland/modes requests.
func (h *BouncelandHandler) HandleModes(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_mode"
	var req types.ModeRequest
	interact(w, r, op, &req, func(ctx context.Context, userID string) (types.InteractionResponse, error) {
		return h.deps.ToggleMode(ctx, userID, req)
	})
}

// HandleWeeks handles POST /bounceland/weeks requests.
func (h *BouncelandHandler) HandleWeeks(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_week_choice"
	var req types.WeekRequest
	interact(w, r, op, &req, func(ctx context.Context, userID string) (types.InteractionResponse, error) {
		return h.deps.SetWeekChoice(ctx, userID, req)
	})
}

// HandleAction handles POST /actions requests carrying a button action.
func (h *BouncelandHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.action"
	var req types.ActionRequest
	interact(w, r, op, &req, func(ctx context.Context, userID string) (types.InteractionResponse, error) {
		return h.deps.HandleAction(ctx, userID, req)
	})
}

// HandleSummary handles GET /bounceland/summary requests.
func (h *BouncelandHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, types.SummaryResponse{Text: h.deps.Summary()})
}

// HandleView handles GET /bounceland/view?user_id= requests.
func (h *BouncelandHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View(r.URL.Query().Get("user_id")))
}

// HandleDataset handles GET /bounceland/dataset requests.
func (h *BouncelandHandler) HandleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Dataset())
}

// HandlePost handles POST /bounceland/post requests.
func (h *BouncelandHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_bounceland"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := caller(r)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	resp, err := h.deps.PostBounceland(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// interact runs the shared request cycle of a button press: caller, body,
// validation, then fn.
func interact(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	req interface{ Validate() error },
	fn func(ctx context.Context, userID string) (types.InteractionResponse, error),
) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, err := caller(r)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	if err := decode(w, r, op, req); err != nil {
		writeFailure(w, err)
		return
	}
	resp, err := fn(r.Context(), userID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

package api

import (
	"context"
	"net/http"

	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/types"
)

// MealDependencies defines the interface for meal poll operations.
type MealDependencies interface {
	ToggleMeal(ctx context.Context, userID string, req types.MealRequest) (types.InteractionResponse, error)
	PostMeal(ctx context.Context, caller string) (types.PostResponse, error)
	MealSummary() string
	MealView(name string) meal.View
}

// MealHandler handles meal poll requests.
type MealHandler struct {
	deps MealDependencies
}

// NewMealHandler creates a new meal handler.
func NewMealHandler(deps MealDependencies) *MealHandler {
	return &MealHandler{deps: deps}
}

// HandleToggle handles POST /meal/toggle requests.
func (h *MealHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_meal"
	var req types.MealRequest
	interact(w, r, op, &req, func(ctx context.Context, userID string) (types.InteractionResponse, error) {
		return h.deps.ToggleMeal(ctx, userID, req)
	})
}

// HandleSummary handles GET /meal/summary requests. With ?name= the
// participant's days are marked.
func (h *MealHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		writeJSON(w, http.StatusOK, h.deps.MealView(name))
		return
	}
	writeJSON(w, http.StatusOK, types.SummaryResponse{Text: h.deps.MealSummary()})
}

// HandlePost handles POST /meal/post requests.
func (h *MealHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_meal"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := caller(r)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	resp, err := h.deps.PostMeal(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

package api

import (
	"net/http"
	"strings"

	"github.com/okian/bounceland/internal/domain/model"
)

// LiveDependencies defines the interface for reading live poll messages.
type LiveDependencies interface {
	Live(poll model.Poll) (model.Update, bool)
}

// LiveHandler handles live message requests.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a new live message handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleGetLive handles GET /live/{poll} requests.
func (h *LiveHandler) HandleGetLive(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_live"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/live/")
	if path == "" || strings.Contains(path, "/") {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	poll := model.Poll(path)
	if !poll.Valid() {
		writeFailure(w, NewKind(op, ErrNotFound))
		return
	}
	u, ok := h.deps.Live(poll)
	if !ok {
		writeFailure(w, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

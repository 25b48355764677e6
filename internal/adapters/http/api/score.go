package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
)

// ScoreDependencies scores a record synchronously.
type ScoreDependencies interface {
	Score(ctx context.Context, kind intake.Kind, f intake.Fields) (types.Outcome, error)
}

// ScoreHandler handles synchronous scoring requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleScore handles POST /v1/score/{kind}. An empty body scores an empty
// record.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	kind, err := intake.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_kind", WrapKind(op, ErrNotFound, err))
		return
	}
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Score(r.Context(), kind, req.Fields)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "cancelled", WrapKind(op, ErrUnavailable, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

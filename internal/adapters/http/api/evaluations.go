package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ismailopm12/coffeeqc/internal/adapters/repository"
	service "github.com/ismailopm12/coffeeqc/internal/app"
	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
)

// EvaluationDependencies defines the submission pipeline and its read side.
type EvaluationDependencies interface {
	// Submit queues a submission. duplicate is true when its id was
	// already accepted.
	Submit(ctx context.Context, s model.Submission) (duplicate bool, err error)
	Get(ctx context.Context, id string) (types.Evaluation, error)
	Top(ctx context.Context, kind intake.Kind, n int) ([]types.Evaluation, error)
}

// EvaluationsHandler handles asynchronous evaluation requests.
type EvaluationsHandler struct {
	deps     EvaluationDependencies
	maxLimit int
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationDependencies, maxLimit int) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleSubmit handles POST /v1/evaluations.
func (h *EvaluationsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_evaluation"
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub := req.submission(kind)
	duplicate, err := h.deps.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	case duplicate:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: sub.ID, Duplicate: true})
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: sub.ID})
	}
}

// HandleGet handles GET /v1/evaluations/{id}.
func (h *EvaluationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_evaluation"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	e, err := h.deps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleList handles GET /v1/evaluations?kind=K&limit=N. limit defaults to
// 10 and must lie in 1..maxLimit.
func (h *EvaluationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_evaluations"
	q := r.URL.Query()
	kind, err := intake.ParseKind(q.Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	n := defaultListLimit
	if s := q.Get("limit"); s != "" {
		n, err = strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	list, err := h.deps.Top(r.Context(), kind, n)
	if err != nil {
		if errors.Is(err, repository.ErrUnranked) || errors.Is(err, repository.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if list == nil {
		list = []types.Evaluation{}
	}
	writeJSON(w, http.StatusOK, listResponse{Kind: string(kind), Evaluations: list})
}

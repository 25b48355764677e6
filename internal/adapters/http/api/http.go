// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	"github.com/ismailopm12/coffeeqc/pkg/logger"
	"github.com/ismailopm12/coffeeqc/pkg/metrics"
)

const (
	defaultMaxListLimit = 100
	defaultListLimit    = 10
	maxBodyBytes        = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	EvaluationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	evaluationsHandler *EvaluationsHandler
}

// NewServer creates a new API server with all handlers. maxListLimit caps
// GET /v1/evaluations?limit; values < 1 select the default of 100.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxListLimit int) *Server {
	if maxListLimit < 1 {
		maxListLimit = defaultMaxListLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoreHandler:       NewScoreHandler(deps),
		evaluationsHandler: NewEvaluationsHandler(deps, maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /v1/score/{kind}", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("POST /v1/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /v1/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleList, "list"))
	mux.HandleFunc("GET /v1/evaluations/{id}", MetricsMiddleware(s.evaluationsHandler.HandleGet, "get"))
}

// scoreRequest mirrors the OpenAPI schema for POST /v1/score/{kind}.
type scoreRequest struct {
	Fields intake.Fields `json:"fields"`
}

// submitRequest mirrors the OpenAPI schema for POST /v1/evaluations.
type submitRequest struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	SampleID string        `json:"sample_id"`
	Fields   intake.Fields `json:"fields"`
}

func (s submitRequest) validate() (intake.Kind, error) {
	if strings.TrimSpace(s.Kind) == "" {
		return "", errors.New("missing kind")
	}
	k, err := intake.ParseKind(s.Kind)
	if err != nil {
		return "", err
	}
	if s.Fields == nil {
		return "", errors.New("missing fields")
	}
	return k, nil
}

func (s submitRequest) submission(k intake.Kind) model.Submission {
	return model.NewSubmission(strings.TrimSpace(s.ID), k, s.SampleID, s.Fields)
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type listResponse struct {
	Kind        string             `json:"kind"`
	Evaluations []types.Evaluation `json:"evaluations"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// encodeFailureBody is sent when a response value cannot be encoded.
const encodeFailureBody = `{"code":"encode_error","message":"response could not be encoded"}` + "\n"

// writeJSON encodes v before writing the header so an unencodable value
// still yields a 500 with a body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		logger.Named("api").Error(context.Background(), "failed to encode response",
			logger.Int("status", status), logger.Error(err))
		metrics.RecordErrorByComponent("api", "encode_error")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, encodeFailureBody)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Named("api").Debug(context.Background(), "failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

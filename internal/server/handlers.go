package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/optimizer"
	"github.com/rickgao/delivery-planner/internal/planner"
	"github.com/rickgao/delivery-planner/internal/store"
	"github.com/rickgao/delivery-planner/internal/version"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 100
	healthTimeout    = 5 * time.Second
)

// decode reads a JSON body into v. Unknown fields are rejected so typos in
// order payloads surface as 400s.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// planStatus maps planning errors to an HTTP status and error code.
func planStatus(err error) (int, string) {
	switch {
	case errors.Is(err, api.ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidOrder),
		errors.Is(err, model.ErrInvalidLocation),
		errors.Is(err, optimizer.ErrUnknownStrategy):
		return http.StatusBadRequest, api.CodeInvalidRequest
	case errors.Is(err, optimizer.ErrNoFeasibleRoute),
		errors.Is(err, planner.ErrUnknownUser):
		return http.StatusUnprocessableEntity, api.CodeInfeasible
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, api.CodeInternal
	default:
		return http.StatusInternalServerError, api.CodeInternal
	}
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var body api.PlanRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	plan, err := s.deps.Planner.PlanRoute(r.Context(), req)
	if err != nil {
		status, code := planStatus(err)
		if status >= 500 {
			s.logger.Error("plan request failed", "error", err)
		}
		writeError(w, s.logger, status, code, err.Error())
		return
	}

	w.Header().Set("Location", "/v1/plans/"+plan.ID.String())
	writeJSON(w, s.logger, http.StatusCreated, api.NewPlanResponse(plan))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, "plan id must be a UUID")
		return
	}

	plan, err := s.deps.Planner.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, s.logger, http.StatusNotFound, api.CodeNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("get plan failed", "plan_id", id, "error", err)
		writeError(w, s.logger, http.StatusInternalServerError, api.CodeInternal, "failed to load plan")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, api.NewPlanResponse(plan))
}

func (s *Server) handleListAgentPlans(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest,
				fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	plans, err := s.deps.Planner.ListByAgent(r.Context(), agentID, limit)
	if err != nil {
		s.logger.Error("list plans failed", "agent_id", agentID, "error", err)
		writeError(w, s.logger, http.StatusInternalServerError, api.CodeInternal, "failed to list plans")
		return
	}

	writeJSON(w, s.logger, http.StatusOK, api.NewPlanListResponse(agentID, plans))
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var body api.DispatchRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}
	if len(body.Agents) == 0 {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, "agents is required")
		return
	}

	jobs, err := body.ToJobs()
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	summary := s.deps.Dispatcher.Dispatch(r.Context(), jobs)
	writeJSON(w, s.logger, http.StatusOK, api.NewDispatchResponse(summary))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	health := api.HealthResponse{
		Status:     "ok",
		Version:    version.Version,
		Components: make(map[string]string, len(s.deps.Checks)+1),
	}

	for name, check := range s.deps.Checks {
		status, err := check(ctx)
		if err != nil {
			health.Status = "unhealthy"
			health.Components[name] = "error: " + err.Error()
			continue
		}
		health.Components[name] = status
	}
	if s.deps.Hub != nil {
		health.Components["stream"] = fmt.Sprintf("%d subscribers", s.deps.Hub.Stats().Subscribers)
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, s.logger, status, health)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	writeJSON(w, s.logger, http.StatusOK, api.VersionResponse{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
	})
}

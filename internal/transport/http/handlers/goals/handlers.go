package goalshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"goalspark/internal/domain/advisor"
	"goalspark/internal/domain/goals"
	"goalspark/internal/platform/metrics"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
	"goalspark/internal/transport/http/shared"
)

type Handler struct {
	Goals   *goals.Service
	Metrics *metrics.Collector
}

func NewHandler(goalService *goals.Service, collector *metrics.Collector) *Handler {
	return &Handler{Goals: goalService, Metrics: collector}
}

type createGoalRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	GoalType    string   `json:"goal_type"`
	Comparison  string   `json:"comparison"`
	TargetValue float64  `json:"target_value"`
	Unit        string   `json:"unit"`
	CycleType   string   `json:"cycle_type"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	AssignedTo  []string `json:"assigned_to"`
}

type updateGoalRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	EndDate     *string  `json:"end_date"`
	IsActive    *bool    `json:"is_active"`
}

type progressRequest struct {
	NewValue float64 `json:"new_value"`
	Status   string  `json:"status"`
	Comment  string  `json:"comment"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	input, ok := h.validateCreate(w, requestID, payload, true)
	if !ok {
		return
	}

	goal, err := h.Goals.Create(r.Context(), user, input)
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.GoalCreated()
	}
	api.Created(w, goal, requestID)
}

// HandleAssignByRole creates a goal against the members currently holding
// role_name; the membership snapshot is frozen at creation.
func (h *Handler) HandleAssignByRole(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	roleName := strings.TrimSpace(r.URL.Query().Get("role_name"))
	if roleName == "" {
		api.Fail(w, http.StatusBadRequest, "missing_role", "role_name query parameter is required", requestID)
		return
	}

	var payload createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	input, ok := h.validateCreate(w, requestID, payload, false)
	if !ok {
		return
	}

	goal, assigned, err := h.Goals.AssignByRole(r.Context(), user, roleName, input)
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.GoalCreated()
	}
	api.Created(w, map[string]any{"goal": goal, "assigned_count": assigned}, requestID)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))
	if statusFilter != "" && !goals.ValidStatus(statusFilter) {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown status filter", requestID)
		return
	}

	list, err := h.Goals.List(r.Context(), user, statusFilter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list goals", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	goal, err := h.Goals.Get(r.Context(), user, chi.URLParam(r, "goalID"))
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	api.Success(w, goal, requestID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	patch := goals.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		TargetValue: payload.TargetValue,
		Unit:        payload.Unit,
		IsActive:    payload.IsActive,
	}
	if payload.Title != nil {
		v.Required("title", *payload.Title, "title must not be blank")
	}
	if payload.TargetValue != nil {
		v.Positive("target_value", *payload.TargetValue, "target value must be greater than zero")
	}
	if payload.EndDate != nil {
		if parsed, ok := v.Date("end_date", *payload.EndDate); ok {
			patch.EndDate = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	goal, err := h.Goals.Update(r.Context(), user, chi.URLParam(r, "goalID"), patch)
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	api.Success(w, goal, requestID)
}

func (h *Handler) HandleRecordProgress(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload progressRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	goal, entry, err := h.Goals.RecordProgress(r.Context(), user, chi.URLParam(r, "goalID"), payload.NewValue, payload.Status, payload.Comment)
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.ProgressReported()
	}
	api.Success(w, map[string]any{"goal": goal, "progress_update": entry}, requestID)
}

func (h *Handler) HandleProgressHistory(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	entries, err := h.Goals.ProgressHistory(r.Context(), user, chi.URLParam(r, "goalID"), page.Limit)
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}
	api.Success(w, entries, requestID)
}

// HandleCommentPrompt suggests what to write alongside a progress report
// for the status the reporter is about to declare.
func (h *Handler) HandleCommentPrompt(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	goal, err := h.Goals.Get(r.Context(), user, chi.URLParam(r, "goalID"))
	if err != nil {
		h.failGoalError(w, requestID, err)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	api.Success(w, advisor.SuggestPrompt(goal, status, time.Now()), requestID)
}

func (h *Handler) validateCreate(w http.ResponseWriter, requestID string, payload createGoalRequest, requireAssignees bool) (goals.CreateInput, bool) {
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("description", payload.Description, "description is required")
	v.Required("unit", payload.Unit, "unit is required")
	v.Positive("target_value", payload.TargetValue, "target value must be greater than zero")
	v.Enum("goal_type", payload.GoalType, goals.GoalTypes, "unknown goal type")
	v.Enum("cycle_type", payload.CycleType, goals.Cycles, "unknown cycle type")
	v.Enum("comparison", payload.Comparison, goals.Comparisons, "unknown comparison mode")
	v.Required("goal_type", payload.GoalType, "goal type is required")
	v.Required("cycle_type", payload.CycleType, "cycle type is required")
	if requireAssignees && len(payload.AssignedTo) == 0 {
		v.Add("assigned_to", "at least one assignee is required")
	}

	start, startOK := v.Date("start_date", payload.StartDate)
	end, endOK := v.Date("end_date", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("start_date", start, "end_date", end)
	}
	if v.Reject(w, requestID) {
		return goals.CreateInput{}, false
	}

	return goals.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		GoalType:    strings.ToLower(strings.TrimSpace(payload.GoalType)),
		Comparison:  strings.ToLower(strings.TrimSpace(payload.Comparison)),
		TargetValue: payload.TargetValue,
		Unit:        payload.Unit,
		CycleType:   strings.ToLower(strings.TrimSpace(payload.CycleType)),
		StartDate:   start,
		EndDate:     end,
		AssignedTo:  payload.AssignedTo,
	}, true
}

func (h *Handler) failGoalError(w http.ResponseWriter, requestID string, err error) {
	switch {
	case errors.Is(err, goals.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", requestID)
	case errors.Is(err, goals.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "you do not have access to this goal", requestID)
	case errors.Is(err, goals.ErrUnknownAssignee):
		api.Fail(w, http.StatusBadRequest, "unknown_assignee", "one or more assigned users do not exist", requestID)
	case errors.Is(err, goals.ErrNoRoleMembers):
		api.Fail(w, http.StatusBadRequest, "empty_role", "no team members hold that role", requestID)
	case errors.Is(err, goals.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_status", err.Error(), requestID)
	case errors.Is(err, goals.ErrCommentRequired):
		api.Fail(w, http.StatusBadRequest, "comment_required", err.Error(), requestID)
	case errors.Is(err, goals.ErrNegativeValue):
		api.Fail(w, http.StatusBadRequest, "invalid_value", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

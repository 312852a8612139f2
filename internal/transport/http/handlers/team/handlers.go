package teamhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"goalspark/internal/domain/team"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
)

type Handler struct {
	Team *team.Service
}

func NewHandler(teamService *team.Service) *Handler {
	return &Handler{Team: teamService}
}

type updateMemberRequest struct {
	JobTitle   *string `json:"job_title"`
	CustomRole *string `json:"custom_role"`
	IsActive   *bool   `json:"is_active"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	members, err := h.Team.Members(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list team members", requestID)
		return
	}
	api.Success(w, members, requestID)
}

func (h *Handler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	member, err := h.Team.UpdateMember(r.Context(), user.UserID, chi.URLParam(r, "memberID"), team.MemberPatch{
		JobTitle:   payload.JobTitle,
		CustomRole: payload.CustomRole,
		IsActive:   payload.IsActive,
	})
	if err != nil {
		if errors.Is(err, team.ErrMemberNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team member not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update team member", requestID)
		return
	}
	api.Success(w, member, requestID)
}

func (h *Handler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	roles, err := h.Team.Roles(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list roles", requestID)
		return
	}
	api.Success(w, roles, requestID)
}

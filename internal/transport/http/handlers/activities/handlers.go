package activitieshandler

import (
	"net/http"
	"strings"

	"goalspark/internal/domain/activity"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
	"goalspark/internal/transport/http/shared"
)

type Handler struct {
	Activities *activity.Service
}

func NewHandler(activities *activity.Service) *Handler {
	return &Handler{Activities: activities}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	typeFilter := strings.TrimSpace(r.URL.Query().Get("activity_type"))
	page := shared.ParsePagination(r, activity.DefaultFeedLimit, activity.MaxFeedLimit)

	feed, err := h.Activities.Feed(r.Context(), user, typeFilter, page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to load activities", requestID)
		return
	}
	api.Success(w, feed, requestID)
}

func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	count, err := h.Activities.UnreadCount(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "count_failed", "failed to count unread activities", requestID)
		return
	}
	api.Success(w, map[string]int{"unread_count": count}, requestID)
}

func (h *Handler) HandleMarkSeen(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Activities.MarkSeen(r.Context(), user); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mark_seen_failed", "failed to mark activities seen", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "seen"}, requestID)
}

package analyticshandler

import (
	"log/slog"
	"net/http"
	"time"

	"goalspark/internal/domain/analytics"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
)

type Handler struct {
	Analytics *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{Analytics: service}
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	snapshot, err := h.Analytics.Dashboard(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to compute dashboard", requestID)
		return
	}
	api.Success(w, snapshot, requestID)
}

// HandleReportPDF streams the dashboard as a PDF; admin only, enforced at
// the router.
func (h *Handler) HandleReportPDF(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	snapshot, err := h.Analytics.Dashboard(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to compute dashboard", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="team-report.pdf"`)
	if err := analytics.WriteReportPDF(w, user.FullName, snapshot, time.Now()); err != nil {
		slog.Warn("report pdf render failed", "userId", user.UserID, "err", err)
	}
}

package demohandler

import (
	"net/http"

	"goalspark/internal/domain/demo"
	"goalspark/internal/requestctx"
	"goalspark/internal/transport/http/api"
	"goalspark/internal/transport/http/middleware"
)

type Handler struct {
	Generator *demo.Generator
}

func NewHandler(generator *demo.Generator) *Handler {
	return &Handler{Generator: generator}
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	result, err := h.Generator.Generate(r.Context(), user)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "generate_failed", "failed to generate demo data", requestID)
		return
	}
	api.Success(w, result, requestID)
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vaultpass/passgen-go/internal/generator"
	"github.com/vaultpass/passgen-go/internal/middleware"
	"github.com/vaultpass/passgen-go/internal/model"
	"github.com/vaultpass/passgen-go/internal/service"
)

// GeneratorHandler handles HTTP requests for password generation.
type GeneratorHandler struct {
	service *service.GeneratorService
}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// HandleGenerate handles POST /api/v1/generate requests.
func (h *GeneratorHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	h.generate(w, r, req)
}

// HandleGenerateModel handles POST /api/v1/generate/model requests. The
// mode field of the body is ignored.
func (h *GeneratorHandler) HandleGenerateModel(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	req.Mode = string(model.ModeModel)

	h.generate(w, r, req)
}

// HandleUsage handles GET /api/v1/usage requests.
func (h *GeneratorHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Usage(r.Context(), userID)
	if err != nil {
		slog.Error("failed to read usage", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GeneratorHandler) generate(w http.ResponseWriter, r *http.Request, req model.GenerateRequest) {
	var (
		resp model.GenerateResponse
		err  error
	)
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		resp, err = h.service.GenerateForUser(r.Context(), userID, req)
	} else {
		resp, err = h.service.Generate(r.Context(), req)
	}
	if err != nil {
		h.writeGenerateError(w, r, err)
		return
	}

	resp.RequestID = middleware.RequestIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, resp)
}

func (h *GeneratorHandler) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *generator.RemoteGenerationError
	switch {
	case generator.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAccountRequired):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrQuotaExceeded):
		writeJSON(w, http.StatusTooManyRequests, errorResponse(err.Error()))
	case errors.Is(err, generator.ErrModelUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(err.Error()))
	case errors.As(err, &remote):
		slog.Warn("remote generation failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"attempts", remote.Attempts,
			"error", err,
		)
		writeJSON(w, http.StatusBadGateway, errorResponse("password generation failed, please try again"))
	default:
		slog.Error("generation failed", "request_id", middleware.RequestIDFromContext(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

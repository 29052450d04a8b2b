package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/logger"
	"github.com/futig/studyroom-rag/internal/pkg/response"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20

type Handler struct {
	usecase   RetrievalUsecase
	validator *validator.Validator
}

func NewHandler(usecase RetrievalUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// BuildContext handles POST /rooms/{room_id}/context
func (h *Handler) BuildContext(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "BuildContext")
	roomID := chi.URLParam(r, "room_id")

	req, ok := h.decodeRequest(ctx, w, r, roomID)
	if !ok {
		return
	}

	ctxzap.Info(ctx, "building context",
		zap.String("topic", req.Topic),
		zap.Int("file_count", len(req.FileIDs)),
		zap.Int("max_chars", req.MaxChars),
	)

	result, err := h.usecase.BuildContext(ctx, roomID, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// ExportContext handles POST /rooms/{room_id}/context/export
func (h *Handler) ExportContext(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportContext")
	roomID := chi.URLParam(r, "room_id")

	req, ok := h.decodeRequest(ctx, w, r, roomID)
	if !ok {
		return
	}

	ctxzap.Info(ctx, "exporting context",
		zap.String("topic", req.Topic),
		zap.String("format", string(req.Format)),
	)

	exported, err := h.usecase.ExportContext(ctx, roomID, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.File(w, exported.ContentType, exported.FileName, exported.Data)
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, roomID string) (*entity.ContextRequest, bool) {
	if err := validator.ValidateID("room_id", roomID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return nil, false
	}

	var req entity.ContextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}

	if err := h.validator.ValidateContextRequest(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return nil, false
	}

	return &req, true
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrFileNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

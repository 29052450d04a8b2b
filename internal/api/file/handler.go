package file

import (
	"context"
	"errors"
	"net/http"

	"github.com/futig/studyroom-rag/internal/config"
	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/futig/studyroom-rag/internal/pkg/logger"
	"github.com/futig/studyroom-rag/internal/pkg/response"
	"github.com/futig/studyroom-rag/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      FileUsecase
	cfg          config.FileUploadConfig
	callbackConn CallbackConnector
	validator    *validator.Validator
}

func NewHandler(
	usecase FileUsecase,
	cfg config.FileUploadConfig,
	callbackConn CallbackConnector,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:      usecase,
		cfg:          cfg,
		callbackConn: callbackConn,
		validator:    validator,
	}
}

// UploadFile handles POST /rooms/{room_id}/files
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadFile")
	roomID := chi.URLParam(r, "room_id")

	requestID := r.Header.Get("X-Request-ID")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	req := entity.UploadFileRequest{
		RoomID:      roomID,
		CallbackURL: r.FormValue("callback_url"),
	}
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		req.File = files[0]
	}

	if err := h.validator.ValidateUploadFile(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("room_id", roomID))
	ctxzap.Info(ctx, "uploading file",
		zap.String("filename", req.File.Filename),
		zap.Int64("size_bytes", req.File.Size),
		zap.Bool("async", req.CallbackURL != ""),
	)

	if req.CallbackURL == "" {
		result, err := h.usecase.UploadFile(ctx, &req)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}

		response.Created(w, toUploadFileResponse(result))
		return
	}

	file, content, err := h.usecase.SaveFile(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	go func() {
		bgCtx := logger.Detach(ctx,
			zap.String("request_id", requestID),
			zap.String("file_id", file.ID),
			zap.String("action", "UploadFile-async"),
		)

		result, err := h.usecase.VectorizeContent(bgCtx, file, content)
		if err != nil {
			ctxzap.Error(bgCtx, "failed to vectorize file", zap.Error(err))
			h.callbackConn.SendError(bgCtx, req.CallbackURL, requestID, "failed to vectorize file", map[string]any{
				"file_id": file.ID,
				"room_id": file.RoomID,
				"error":   err.Error(),
			})
			return
		}

		h.callbackConn.SendFileVectorized(bgCtx, req.CallbackURL, requestID, toFileVectorizedData(file, result))
	}()

	response.Accepted(w, &entity.UploadAcceptedResponse{
		Status:  "accepted",
		Message: "file is stored, vectorization is being processed",
		File:    toFileDetail(file),
	})
}

// ListFiles handles GET /rooms/{room_id}/files
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("room_id", roomID),
		zap.String("action", "ListFiles"),
	)

	if err := validator.ValidateID("room_id", roomID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	files, err := h.usecase.ListFiles(ctx, roomID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "files listed", zap.Int("count", len(files)))

	response.Success(w, &entity.ListFilesResponse{Files: toFileDetails(files)})
}

// GetFile handles GET /files/{file_id}
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("file_id", fileID),
		zap.String("action", "GetFile"),
	)

	if err := validator.ValidateID("file_id", fileID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	file, err := h.usecase.GetFile(ctx, fileID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toFileDetail(file))
}

// DeleteFile handles DELETE /files/{file_id}
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("file_id", fileID),
		zap.String("action", "DeleteFile"),
	)

	if err := validator.ValidateID("file_id", fileID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if err := h.usecase.DeleteFile(ctx, fileID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// VectorizeFile handles POST /files/{file_id}/vectorize
func (h *Handler) VectorizeFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("file_id", fileID),
		zap.String("action", "VectorizeFile"),
	)

	if err := validator.ValidateID("file_id", fileID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	result, err := h.usecase.RevectorizeFile(ctx, fileID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.VectorizeResponse{FileID: fileID, ChunkCount: result.ChunkCount})
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
	case errors.Is(err, entity.ErrFileNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidFormat):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrInvalidFile), errors.Is(err, entity.ErrInvalidExtension):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrFileTooLarge):
		h.respondError(ctx, w, http.StatusRequestEntityTooLarge, err.Error(), err)
	case errors.Is(err, entity.ErrExtractionFailed):
		h.respondError(ctx, w, http.StatusUnprocessableEntity, "no text could be extracted", err)
	case errors.Is(err, entity.ErrExtractionTimeout):
		h.respondError(ctx, w, http.StatusGatewayTimeout, "text extraction timed out", err)
	case errors.Is(err, entity.ErrConfiguration):
		h.respondError(ctx, w, http.StatusServiceUnavailable, "service is not configured", err)
	case errors.Is(err, entity.ErrStorage), errors.Is(err, entity.ErrEmbeddingMismatch):
		h.respondError(ctx, w, http.StatusBadGateway, "upstream service failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"papyrus/apps/backend/internal/middleware"
	"papyrus/apps/backend/internal/pipeline"
)

type Handler struct {
	service   *Service
	uploadDir string
	maxBytes  int64
}

func NewHandler(service *Service, uploadDir string, maxUploadBytes int64) *Handler {
	return &Handler{service: service, uploadDir: uploadDir, maxBytes: maxUploadBytes}
}

// Upload accepts one PDF via multipart form field "file" and schedules it for
// processing. Responds 202 before the pipeline runs.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "file too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req, err := h.storeFile(file, header)
	if err != nil {
		h.uploadError(ctx, w, err)
		return
	}

	receipt := h.service.Ingest(ctx, *req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": receipt}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// UploadBatch accepts several PDFs via repeated multipart form field "files"
// and schedules them as one batch.
func (h *Handler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "files too large or malformed form", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.writeError(ctx, w, "BAD_REQUEST", "at least one file is required", http.StatusBadRequest)
		return
	}

	requests := make([]pipeline.ProcessRequest, 0, len(headers))
	stored := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.cleanup(ctx, stored)
			h.writeError(ctx, w, "BAD_REQUEST", "unable to read "+header.Filename, http.StatusBadRequest)
			return
		}
		req, err := h.storeFile(file, header)
		file.Close()
		if err != nil {
			h.cleanup(ctx, stored)
			h.uploadError(ctx, w, err)
			return
		}
		requests = append(requests, *req)
		stored = append(stored, req.FilePath)
	}

	receipt := h.service.IngestBatch(ctx, requests)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": receipt,
		"meta": map[string]int{"count": len(receipt.Accepted)},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

var errUnsupportedType = fmt.Errorf("only PDF files are supported")

// storeFile writes one uploaded part to the upload directory under a
// UUID-prefixed name and returns the processing request for it.
func (h *Handler) storeFile(file multipart.File, header *multipart.FileHeader) (*pipeline.ProcessRequest, error) {
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return nil, errUnsupportedType
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	path := filepath.Clean(filepath.Join(h.uploadDir, filename))

	dst, err := os.Create(path) // #nosec G304 -- path is UUID + sanitized basename under the configured upload dir
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &pipeline.ProcessRequest{
		FilePath:     path,
		Filename:     filename,
		OriginalName: header.Filename,
	}, nil
}

func (h *Handler) cleanup(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			slog.WarnContext(ctx, "failed to clean up uploaded file", "error", err, "path", path)
		}
	}
}

func (h *Handler) uploadError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == errUnsupportedType {
		h.writeError(ctx, w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
		return
	}
	slog.ErrorContext(ctx, "failed to store upload", "error", err)
	h.writeError(ctx, w, "INTERNAL_ERROR", "failed to save file", http.StatusInternalServerError)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

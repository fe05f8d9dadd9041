package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/username/clubfolio/src/config"
	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/security/validation"
	"github.com/username/clubfolio/src/services"
	"github.com/username/clubfolio/src/utils"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// HandlePositionsUpload ingests a positions export (current holdings) and
// responds with the rebuilt portfolio snapshot.
func (h *UploadHandler) HandlePositionsUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	file, _, ok := h.extractUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	snapshot, err := h.uploadService.ProcessPositionsUpload(file, userID)
	if err != nil {
		h.sendProcessingError(w, userID, err)
		return
	}

	logger.L.Info("Positions upload processed", "userID", userID, "holdings", len(snapshot.Holdings))
	utils.SendJSON(w, snapshot, http.StatusOK)
}

// HandleTransactionsUpload ingests a transaction history export (CSV or
// JSON) and responds with the rebuilt portfolio snapshot.
func (h *UploadHandler) HandleTransactionsUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	file, filename, ok := h.extractUploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	snapshot, err := h.uploadService.ProcessTransactionsUpload(file, filename, userID)
	if err != nil {
		h.sendProcessingError(w, userID, err)
		return
	}

	logger.L.Info("Transactions upload processed", "userID", userID, "transactions", len(snapshot.Transactions))
	utils.SendJSON(w, snapshot, http.StatusOK)
}

// extractUploadedFile pulls the "file" part out of the multipart form and
// runs both validation passes (client-declared type, then magic bytes). On
// failure it writes the error response and returns ok=false.
func (h *UploadHandler) extractUploadedFile(w http.ResponseWriter, r *http.Request) (file multipart.File, filename string, ok bool) {
	maxSize := config.Cfg.MaxUploadSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error parsing multipart form (limit %dMB): %v", maxSize>>20, err), http.StatusBadRequest)
		return nil, "", false
	}

	uploaded, header, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Error retrieving uploaded file: a 'file' form field is required", http.StatusBadRequest)
		return nil, "", false
	}

	if err := validation.ValidateClientContentType(header.Header.Get("Content-Type")); err != nil {
		uploaded.Close()
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	if _, err := validation.ValidateFileContentByMagicBytes(uploaded); err != nil {
		uploaded.Close()
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	return uploaded, header.Filename, true
}

func (h *UploadHandler) sendProcessingError(w http.ResponseWriter, userID int64, err error) {
	switch {
	case errors.Is(err, services.ErrParsingFailed):
		logger.L.Warn("Upload parsing failed", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse export file: %v", err), http.StatusBadRequest)
	case errors.Is(err, validation.ErrValidationFailed):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error("Upload processing failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to process uploaded file", http.StatusInternalServerError)
	}
}

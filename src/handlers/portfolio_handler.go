package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/security/validation"
	"github.com/username/clubfolio/src/services"
	"github.com/username/clubfolio/src/utils"
)

type PortfolioHandler struct {
	uploadService services.UploadService
}

func NewPortfolioHandler(uploadService services.UploadService) *PortfolioHandler {
	return &PortfolioHandler{uploadService: uploadService}
}

// GetSnapshot returns the member's full aggregated portfolio. Responses carry
// an ETag so the dashboard can poll cheaply with If-None-Match.
func (h *PortfolioHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.uploadService.GetSnapshot(userID)
	if err != nil {
		logger.L.Error("Failed to load portfolio snapshot", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error fetching portfolio for userID %d", userID), http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(snapshot)
	if err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	utils.SendJSON(w, snapshot, http.StatusOK)
}

// GetHoldings returns only the holdings slice of the snapshot.
func (h *PortfolioHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.uploadService.GetSnapshot(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error fetching holdings for userID %d", userID), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, snapshot.Holdings, http.StatusOK)
}

// GetTransactions returns only the transaction history of the snapshot.
func (h *PortfolioHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.uploadService.GetSnapshot(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error fetching transactions for userID %d", userID), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, snapshot.Transactions, http.StatusOK)
}

// ExportTransactionsCSV streams the transaction ledger as a CSV download
// for the club treasurer. Text fields are defused against spreadsheet
// formula injection before writing.
func (h *PortfolioHandler) ExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	snapshot, err := h.uploadService.GetSnapshot(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error fetching transactions for userID %d", userID), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"Date", "Action", "Symbol", "Description", "Quantity", "Price", "Fees", "Amount"})
	for _, tx := range snapshot.Transactions {
		record := []string{
			tx.Date,
			validation.SanitizeForFormulaInjection(tx.Action),
			validation.SanitizeForFormulaInjection(tx.Symbol),
			validation.SanitizeForFormulaInjection(tx.Description),
			strconv.FormatFloat(tx.Quantity, 'f', -1, 64),
			strconv.FormatFloat(tx.Price, 'f', -1, 64),
			strconv.FormatFloat(tx.Fees, 'f', -1, 64),
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			logger.L.Error("Failed to write CSV record", "userID", userID, "error", err)
			return
		}
	}
	writer.Flush()
}

// DeleteAllData wipes the member's ingested portfolio data. The account
// itself is untouched.
func (h *PortfolioHandler) DeleteAllData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.uploadService.ClearUserData(userID); err != nil {
		logger.L.Error("Failed to clear portfolio data", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to delete portfolio data", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Portfolio data cleared", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}

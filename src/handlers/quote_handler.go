package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/username/clubfolio/src/services"
	"github.com/username/clubfolio/src/utils"
)

type QuoteHandler struct {
	quoteService services.QuoteService
}

func NewQuoteHandler(quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// GetQuote returns the live quote for one symbol. An unavailable quote is a
// 200 with status UNAVAILABLE, never an error.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		utils.SendJSONError(w, "Symbol is required", http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, h.quoteService.GetQuote(symbol), http.StatusOK)
}

// GetHistory returns daily candles for a symbol. The optional "days" query
// parameter defaults to 30.
func (h *QuoteHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
	if symbol == "" {
		utils.SendJSONError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 3650 {
			utils.SendJSONError(w, "Invalid 'days' parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	candles := h.quoteService.GetHistory(symbol, days)
	if candles == nil {
		candles = []services.Candle{}
	}
	utils.SendJSON(w, candles, http.StatusOK)
}

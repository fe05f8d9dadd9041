package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/clubfolio/src/services"
)

type stubQuoteService struct {
	lastSymbol string
	lastDays   int
}

func (s *stubQuoteService) GetQuote(symbol string) services.QuoteResult {
	s.lastSymbol = symbol
	return services.QuoteResult{Status: "OK", Symbol: symbol, Price: 150.5}
}

func (s *stubQuoteService) GetHistory(symbol string, days int) []services.Candle {
	s.lastSymbol = symbol
	s.lastDays = days
	return nil
}

func TestGetQuote(t *testing.T) {
	stub := &stubQuoteService{}
	handler := NewQuoteHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/aapl", nil)
	req.SetPathValue("symbol", "aapl")
	rec := httptest.NewRecorder()
	handler.GetQuote(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", stub.lastSymbol, "symbols are upper-cased before lookup")

	var result services.QuoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "OK", result.Status)
	assert.Equal(t, 150.5, result.Price)
}

func TestGetHistoryDefaultsAndValidatesDays(t *testing.T) {
	stub := &stubQuoteService{}
	handler := NewQuoteHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/AAPL/history", nil)
	req.SetPathValue("symbol", "AAPL")
	rec := httptest.NewRecorder()
	handler.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, stub.lastDays)
	assert.JSONEq(t, "[]", rec.Body.String(), "a nil history serializes as an empty array")

	req = httptest.NewRequest(http.MethodGet, "/api/quotes/AAPL/history?days=-1", nil)
	req.SetPathValue("symbol", "AAPL")
	rec = httptest.NewRecorder()
	handler.GetHistory(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/quotes/AAPL/history?days=90", nil)
	req.SetPathValue("symbol", "AAPL")
	rec = httptest.NewRecorder()
	handler.GetHistory(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, stub.lastDays)
}

package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartPayload = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "AAPL", "regularMarketPrice": 150.5, "chartPreviousClose": 148.0},
			"timestamp": [1767139200, 1767225600],
			"indicators": {"quote": [{
				"open": [148.2, 149.0],
				"high": [151.0, 152.0],
				"low": [147.5, 148.5],
				"close": [150.0, 150.5],
				"volume": [1000, 2000]
			}]}
		}],
		"error": null
	}
}`

func TestQuoteServiceGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartPayload)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))

	quote := svc.GetQuote("AAPL")
	assert.Equal(t, "OK", quote.Status)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 150.5, quote.Price)
	assert.Equal(t, 148.0, quote.PreviousClose)
	assert.InDelta(t, 2.5, quote.Change, 1e-9)
	assert.InDelta(t, 1.6891891, quote.ChangePercent, 1e-6)
	assert.Equal(t, 148.2, quote.Open)
}

func TestQuoteServiceGetQuoteCaches(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, chartPayload)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))

	first := svc.GetQuote("AAPL")
	second := svc.GetQuote("AAPL")
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load(), "the second read must come from the cache")
}

func TestQuoteServiceUnavailableOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))

	quote := svc.GetQuote("AAPL")
	assert.Equal(t, "UNAVAILABLE", quote.Status)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 0.0, quote.Price)
}

func TestQuoteServiceUnavailableOnChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": {"code": "Not Found"}}}`)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))
	assert.Equal(t, "UNAVAILABLE", svc.GetQuote("NOPE").Status)
}

func TestQuoteServiceGetHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartPayload)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))

	candles := svc.GetHistory("AAPL", 7)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1767139200), candles[0].Timestamp)
	assert.Equal(t, 150.0, candles[0].Close)
	assert.Equal(t, int64(2000), candles[1].Volume)
}

func TestQuoteServiceGetHistoryUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewQuoteService(server.URL, cache.New(time.Minute, time.Minute))
	assert.Nil(t, svc.GetHistory("AAPL", 7))
}

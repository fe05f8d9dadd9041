package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/clubfolio/src/logger"
	"golang.org/x/net/publicsuffix"
)

const quoteUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// QuoteResult carries the live market data for one symbol. A failed fetch
// yields Status "UNAVAILABLE" with zero values rather than an error; quote
// availability is best-effort and never blocks the portfolio views.
type QuoteResult struct {
	Status        string  `json:"status"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
}

// Candle is one bar of daily price history.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// QuoteService fetches live quotes and daily history for portfolio symbols.
type QuoteService interface {
	GetQuote(symbol string) QuoteResult
	GetHistory(symbol string, days int) []Candle
}

type quoteServiceImpl struct {
	httpClient http.Client
	baseURL    string
	quoteCache *cache.Cache
}

// NewQuoteService creates a quote service against a Yahoo-compatible chart
// API. Responses are cached in the supplied cache instance, constructed once
// per process with the configured TTL and shared by reference.
func NewQuoteService(baseURL string, quoteCache *cache.Cache) QuoteService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &quoteServiceImpl{
		httpClient: http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		baseURL:    baseURL,
		quoteCache: quoteCache,
	}
}

// chartResponse mirrors the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

func (s *quoteServiceImpl) GetQuote(symbol string) QuoteResult {
	cacheKey := "quote_" + symbol
	if cached, found := s.quoteCache.Get(cacheKey); found {
		logger.L.Debug("Quote cache hit", "symbol", symbol)
		return cached.(QuoteResult)
	}

	result := QuoteResult{Status: "UNAVAILABLE", Symbol: symbol}

	data, err := s.fetchChart(symbol, "1d", "1d")
	if err != nil {
		logger.L.Warn("Quote fetch failed", "symbol", symbol, "error", err)
		return result
	}

	meta := data.Chart.Result[0].Meta
	result.Status = "OK"
	result.Price = meta.RegularMarketPrice
	result.PreviousClose = meta.PreviousClose
	if meta.PreviousClose != 0 {
		result.Change = meta.RegularMarketPrice - meta.PreviousClose
		result.ChangePercent = result.Change / meta.PreviousClose * 100
	}

	if quotes := data.Chart.Result[0].Indicators.Quote; len(quotes) > 0 {
		q := quotes[0]
		if len(q.Open) > 0 {
			result.Open = q.Open[0]
		}
		if len(q.High) > 0 {
			result.High = q.High[0]
		}
		if len(q.Low) > 0 {
			result.Low = q.Low[0]
		}
	}

	s.quoteCache.Set(cacheKey, result, cache.DefaultExpiration)
	return result
}

func (s *quoteServiceImpl) GetHistory(symbol string, days int) []Candle {
	if days <= 0 {
		days = 30
	}
	cacheKey := fmt.Sprintf("history_%s_%d", symbol, days)
	if cached, found := s.quoteCache.Get(cacheKey); found {
		logger.L.Debug("History cache hit", "symbol", symbol, "days", days)
		return cached.([]Candle)
	}

	data, err := s.fetchChart(symbol, fmt.Sprintf("%dd", days), "1d")
	if err != nil {
		logger.L.Warn("History fetch failed", "symbol", symbol, "error", err)
		return nil
	}

	chart := data.Chart.Result[0]
	if len(chart.Indicators.Quote) == 0 {
		return nil
	}
	q := chart.Indicators.Quote[0]

	candles := make([]Candle, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(q.Close) {
			break
		}
		candle := Candle{Timestamp: ts, Close: q.Close[i]}
		if i < len(q.Open) {
			candle.Open = q.Open[i]
		}
		if i < len(q.High) {
			candle.High = q.High[i]
		}
		if i < len(q.Low) {
			candle.Low = q.Low[i]
		}
		if i < len(q.Volume) {
			candle.Volume = q.Volume[i]
		}
		candles = append(candles, candle)
	}

	s.quoteCache.Set(cacheKey, candles, cache.DefaultExpiration)
	return candles
}

func (s *quoteServiceImpl) fetchChart(symbol, rng, interval string) (*chartResponse, error) {
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		s.baseURL, url.PathEscape(symbol), rng, interval)
	req, err := http.NewRequest(http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", quoteUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chart API for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d for %s", resp.StatusCode, symbol)
	}

	var data chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}
	if data.Chart.Error != nil || len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned an error or no result for %s", symbol)
	}
	return &data, nil
}

package services

import (
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/models"
	"github.com/username/clubfolio/src/parsers"
	"github.com/username/clubfolio/src/processors"
)

const (
	ckSnapshot = "agg_portfolio_snapshot_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type uploadServiceImpl struct {
	positionsParser    *parsers.PositionsParser
	transactionsParser *parsers.TransactionsParser
	aggregator         *processors.PortfolioAggregator
	store              PortfolioStore
	reportCache        *cache.Cache
}

func NewUploadService(
	positionsParser *parsers.PositionsParser,
	transactionsParser *parsers.TransactionsParser,
	aggregator *processors.PortfolioAggregator,
	store PortfolioStore,
	reportCache *cache.Cache,
) UploadService {
	return &uploadServiceImpl{
		positionsParser:    positionsParser,
		transactionsParser: transactionsParser,
		aggregator:         aggregator,
		store:              store,
		reportCache:        reportCache,
	}
}

// ProcessPositionsUpload replaces the user's holdings with a fresh parse of
// a positions export and recomputes totals. Stored transactions are carried
// through unchanged.
func (s *uploadServiceImpl) ProcessPositionsUpload(fileReader io.Reader, userID int64) (*models.PortfolioSnapshot, error) {
	start := time.Now()
	logger.L.Info("ProcessPositionsUpload START", "userID", userID)

	text, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrParsingFailed, err)
	}

	holdings := s.positionsParser.Parse(string(text))
	logger.L.Info("Positions parsed", "userID", userID, "holdingCount", len(holdings))

	stored, err := s.store.Load(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading stored portfolio: %v", ErrProcessingFailed, err)
	}

	snapshot := s.aggregator.BuildSnapshot(holdings, stored.Transactions)
	if err := s.store.Save(userID, snapshot); err != nil {
		return nil, fmt.Errorf("%w: saving snapshot: %v", ErrProcessingFailed, err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("ProcessPositionsUpload END", "userID", userID, "duration", time.Since(start))
	return s.GetSnapshot(userID)
}

// ProcessTransactionsUpload parses a transactions export (CSV or JSON) and
// appends the new entries to the stored ledger. Holdings and the totals
// derived from them are untouched apart from the recomputed timestamp.
func (s *uploadServiceImpl) ProcessTransactionsUpload(fileReader io.Reader, filename string, userID int64) (*models.PortfolioSnapshot, error) {
	start := time.Now()
	logger.L.Info("ProcessTransactionsUpload START", "userID", userID, "filename", filename)

	text, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrParsingFailed, err)
	}

	transactions := s.transactionsParser.Parse(string(text), filename)
	logger.L.Info("Transactions parsed", "userID", userID, "transactionCount", len(transactions))

	stored, err := s.store.Load(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading stored portfolio: %v", ErrProcessingFailed, err)
	}

	snapshot := s.aggregator.BuildSnapshot(stored.Holdings, transactions)
	if err := s.store.Save(userID, snapshot); err != nil {
		return nil, fmt.Errorf("%w: saving snapshot: %v", ErrProcessingFailed, err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("ProcessTransactionsUpload END", "userID", userID, "duration", time.Since(start))
	return s.GetSnapshot(userID)
}

func (s *uploadServiceImpl) GetSnapshot(userID int64) (*models.PortfolioSnapshot, error) {
	cacheKey := fmt.Sprintf(ckSnapshot, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for portfolio snapshot", "userID", userID)
		return cached.(*models.PortfolioSnapshot), nil
	}

	snapshot, err := s.store.Load(userID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, &snapshot, DefaultCacheExpiration)
	return &snapshot, nil
}

func (s *uploadServiceImpl) ClearUserData(userID int64) error {
	if err := s.store.Clear(userID); err != nil {
		return err
	}
	s.InvalidateUserCache(userID)
	logger.L.Info("Cleared all portfolio data", "userID", userID)
	return nil
}

func (s *uploadServiceImpl) HasData(userID int64) (bool, error) {
	return s.store.Exists(userID)
}

// InvalidateUserCache drops the cached snapshot so the next read rebuilds
// from the database.
func (s *uploadServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckSnapshot, userID))
}

package services

import (
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/clubfolio/src/models"
	"github.com/username/clubfolio/src/parsers"
	"github.com/username/clubfolio/src/processors"
)

const uploadPositionsCSV = `"Symbol","Description","Quantity","Price","Market Value","Cost Basis"
"AAPL","APPLE INC","10","150.00","$1,500.00","$1,000.00"
`

const uploadTransactionsCSV = `"Date","Action","Symbol","Quantity","Price","Amount"
"01/15/2026","Buy","AAPL","10","150.00","($1,500.00)"
`

func newTestUploadService(t *testing.T) UploadService {
	t.Helper()
	return NewUploadService(
		parsers.NewPositionsParser(),
		parsers.NewTransactionsParser(),
		processors.NewPortfolioAggregator(func() time.Time {
			return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		}),
		newTestStore(t),
		cache.New(time.Minute, time.Minute),
	)
}

func TestUploadServicePositionsThenTransactions(t *testing.T) {
	svc := newTestUploadService(t)
	userID := int64(1)

	snapshot, err := svc.ProcessPositionsUpload(strings.NewReader(uploadPositionsCSV), userID)
	require.NoError(t, err)
	require.Len(t, snapshot.Holdings, 1)
	assert.Equal(t, 1500.0, snapshot.TotalValue)
	assert.Equal(t, 1000.0, snapshot.TotalCost)
	assert.Empty(t, snapshot.Transactions)

	snapshot, err = svc.ProcessTransactionsUpload(strings.NewReader(uploadTransactionsCSV), "transactions.csv", userID)
	require.NoError(t, err)
	require.Len(t, snapshot.Transactions, 1)
	assert.Equal(t, models.ActionBuy, snapshot.Transactions[0].Action)

	// The holdings from the earlier upload survive a transactions upload.
	require.Len(t, snapshot.Holdings, 1)
	assert.Equal(t, "AAPL", snapshot.Holdings[0].Symbol)
	assert.Equal(t, 1500.0, snapshot.TotalValue)
}

func TestUploadServiceTransactionsFirst(t *testing.T) {
	svc := newTestUploadService(t)
	userID := int64(7)

	snapshot, err := svc.ProcessTransactionsUpload(strings.NewReader(uploadTransactionsCSV), "transactions.csv", userID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Holdings)
	require.Len(t, snapshot.Transactions, 1)
	assert.Equal(t, 0.0, snapshot.TotalValue, "no holdings means zero totals")
}

func TestUploadServiceGetSnapshotCaches(t *testing.T) {
	svc := newTestUploadService(t)
	userID := int64(1)

	_, err := svc.ProcessPositionsUpload(strings.NewReader(uploadPositionsCSV), userID)
	require.NoError(t, err)

	first, err := svc.GetSnapshot(userID)
	require.NoError(t, err)
	second, err := svc.GetSnapshot(userID)
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated reads hit the cache")
}

func TestUploadServiceClearUserData(t *testing.T) {
	svc := newTestUploadService(t)
	userID := int64(1)

	_, err := svc.ProcessPositionsUpload(strings.NewReader(uploadPositionsCSV), userID)
	require.NoError(t, err)

	hasData, err := svc.HasData(userID)
	require.NoError(t, err)
	assert.True(t, hasData)

	require.NoError(t, svc.ClearUserData(userID))

	hasData, err = svc.HasData(userID)
	require.NoError(t, err)
	assert.False(t, hasData)

	snapshot, err := svc.GetSnapshot(userID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Holdings)
}

func TestUploadServiceGarbagePositionsYieldsEmptySnapshot(t *testing.T) {
	svc := newTestUploadService(t)

	snapshot, err := svc.ProcessPositionsUpload(strings.NewReader("complete nonsense\nwithout any header\n"), 1)
	require.NoError(t, err, "tolerant parsing never errors on content")
	assert.Empty(t, snapshot.Holdings)
}

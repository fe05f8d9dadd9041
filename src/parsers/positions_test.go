package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positionsExport = `Positions for account ...123 as of 08/30/2026

"Symbol","Description","Quantity","Price","Market Value","Cost Basis"
"AAPL","APPLE INC","10","150.00","$1,500.00","$1,000.00"
"MSFT","MICROSOFT CORP","5","400.00","$2,000.00","$1,600.00"
"Cash","CASH & MONEY MARKET","","","$250.00",""
"--","PENDING ACTIVITY","","","$10.00",""
"Account Total","","","","$3,760.00",""
""Disclaimer: values are delayed"
`

func TestPositionsParserParse(t *testing.T) {
	parser := NewPositionsParser()
	holdings := parser.Parse(positionsExport)

	require.Len(t, holdings, 2, "cash, placeholder, total and footer rows must be excluded")

	aapl := holdings[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, "APPLE INC", aapl.Name)
	assert.Equal(t, 10.0, aapl.Quantity)
	assert.Equal(t, 150.0, aapl.CurrentPrice)
	assert.Equal(t, 1500.0, aapl.MarketValue)
	assert.Equal(t, 100.0, aapl.CostPerShare, "derived from cost basis / quantity")
	assert.Equal(t, 500.0, aapl.GainLoss, "derived from market value - cost basis")
	assert.Equal(t, 50.0, aapl.GainLossPercent)

	msft := holdings[1]
	assert.Equal(t, "MSFT", msft.Symbol)
	assert.Equal(t, 320.0, msft.CostPerShare)
	assert.Equal(t, 400.0, msft.GainLoss)
	assert.InDelta(t, 25.0, msft.GainLossPercent, 1e-9)
}

func TestPositionsParserSourceValuesWin(t *testing.T) {
	export := `"Symbol","Quantity","Price","Market Value","Cost/Share","Gain/Loss $","Gain/Loss %"
"VTI","2","100.00","$999.00","50.00","(100.00)","(9.5%)"
`
	holdings := NewPositionsParser().Parse(export)
	require.Len(t, holdings, 1)

	// Values present in the export are preserved even when a derivation
	// would disagree.
	assert.Equal(t, 999.0, holdings[0].MarketValue)
	assert.Equal(t, 50.0, holdings[0].CostPerShare)
	assert.Equal(t, -100.0, holdings[0].GainLoss)
	assert.Equal(t, -9.5, holdings[0].GainLossPercent)
}

func TestPositionsParserHeaderOnFirstLine(t *testing.T) {
	export := "Symbol,Shares,Price\nVOO,3,500.00\n"
	holdings := NewPositionsParser().Parse(export)

	require.Len(t, holdings, 1)
	assert.Equal(t, "VOO", holdings[0].Symbol)
	assert.Equal(t, 3.0, holdings[0].Quantity)
	assert.Equal(t, 1500.0, holdings[0].MarketValue, "derived from quantity * price")
}

func TestPositionsParserSkipsZeroAndNegativeQuantity(t *testing.T) {
	export := `"Symbol","Quantity","Price"
"AAPL","0","150.00"
"MSFT","-5","400.00"
"GOOG","junk","100.00"
"NVDA","1","100.00"
`
	holdings := NewPositionsParser().Parse(export)
	require.Len(t, holdings, 1)
	assert.Equal(t, "NVDA", holdings[0].Symbol)
}

func TestPositionsParserIdempotent(t *testing.T) {
	parser := NewPositionsParser()
	first := parser.Parse(positionsExport)
	second := parser.Parse(positionsExport)
	assert.Equal(t, first, second)
}

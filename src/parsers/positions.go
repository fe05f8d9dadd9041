package parsers

import (
	"strings"

	"github.com/username/clubfolio/src/models"
)

// PositionsParser converts a positions export (full file text) into
// normalized Holding records. Parsing is tolerant by design: malformed rows
// are excluded by the quantity guard combined with numeric fallback-to-zero,
// never reported as errors.
type PositionsParser struct{}

func NewPositionsParser() *PositionsParser {
	return &PositionsParser{}
}

// Parse returns one Holding per includable data row. Rows are excluded when
// blank, footer artifacts (leading empty quoted marker), summary rows
// containing "total", cash rows (symbol empty, "cash" or the "--"
// placeholder), or positions with zero quantity.
func (p *PositionsParser) Parse(text string) []models.Holding {
	lines := SplitLines(text)
	headerIdx := locateHeader(lines, positionsSignal)
	cols := mapPositionColumns(normalizeHeader(lines[headerIdx]))

	var holdings []models.Holding
	for _, line := range lines[headerIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, `""`) {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), "total") {
			continue
		}

		row := SplitLine(line)

		symbol := strings.ToUpper(strings.TrimSpace(field(row, cols.symbol)))
		if symbol == "" || strings.EqualFold(symbol, "cash") || symbol == models.SymbolPlaceholder {
			continue
		}

		quantity := ParseNumber(field(row, cols.quantity))
		if quantity <= 0 {
			continue
		}
		price := ParseNumber(field(row, cols.price))

		// Source values win; derivation only fills in absent or zero fields.
		marketValue := ParseNumber(field(row, cols.marketValue))
		if marketValue == 0 {
			marketValue = quantity * price
		}

		costBasis := ParseNumber(field(row, cols.costBasis))
		costPerShare := ParseNumber(field(row, cols.costPerShare))
		if costPerShare == 0 && quantity > 0 {
			costPerShare = costBasis / quantity
		}

		gainLoss := ParseNumber(field(row, cols.gainLoss))
		if gainLoss == 0 {
			gainLoss = marketValue - costBasis
		}

		gainLossPercent := ParseNumber(field(row, cols.gainLossPercent))
		if gainLossPercent == 0 && costBasis > 0 {
			gainLossPercent = gainLoss / costBasis * 100
		}

		holdings = append(holdings, models.Holding{
			Symbol:          symbol,
			Name:            field(row, cols.name),
			Quantity:        quantity,
			CostPerShare:    costPerShare,
			CurrentPrice:    price,
			MarketValue:     marketValue,
			GainLoss:        gainLoss,
			GainLossPercent: gainLossPercent,
		})
	}

	return holdings
}

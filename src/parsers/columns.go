package parsers

import "strings"

// colAbsent marks a semantic field with no matching header column. Reads
// against an absent column yield "", which triggers the numeric fallback and
// derivation logic downstream.
const colAbsent = -1

// headerSignal describes what a header row must contain to be recognized:
// every substring in all, plus at least one substring in any (when any is
// non-empty). Matching is case-insensitive.
type headerSignal struct {
	all []string
	any []string
}

var (
	positionsSignal    = headerSignal{all: []string{"symbol"}, any: []string{"quantity", "shares"}}
	transactionsSignal = headerSignal{all: []string{"date", "action"}}
)

// locateHeader scans lines from the top and returns the index of the first
// line satisfying the signal. Exports without metadata rows put the header on
// the first line, so no match falls back to index 0 rather than failing.
func locateHeader(lines []string, sig headerSignal) int {
	for i, line := range lines {
		lower := strings.ToLower(line)
		ok := true
		for _, s := range sig.all {
			if !strings.Contains(lower, s) {
				ok = false
				break
			}
		}
		if ok && len(sig.any) > 0 {
			ok = false
			for _, s := range sig.any {
				if strings.Contains(lower, s) {
					ok = true
					break
				}
			}
		}
		if ok {
			return i
		}
	}
	return 0
}

// normalizeHeader tokenizes a header line and lower-cases each cell for
// substring matching.
func normalizeHeader(line string) []string {
	cells := SplitLine(line)
	for i, c := range cells {
		cells[i] = strings.ToLower(c)
	}
	return cells
}

// resolveColumn returns the index of the first header cell containing any of
// the candidate substrings. Candidates are checked in order and the first
// match wins; there is no longest-match tie-breaking. Returns colAbsent when
// nothing matches.
func resolveColumn(header []string, candidates ...string) int {
	for _, cand := range candidates {
		for i, cell := range header {
			if strings.Contains(cell, cand) {
				return i
			}
		}
	}
	return colAbsent
}

// field reads column idx from a tokenized row, returning "" for absent
// columns and short rows.
func field(row []string, idx int) string {
	if idx == colAbsent || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// positionColumns maps the semantic fields of a positions export to column
// indices. Absent fields read as empty and are derived instead.
type positionColumns struct {
	symbol          int
	name            int
	quantity        int
	price           int
	marketValue     int
	costBasis       int
	costPerShare    int
	gainLoss        int
	gainLossPercent int
}

func mapPositionColumns(header []string) positionColumns {
	return positionColumns{
		symbol:          resolveColumn(header, "symbol", "ticker"),
		name:            resolveColumn(header, "description", "name", "security"),
		quantity:        resolveColumn(header, "quantity", "shares", "qty"),
		price:           resolveColumn(header, "price"),
		marketValue:     resolveColumn(header, "market value", "mkt val", "value"),
		costBasis:       resolveColumn(header, "cost basis", "cost bas"),
		costPerShare:    resolveColumn(header, "cost/share", "cost per share", "avg cost"),
		gainLoss:        resolveColumn(header, "gain/loss $", "gain $", "gain/loss"),
		gainLossPercent: resolveColumn(header, "gain/loss %", "gain %"),
	}
}

// transactionColumns maps the semantic fields of a transactions export.
type transactionColumns struct {
	date        int
	action      int
	symbol      int
	description int
	quantity    int
	price       int
	fees        int
	amount      int
}

func mapTransactionColumns(header []string) transactionColumns {
	return transactionColumns{
		date:        resolveColumn(header, "date"),
		action:      resolveColumn(header, "action", "type"),
		symbol:      resolveColumn(header, "symbol", "ticker"),
		description: resolveColumn(header, "description"),
		quantity:    resolveColumn(header, "quantity", "shares"),
		price:       resolveColumn(header, "price"),
		fees:        resolveColumn(header, "fees", "commission"),
		amount:      resolveColumn(header, "amount"),
	}
}

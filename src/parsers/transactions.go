package parsers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/models"
)

// actionRule maps a free-text keyword to a canonical action. Rules are
// evaluated in order against the lower-cased source label; the first hit
// wins and unmatched text classifies as OTHER.
type actionRule struct {
	keyword string
	action  string
}

var actionRules = []actionRule{
	{"buy", models.ActionBuy},
	{"sell", models.ActionSell},
	{"dividend", models.ActionDividend},
	{"div", models.ActionDividend},
	{"deposit", models.ActionDeposit},
	{"transfer in", models.ActionDeposit},
	{"withdraw", models.ActionWithdrawal},
	{"transfer out", models.ActionWithdrawal},
}

// ClassifyAction maps a source action/type label into the closed action
// taxonomy.
func ClassifyAction(raw string) string {
	lower := strings.ToLower(raw)
	for _, rule := range actionRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.action
		}
	}
	return models.ActionOther
}

// TransactionsParser converts a transactions export into normalized
// Transaction records. Both the CSV export and the JSON export shape are
// handled; the format is auto-detected from the content with the filename
// as a secondary hint.
type TransactionsParser struct{}

func NewTransactionsParser() *TransactionsParser {
	return &TransactionsParser{}
}

func (p *TransactionsParser) Parse(text, filename string) []models.Transaction {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") ||
		strings.HasSuffix(strings.ToLower(filename), ".json") {
		return p.parseJSON(trimmed)
	}
	return p.parseCSV(text)
}

func (p *TransactionsParser) parseCSV(text string) []models.Transaction {
	lines := SplitLines(text)
	headerIdx := locateHeader(lines, transactionsSignal)
	cols := mapTransactionColumns(normalizeHeader(lines[headerIdx]))

	var txs []models.Transaction
	for _, line := range lines[headerIdx+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, `""`) {
			continue
		}

		row := SplitLine(line)

		// A row without a date is the one hard exclusion on this path.
		rawDate := strings.TrimSpace(field(row, cols.date))
		if rawDate == "" {
			continue
		}

		txs = append(txs, models.Transaction{
			Date:        NormalizeDate(rawDate),
			Action:      ClassifyAction(field(row, cols.action)),
			Symbol:      symbolOrPlaceholder(field(row, cols.symbol)),
			Description: field(row, cols.description),
			Quantity:    math.Abs(ParseNumber(field(row, cols.quantity))),
			Price:       math.Abs(ParseNumber(field(row, cols.price))),
			Fees:        math.Abs(ParseNumber(field(row, cols.fees))),
			Amount:      ParseNumber(field(row, cols.amount)),
		})
	}
	return txs
}

// Key-name alternatives for the raw JSON transaction objects. Exports are
// not consistent about casing or spacing, so each field is read through a
// candidate list.
var (
	jsonDateKeys        = []string{"Date", "date", "TransactionDate"}
	jsonActionKeys      = []string{"Action", "action", "Type", "type"}
	jsonSymbolKeys      = []string{"Symbol", "symbol", "Ticker"}
	jsonDescriptionKeys = []string{"Description", "description"}
	jsonQuantityKeys    = []string{"Quantity", "quantity", "Shares"}
	jsonPriceKeys       = []string{"Price", "price"}
	jsonFeesKeys        = []string{"Fees & Comm", "Fees", "fees", "Commission"}
	jsonAmountKeys      = []string{"Amount", "amount"}
)

func (p *TransactionsParser) parseJSON(text string) []models.Transaction {
	var objects []map[string]any

	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &objects); err != nil {
			warnMalformedJSON(err)
			return nil
		}
	} else {
		var doc struct {
			BrokerageTransactions []map[string]any `json:"BrokerageTransactions"`
			Transactions          []map[string]any `json:"Transactions"`
		}
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			warnMalformedJSON(err)
			return nil
		}
		objects = doc.BrokerageTransactions
		if objects == nil {
			objects = doc.Transactions
		}
	}

	var txs []models.Transaction
	for _, obj := range objects {
		rawDate := jsonField(obj, jsonDateKeys)
		rawAction := jsonField(obj, jsonActionKeys)

		action := ClassifyAction(rawAction)
		// The JSON export labels dividend reinvestments without any of the
		// CSV keywords.
		if action == models.ActionOther && strings.Contains(strings.ToLower(rawAction), "reinvest") {
			action = models.ActionDividend
		}

		txs = append(txs, models.Transaction{
			Date:        NormalizeDate(rawDate),
			Action:      action,
			Symbol:      symbolOrPlaceholder(jsonField(obj, jsonSymbolKeys)),
			Description: jsonField(obj, jsonDescriptionKeys),
			Quantity:    math.Abs(ParseNumber(jsonField(obj, jsonQuantityKeys))),
			Price:       math.Abs(ParseNumber(jsonField(obj, jsonPriceKeys))),
			Fees:        math.Abs(ParseNumber(jsonField(obj, jsonFeesKeys))),
			Amount:      ParseNumber(jsonField(obj, jsonAmountKeys)),
		})
	}
	return txs
}

// jsonField reads the first present key from a raw transaction object,
// converting numeric values to their string form so everything funnels
// through ParseNumber.
func jsonField(obj map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch value := v.(type) {
		case string:
			return value
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}

// warnMalformedJSON reports a structurally invalid JSON upload. The parse
// result is an empty record set rather than an error, per the tolerant
// contract of this package.
func warnMalformedJSON(err error) {
	if logger.L != nil {
		logger.L.Warn("Transactions JSON is malformed, returning no records", "error", err)
	}
}

func symbolOrPlaceholder(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return models.SymbolPlaceholder
	}
	return symbol
}

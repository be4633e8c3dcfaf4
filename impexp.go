package tradetax

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// this file contains the ingestion of broker order exports.
//
// Stock and crypto exports are CSV files with the header
//
//	symbol,date,order_type,side,fees,quantity,average_price
//
// option exports are CSV files with the header
//
//	chain_symbol,expiration_date,strike_price,option_type,side,order_created_at,direction,order_quantity,order_type,opening_strategy,closing_strategy,price,processed_quantity
//
// Columns are located by name, their order does not matter and extra columns
// are ignored.

// DefaultOrdersPath selects the orders of a raw JSON order dump.
const DefaultOrdersPath = "$.results[*]"

var tradeColumns = []string{"symbol", "date", "side", "quantity", "average_price"}

var optionColumns = []string{"chain_symbol", "side", "order_created_at", "price"}

// row gives access to a CSV record by column name.
type row struct {
	line   int
	index  map[string]int
	record []string
}

func (r row) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// float parses a numeric column, empty optional columns are zero.
func (r row) float(col string, required bool) (float64, error) {
	s := r.str(col)
	if s == "" {
		if required {
			return 0, fmt.Errorf("line %d: missing %s", r.line, col)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s: %w", r.line, col, err)
	}
	return v, nil
}

func (r row) time(col string, required bool) (time.Time, error) {
	s := r.str(col)
	if s == "" {
		if required {
			return time.Time{}, fmt.Errorf("line %d: missing %s", r.line, col)
		}
		return time.Time{}, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: invalid %s: %w", r.line, col, err)
	}
	return t, nil
}

func (r row) side() (Side, error) {
	s, err := ParseSide(r.str("side"))
	if err != nil {
		return "", fmt.Errorf("line %d: %w", r.line, err)
	}
	return s, nil
}

// parseTime accepts RFC 3339 timestamps, with or without fractional
// seconds, and plain dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// readRows reads a CSV stream and calls fn for every record.
func readRows(r io.Reader, required []string, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(row{line: line, index: index, record: record}); err != nil {
			return err
		}
	}
}

// ImportTrades reads stock or crypto fills from a CSV export and groups them
// by normalized symbol.
func ImportTrades(r io.Reader) (Trades, error) {
	trades := make(Trades)
	err := readRows(r, tradeColumns, func(rw row) error {
		t, err := tradeFromRow(rw)
		if err != nil {
			return err
		}
		trades.Add(t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot import trades: %w", err)
	}
	return trades, nil
}

func tradeFromRow(rw row) (Trade, error) {
	var errs error
	t := Trade{
		Symbol:    NormalizeSymbol(rw.str("symbol")),
		OrderType: rw.str("order_type"),
	}
	if t.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("line %d: missing symbol", rw.line))
	}
	var err error
	if t.Date, err = rw.time("date", true); err != nil {
		errs = errors.Join(errs, err)
	}
	if t.Side, err = rw.side(); err != nil {
		errs = errors.Join(errs, err)
	}
	if t.Quantity, err = rw.float("quantity", true); err != nil {
		errs = errors.Join(errs, err)
	}
	if t.AveragePrice, err = rw.float("average_price", true); err != nil {
		errs = errors.Join(errs, err)
	}
	if t.Fees, err = rw.float("fees", false); err != nil {
		errs = errors.Join(errs, err)
	}
	if t.Fees < 0 {
		errs = errors.Join(errs, fmt.Errorf("line %d: negative fees %v", rw.line, t.Fees))
	}
	return t, errs
}

// ImportOptionTrades reads option fills from a CSV export and groups them by
// normalized chain symbol.
func ImportOptionTrades(r io.Reader) (OptionTrades, error) {
	trades := make(OptionTrades)
	err := readRows(r, optionColumns, func(rw row) error {
		var errs, err error
		o := OptionTrade{
			ChainSymbol:     NormalizeSymbol(rw.str("chain_symbol")),
			OptionType:      strings.ToLower(rw.str("option_type")),
			Direction:       strings.ToLower(rw.str("direction")),
			OrderType:       rw.str("order_type"),
			OpeningStrategy: rw.str("opening_strategy"),
			ClosingStrategy: rw.str("closing_strategy"),
		}
		if o.ChainSymbol == "" {
			errs = errors.Join(errs, fmt.Errorf("line %d: missing chain_symbol", rw.line))
		}
		if o.Side, err = rw.side(); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.CreatedAt, err = rw.time("order_created_at", true); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.ExpirationDate, err = rw.time("expiration_date", false); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.StrikePrice, err = rw.float("strike_price", false); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.OrderQuantity, err = rw.float("order_quantity", false); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.Price, err = rw.float("price", true); err != nil {
			errs = errors.Join(errs, err)
		}
		if o.ProcessedQuantity, err = rw.float("processed_quantity", false); err != nil {
			errs = errors.Join(errs, err)
		}
		if errs != nil {
			return errs
		}
		trades.Add(o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot import option trades: %w", err)
	}
	return trades, nil
}

// ImportTradesJSON reads stock or crypto fills from a raw JSON order dump.
//
// path is a JSONPath expression selecting the order objects, it defaults to
// DefaultOrdersPath. Order objects use the same property names as the CSV
// columns; numbers may be encoded as JSON numbers or strings.
func ImportTradesJSON(r io.Reader, path string) (Trades, error) {
	if path == "" {
		path = DefaultOrdersPath
	}
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode order dump: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select orders with %q: %w", path, err)
	}
	// jsonpath returns a single value for non wildcard expressions.
	orders, ok := selected.([]any)
	if !ok {
		orders = []any{selected}
	}

	trades := make(Trades)
	for i, o := range orders {
		obj, ok := o.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("order #%d: not an object: %T", i, o)
		}
		rw := row{line: i + 1, index: make(map[string]int, len(obj))}
		for k, v := range obj {
			rw.index[k] = len(rw.record)
			rw.record = append(rw.record, jsonString(v))
		}
		t, err := tradeFromRow(rw)
		if err != nil {
			return nil, fmt.Errorf("cannot import order #%d: %w", i, err)
		}
		trades.Add(t)
	}
	return trades, nil
}

// jsonString renders a decoded JSON scalar the way it would appear in CSV.
func jsonString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

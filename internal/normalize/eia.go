package normalize

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/gas-market-data/internal/model"
)

// Date layouts seen in EIA series periods.
const (
	eiaCompactDate = "20060102"
	eiaISODate     = "2006-01-02"
)

var (
	periodKeys = []string{"period", "date", "time"}
	valueKeys  = []string{"value", "price"}
)

// PriceSeries normalizes an EIA v2 series response.
// Dates are interpreted as UTC midnight.
type PriceSeries struct {
	Source string // e.g. "EIA:NG.RNGWHHD.D"
}

// Validate reports whether raw is JSON.
func (p PriceSeries) Validate(raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("eia: body is not valid JSON")
	}
	return nil
}

// Normalize implements Normalizer.
func (p PriceSeries) Normalize(raw []byte) (Batch, error) {
	rows, err := eiaRows(raw)
	if err != nil {
		return Batch{}, err
	}

	var b Batch
	for _, row := range rows {
		period, ok := firstField(row, periodKeys)
		if !ok {
			b.Dropped++
			continue
		}
		value, ok := firstField(row, valueKeys)
		if !ok {
			b.Dropped++
			continue
		}

		ts, err := ParsePriceDate(period)
		if err != nil {
			b.Dropped++
			continue
		}
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			b.Dropped++
			continue
		}

		b.Prices = append(b.Prices, model.PricePoint{
			TimestampMs: ts,
			Price:       price,
			Source:      p.Source,
		})
	}

	slices.SortStableFunc(b.Prices, func(a, c model.PricePoint) int {
		return cmp.Compare(a.TimestampMs, c.TimestampMs)
	})
	return b, nil
}

// ParsePriceDate parses YYYYMMDD or YYYY-MM-DD as UTC midnight in ms.
func ParsePriceDate(s string) (int64, error) {
	s = strings.TrimSpace(s)
	layout := eiaCompactDate
	if strings.Contains(s, "-") {
		layout = eiaISODate
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse price date %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// eiaRows extracts the data array from response.data or data.
func eiaRows(raw []byte) ([]map[string]any, error) {
	var envelope struct {
		Response *struct {
			Data json.RawMessage `json:"data"`
		} `json:"response"`
		Data json.RawMessage `json:"data"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("eia: %w: %v", ErrUnexpectedShape, err)
	}

	data := envelope.Data
	if envelope.Response != nil && isArray(envelope.Response.Data) {
		data = envelope.Response.Data
	}
	if !isArray(data) {
		return nil, fmt.Errorf("eia: %w: no data array", ErrUnexpectedShape)
	}

	var rows []any
	dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("eia: %w: %v", ErrUnexpectedShape, err)
	}

	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		} else {
			// Keep the slot so the caller counts it as dropped.
			out = append(out, map[string]any{})
		}
	}
	return out, nil
}

// firstField returns the first non-empty scalar among keys as a string.
func firstField(row map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		switch v := row[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

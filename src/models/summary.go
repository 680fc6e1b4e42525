package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CategorySummary is one category's rollup inside a month: the category
// total and the per-subcategory sums it is composed of.
type CategorySummary struct {
	Total         float64            `json:"total"`
	Subcategories map[string]float64 `json:"subcategories"`
}

// MonthSummary is one month's rollup: the month total and its categories.
type MonthSummary struct {
	Total      float64                    `json:"total"`
	Categories map[string]CategorySummary `json:"categories"`
}

// ExpenseSummary maps month keys ("YYYY-MM") to monthly rollups. Month
// insertion order is significant (the dashboard renders months in reverse
// insertion order), so the summary keeps its own key order and marshals to
// a JSON object with that order preserved. encoding/json map handling would
// sort keys on encode and lose order on decode, hence the custom codec.
type ExpenseSummary struct {
	months  []string
	byMonth map[string]MonthSummary
}

// NewExpenseSummary returns an empty summary ready for Set calls.
func NewExpenseSummary() *ExpenseSummary {
	return &ExpenseSummary{byMonth: make(map[string]MonthSummary)}
}

// Set inserts or replaces a month. First insertion fixes the month's
// position in the key order.
func (s *ExpenseSummary) Set(month string, ms MonthSummary) {
	if s.byMonth == nil {
		s.byMonth = make(map[string]MonthSummary)
	}
	if _, exists := s.byMonth[month]; !exists {
		s.months = append(s.months, month)
	}
	s.byMonth[month] = ms
}

// Get returns the rollup for a month key.
func (s *ExpenseSummary) Get(month string) (MonthSummary, bool) {
	ms, ok := s.byMonth[month]
	return ms, ok
}

// Months returns the month keys in insertion order.
func (s *ExpenseSummary) Months() []string {
	out := make([]string, len(s.months))
	copy(out, s.months)
	return out
}

// Len returns the number of months in the summary.
func (s *ExpenseSummary) Len() int { return len(s.months) }

// MarshalJSON emits a JSON object whose keys follow insertion order.
func (s *ExpenseSummary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, month := range s.months {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(month)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.byMonth[month])
		if err != nil {
			return nil, fmt.Errorf("marshal month %s: %w", month, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
func (s *ExpenseSummary) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expense summary: expected JSON object, got %v", tok)
	}

	s.months = nil
	s.byMonth = make(map[string]MonthSummary)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		month, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expense summary: non-string key %v", keyTok)
		}
		var ms MonthSummary
		if err := dec.Decode(&ms); err != nil {
			return fmt.Errorf("expense summary: month %s: %w", month, err)
		}
		s.Set(month, ms)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

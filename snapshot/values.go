package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Confidence labels used by annotators instead of numbers.
const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.6
	ConfidenceLow    = 0.3

	// DefaultConfidence is used when annotator did not say anything.
	DefaultConfidence = ConfidenceMedium
)

var confidenceLabels = map[string]float64{
	"high":   ConfidenceHigh,
	"medium": ConfidenceMedium,
	"low":    ConfidenceLow,
}

var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
	"sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
	"ינואר": 1, "פברואר": 2, "מרץ": 3, "מרס": 3, "אפריל": 4, "מאי": 5, "יוני": 6,
	"יולי": 7, "אוגוסט": 8, "ספטמבר": 9, "אוקטובר": 10, "נובמבר": 11, "דצמבר": 12,
}

// scalar decodes raw JSON value into either a number or a string. ok is false
// for absent or null values.
func scalar(raw json.RawMessage) (num *float64, str string, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, "", false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, "", false, err
	}
	switch t := v.(type) {
	case float64:
		return &t, "", true, nil
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return &f, "", true, nil
		}
		return nil, s, true, nil
	default:
		return nil, "", false, fmt.Errorf("unexpected value %s", string(raw))
	}
}

func isUnknown(s string) bool {
	switch strings.ToLower(s) {
	case "", "unknown", "none", "null", "n/a":
		return true
	}
	return false
}

// parseYear returns nil for absent or unknown year.
func parseYear(raw json.RawMessage) (*int, error) {
	num, str, ok, err := scalar(raw)
	if err != nil {
		return nil, fmt.Errorf("bad year: %w", err)
	}
	if !ok {
		return nil, nil
	}
	if num == nil {
		if isUnknown(str) {
			return nil, nil
		}
		return nil, fmt.Errorf("bad year %q", str)
	}
	if *num != math.Trunc(*num) || *num <= 0 {
		return nil, fmt.Errorf("bad year %v", *num)
	}
	y := int(*num)
	return &y, nil
}

// parseMonth accepts month number or month name. Names which cannot be mapped
// to a civil month (for example months of Hebrew calendar) are treated as
// unknown month.
func parseMonth(raw json.RawMessage) (*int, error) {
	num, str, ok, err := scalar(raw)
	if err != nil {
		return nil, fmt.Errorf("bad month: %w", err)
	}
	if !ok {
		return nil, nil
	}
	if num == nil {
		if m, found := monthNames[strings.ToLower(str)]; found {
			return &m, nil
		}
		return nil, nil
	}
	if *num != math.Trunc(*num) || *num < 1 || *num > 12 {
		return nil, fmt.Errorf("bad month %v", *num)
	}
	m := int(*num)
	return &m, nil
}

// parseConfidence accepts number in [0,1] or one of "high", "medium", "low".
func parseConfidence(raw json.RawMessage) (float64, error) {
	num, str, ok, err := scalar(raw)
	if err != nil {
		return 0, fmt.Errorf("bad confidence: %w", err)
	}
	if !ok {
		return DefaultConfidence, nil
	}
	if num == nil {
		if c, found := confidenceLabels[strings.ToLower(str)]; found {
			return c, nil
		}
		return 0, fmt.Errorf("bad confidence %q", str)
	}
	if *num < 0 || *num > 1 || math.IsNaN(*num) {
		return 0, fmt.Errorf("confidence %v out of [0,1]", *num)
	}
	return *num, nil
}

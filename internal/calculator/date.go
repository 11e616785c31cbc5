package calculator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FiscalDateLayout is the provider's period key format.
const FiscalDateLayout = "2006-01-02"

// ParseFiscalDate parses a YYYY-MM-DD period key.
func ParseFiscalDate(s string) (time.Time, error) {
	t, err := time.Parse(FiscalDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse fiscal date %q: %w", s, err)
	}
	return t, nil
}

// SortDatesDesc parses fiscal date keys and returns them in canonical
// FiscalDateLayout form, newest first.
func SortDatesDesc(dates []string) ([]string, error) {
	parsed := make([]time.Time, len(dates))
	for i, s := range dates {
		d, err := ParseFiscalDate(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = d
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].After(parsed[j]) })

	sorted := make([]string, len(parsed))
	for i, d := range parsed {
		sorted[i] = d.Format(FiscalDateLayout)
	}
	return sorted, nil
}

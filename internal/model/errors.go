package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = errors.New("metric not implemented")
	ErrUnavailable    = errors.New("value unavailable from provider")
	ErrFieldMissing   = errors.New("field missing")
	ErrRateLimited    = errors.New("provider rate limit reached")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrEmptyTicker    = errors.New("empty ticker")
)

// FetchError reports that the source could not deliver a statement.
type FetchError struct {
	Ticker     string
	Kind       StatementKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s %s: status %d: %v", e.Ticker, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Ticker, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a missing or non-numeric provider field.
type ParseError struct {
	Ticker string
	Kind   StatementKind
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %s field %s (%q): %v", e.Ticker, e.Kind, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// KeyMismatchError reports that two series expected to share keys do not.
type KeyMismatchError struct {
	Ticker string
	Metric string
	Key    string
}

func (e *KeyMismatchError) Error() string {
	return fmt.Sprintf("%s %s: key %s missing from paired series", e.Ticker, e.Metric, e.Key)
}

// DivisionError reports a zero ratio denominator.
type DivisionError struct {
	Ticker string
	Metric string
	Key    string
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("%s %s: division by zero at %s", e.Ticker, e.Metric, e.Key)
}

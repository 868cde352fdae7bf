package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a transaction does not exist in the store
var ErrNotFound = errors.New("transaction not found")

// ConfigurationError reports a missing or invalid setting detected at startup
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// ValidationError reports client-correctable input problems
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// StoreError wraps a connectivity or read/write failure of the backing store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ParseError reports a request body that could not be decoded
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

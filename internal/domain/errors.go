package domain

import "errors"

// API failure taxonomy. The HTTP client wraps every failure in exactly one
// of these so callers can branch with errors.Is.
var (
	ErrNetwork  = errors.New("network failure")
	ErrAuth     = errors.New("authentication rejected")
	ErrNotFound = errors.New("not found")
	ErrDecode   = errors.New("malformed response body")
)

package services

import "errors"

// Sentinel errors services return so handlers can pick status codes without
// string matching. Wrap with fmt.Errorf("...: %w", Err...) for detail.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

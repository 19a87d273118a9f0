package entity

import "errors"

// Sentinel errors shared across components. Validation, not-found and
// conflict errors surface to the caller as rejections; the rest are
// structured "degrade, don't fail" signals.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrNoData           = errors.New("no data for the requested window")
	ErrModelUnavailable = errors.New("no trained model available")
)

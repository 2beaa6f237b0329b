package deviceconfig

import "errors"

// Sentinel errors for device configuration operations.
// Use errors.Is() to check for these errors as they may be wrapped.
var (
	// ErrConfigNotFound is returned when no configuration exists for a MAC.
	ErrConfigNotFound = errors.New("deviceconfig: config not found")

	// ErrInvalidInterval is returned when the report interval is zero or negative.
	ErrInvalidInterval = errors.New("deviceconfig: report interval must be positive")
)

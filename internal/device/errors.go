package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
//
// Validation and uniqueness failures are business-rule outcomes, not faults;
// callers are expected to branch on them rather than treat them as fatal.
var (
	// ErrDeviceNotFound is returned when a MAC address has no matching row.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDuplicateMAC is returned when a device with the same MAC address
	// is already registered.
	ErrDuplicateMAC = errors.New("device: duplicate mac address")

	// ErrDuplicateName is returned when another device already uses the name.
	ErrDuplicateName = errors.New("device: duplicate name")

	// ErrInvalidMAC is returned when a MAC address does not match any of
	// the accepted textual forms.
	ErrInvalidMAC = errors.New("device: invalid mac address")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidType is returned when a device type is empty or too long.
	ErrInvalidType = errors.New("device: invalid type")

	// ErrInvalidLocation is returned when a location exceeds the length limit.
	ErrInvalidLocation = errors.New("device: invalid location")

	// ErrInvalidStatus is returned when a status value is not recognised.
	ErrInvalidStatus = errors.New("device: invalid status")
)

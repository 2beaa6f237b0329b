package device

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Length limits are counted in characters, not bytes, so multibyte
// names are not penalised.
const (
	maxNameLength     = 50
	maxTypeLength     = 20
	maxLocationLength = 100
)

// validStatuses is a pre-computed set for O(1) status lookups.
var validStatuses map[Status]struct{}

func init() {
	validStatuses = make(map[Status]struct{}, len(AllStatuses()))
	for _, s := range AllStatuses() {
		validStatuses[s] = struct{}{}
	}
}

// ValidateName checks if a device name is valid after trimming whitespace.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateType checks if a device type is valid after trimming whitespace.
// Device types are free text; only emptiness and length are enforced.
func ValidateType(deviceType string) error {
	deviceType = strings.TrimSpace(deviceType)
	if deviceType == "" {
		return fmt.Errorf("%w: type cannot be empty", ErrInvalidType)
	}
	if utf8.RuneCountInString(deviceType) > maxTypeLength {
		return fmt.Errorf("%w: type exceeds %d characters", ErrInvalidType, maxTypeLength)
	}
	return nil
}

// ValidateLocation checks if a location is within the length limit.
// An empty location is valid; the field is optional.
func ValidateLocation(location string) error {
	if utf8.RuneCountInString(strings.TrimSpace(location)) > maxLocationLength {
		return fmt.Errorf("%w: location exceeds %d characters", ErrInvalidLocation, maxLocationLength)
	}
	return nil
}

// ValidateStatus checks if a status is one of the recognised values.
func ValidateStatus(status Status) error {
	if _, ok := validStatuses[status]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
}

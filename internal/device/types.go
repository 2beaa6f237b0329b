package device

import "time"

// Device represents a registered IoT sensor or actuator.
// This matches the database schema in migrations/20260301_000000_initial_schema.up.sql.
type Device struct {
	// Identity. ID is assigned by the store on creation; MACAddress is the
	// canonical colon-separated uppercase form and is immutable afterwards.
	ID         int64  `json:"id"`
	MACAddress string `json:"mac_address"`

	// Classification
	Name string `json:"device_name"`
	Type string `json:"device_type"`

	// Optional metadata
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	InstallDate *time.Time `json:"install_date,omitempty"`

	// Status is an unconstrained label, not a guarded workflow state.
	Status Status `json:"status"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status represents the operational state of a device.
type Status string

// Status constants. Values are stored lowercase in the database.
const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusMaintenance}
}

// Filter narrows List results. Zero values mean no filtering.
type Filter struct {
	// Status matches devices with exactly this status.
	Status Status

	// Type matches devices with exactly this device type.
	Type string
}

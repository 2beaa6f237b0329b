package deviceconfig

import "time"

// DefaultReportInterval is the telemetry report interval, in seconds,
// applied when a configuration is created without one.
const DefaultReportInterval = 60

// Config is the operational configuration for a single device.
//
// DeviceMAC is the row's identity; at most one config exists per MAC.
// AlarmThresholdMin and AlarmThresholdMax are optional and independent;
// either may be set without the other. ConfigData carries device-specific
// parameters as free-form JSON.
type Config struct {
	ID                int64          `json:"id"`
	DeviceMAC         string         `json:"device_mac"`
	ReportInterval    int            `json:"report_interval"`
	AlarmThresholdMin *float64       `json:"alarm_threshold_min,omitempty"`
	AlarmThresholdMax *float64       `json:"alarm_threshold_max,omitempty"`
	ConfigData        map[string]any `json:"config_data,omitempty"`
	UpdatedBy         *string        `json:"updated_by,omitempty"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

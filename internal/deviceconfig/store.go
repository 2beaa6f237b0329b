package deviceconfig

import (
	"context"
	"fmt"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store provides configuration management: defaulting, validation, and
// partial updates over the repository.
type Store struct {
	repo   Repository
	logger Logger
}

// NewStore creates a new configuration store over the given repository.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// CreateInput holds the raw input for configuration creation.
// Only DeviceMAC is required; ReportInterval defaults when nil.
type CreateInput struct {
	DeviceMAC         string
	ReportInterval    *int
	AlarmThresholdMin *float64
	AlarmThresholdMax *float64
	ConfigData        map[string]any
	UpdatedBy         *string
}

// Create stores a new configuration for a device.
//
// A nil ReportInterval defaults to DefaultReportInterval; an explicit
// interval must be positive. Thresholds are accepted in any order; an
// inverted pair (min above max) is logged as a warning but stored, since
// alarm evaluation treats the bounds independently.
func (s *Store) Create(ctx context.Context, in CreateInput) (*Config, error) {
	interval := DefaultReportInterval
	if in.ReportInterval != nil {
		interval = *in.ReportInterval
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}

	s.warnInvertedThresholds(in.DeviceMAC, in.AlarmThresholdMin, in.AlarmThresholdMax)

	c := &Config{
		DeviceMAC:         in.DeviceMAC,
		ReportInterval:    interval,
		AlarmThresholdMin: in.AlarmThresholdMin,
		AlarmThresholdMax: in.AlarmThresholdMax,
		ConfigData:        in.ConfigData,
		UpdatedBy:         in.UpdatedBy,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("device config created", "mac", c.DeviceMAC, "report_interval", c.ReportInterval)
	return c, nil
}

// Get retrieves the configuration for a device, matched on the MAC
// exactly as given.
func (s *Store) Get(ctx context.Context, mac string) (*Config, error) {
	return s.repo.GetByMAC(ctx, mac)
}

// UpdateInput enumerates the configuration fields for partial updates.
// Nil fields are left untouched. Thresholds and ConfigData cannot be
// cleared through this path, only replaced.
type UpdateInput struct {
	ReportInterval    *int
	AlarmThresholdMin *float64
	AlarmThresholdMax *float64
	ConfigData        map[string]any
	UpdatedBy         *string
}

// Update applies a partial update to an existing configuration.
//
// The supplied fields replace their stored counterparts; everything else
// is carried over unchanged. A supplied ConfigData replaces the whole
// blob, it is not merged key-by-key.
func (s *Store) Update(ctx context.Context, mac string, in UpdateInput) (*Config, error) {
	c, err := s.repo.GetByMAC(ctx, mac)
	if err != nil {
		return nil, err
	}

	if in.ReportInterval != nil {
		if *in.ReportInterval <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidInterval, *in.ReportInterval)
		}
		c.ReportInterval = *in.ReportInterval
	}
	if in.AlarmThresholdMin != nil {
		c.AlarmThresholdMin = in.AlarmThresholdMin
	}
	if in.AlarmThresholdMax != nil {
		c.AlarmThresholdMax = in.AlarmThresholdMax
	}
	if in.ConfigData != nil {
		c.ConfigData = in.ConfigData
	}
	if in.UpdatedBy != nil {
		c.UpdatedBy = in.UpdatedBy
	}

	s.warnInvertedThresholds(mac, c.AlarmThresholdMin, c.AlarmThresholdMax)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("device config updated", "mac", c.DeviceMAC)
	return c, nil
}

// warnInvertedThresholds logs when both thresholds are set and inverted.
func (s *Store) warnInvertedThresholds(mac string, min, max *float64) {
	if min != nil && max != nil && *min > *max {
		s.logger.Warn("alarm threshold min exceeds max",
			"mac", mac, "min", *min, "max", *max)
	}
}

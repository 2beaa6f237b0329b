package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// Registry provides device lifecycle management: input normalisation,
// validation, uniqueness enforcement, and CRUD operations.
//
// The Registry holds no in-process cache; every read goes to the
// repository so it reflects the latest committed state. Each operation is
// a short-lived, independent unit of work.
//
// All public methods are thread-safe provided the Repository is.
type Registry struct {
	repo   Repository
	logger Logger
}

// NewRegistry creates a new device registry over the given repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// CreateInput holds the raw user input for device creation.
// MACAddress, Name, and Type are required; the rest are optional.
type CreateInput struct {
	MACAddress  string
	Name        string
	Type        string
	Location    string
	Description string
	InstallDate *time.Time
	Status      Status // empty defaults to StatusActive
}

// Create registers a new device.
//
// Validation runs in strict order so the caller receives a precise error
// for the first failing rule: MAC normalisation, name, type, duplicate
// MAC, duplicate name. Duplicate errors cite the conflicting device. On
// success exactly one row exists; on any rejection, none.
func (r *Registry) Create(ctx context.Context, in CreateInput) (*Device, error) {
	mac, err := NormalizeMAC(in.MACAddress)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	deviceType := strings.TrimSpace(in.Type)
	if err := ValidateType(deviceType); err != nil {
		return nil, err
	}

	location := strings.TrimSpace(in.Location)
	if err := ValidateLocation(location); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	// Duplicate pre-checks. These give precise, citing errors; the unique
	// indexes remain the arbiter under concurrent creates.
	if existing, err := r.repo.GetByMAC(ctx, mac); err == nil {
		return nil, fmt.Errorf("%w: %s is already registered as %q", ErrDuplicateMAC, mac, existing.Name)
	} else if !errors.Is(err, ErrDeviceNotFound) {
		return nil, fmt.Errorf("checking mac uniqueness for %s: %w", mac, err)
	}

	if existing, err := r.repo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %q is already used by device %s", ErrDuplicateName, name, existing.MACAddress)
	} else if !errors.Is(err, ErrDeviceNotFound) {
		return nil, fmt.Errorf("checking name uniqueness for %q: %w", name, err)
	}

	d := &Device{
		MACAddress:  mac,
		Name:        name,
		Type:        deviceType,
		Location:    optionalString(location),
		Description: optionalString(strings.TrimSpace(in.Description)),
		InstallDate: in.InstallDate,
		Status:      status,
	}

	if err := r.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	r.logger.Info("device created", "mac", d.MACAddress, "name", d.Name, "type", d.Type)
	return d, nil
}

// GetByMAC retrieves a device by MAC address.
//
// The lookup matches the MAC exactly as given; callers are expected to
// normalise first. A lowercase or dash-separated MAC will miss a device
// stored under its canonical form.
func (r *Registry) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	return r.repo.GetByMAC(ctx, mac)
}

// List retrieves devices matching the filter, newest first.
func (r *Registry) List(ctx context.Context, f Filter) ([]Device, error) {
	return r.repo.List(ctx, f)
}

// UpdateInput enumerates the mutable device fields for partial updates.
// A nil (or empty-after-trim) field is left untouched; ID and MAC address
// are never mutable through this path.
type UpdateInput struct {
	Name        *string
	Type        *string
	Location    *string
	Description *string
	Status      *Status
}

// UpdateFields applies a partial update to a device.
//
// The MAC is normalised before lookup. If a new name is supplied it must
// not collide with another device's name; the device being updated is
// excluded from that check. On success updated_at advances and the full
// updated entity is returned.
func (r *Registry) UpdateFields(ctx context.Context, mac string, in UpdateInput) (*Device, error) {
	normalized, err := NormalizeMAC(mac)
	if err != nil {
		return nil, err
	}

	d, err := r.repo.GetByMAC(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if name, ok := presentString(in.Name); ok {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		if other, err := r.repo.GetByName(ctx, name); err == nil {
			if other.MACAddress != d.MACAddress {
				return nil, fmt.Errorf("%w: %q is already used by device %s", ErrDuplicateName, name, other.MACAddress)
			}
		} else if !errors.Is(err, ErrDeviceNotFound) {
			return nil, fmt.Errorf("checking name uniqueness for %q: %w", name, err)
		}
		d.Name = name
	}

	if deviceType, ok := presentString(in.Type); ok {
		if err := ValidateType(deviceType); err != nil {
			return nil, err
		}
		d.Type = deviceType
	}

	if location, ok := presentString(in.Location); ok {
		if err := ValidateLocation(location); err != nil {
			return nil, err
		}
		d.Location = &location
	}

	if description, ok := presentString(in.Description); ok {
		d.Description = &description
	}

	if in.Status != nil {
		if err := ValidateStatus(*in.Status); err != nil {
			return nil, err
		}
		d.Status = *in.Status
	}

	if err := r.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	r.logger.Info("device updated", "mac", d.MACAddress, "name", d.Name)
	return d, nil
}

// UpdateStatus performs a single-field status transition.
// Any status may follow any other; status is not a guarded state machine.
func (r *Registry) UpdateStatus(ctx context.Context, mac string, status Status) error {
	normalized, err := NormalizeMAC(mac)
	if err != nil {
		return err
	}
	if err := ValidateStatus(status); err != nil {
		return err
	}

	if err := r.repo.UpdateStatus(ctx, normalized, status, time.Now().UTC()); err != nil {
		return err
	}

	r.logger.Info("device status updated", "mac", normalized, "status", status)
	return nil
}

// Delete removes a device. Deletion is physical; the associated config
// row, if any, is not cascaded.
func (r *Registry) Delete(ctx context.Context, mac string) error {
	if err := r.repo.Delete(ctx, mac); err != nil {
		return err
	}

	r.logger.Info("device deleted", "mac", mac)
	return nil
}

// presentString reports whether an optional string field carries a value.
// Empty-after-trim input counts as absent; there is no clearing path.
func presentString(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// optionalString maps an empty string to absent.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

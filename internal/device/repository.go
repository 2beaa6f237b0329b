package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByMAC retrieves a device by MAC address, matched exactly as given.
	// Returns ErrDeviceNotFound if no row matches.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// GetByName retrieves a device by its exact (case-sensitive) name.
	// Returns ErrDeviceNotFound if no row matches.
	GetByName(ctx context.Context, name string) (*Device, error)

	// List retrieves devices matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]Device, error)

	// Create inserts a new device and assigns its ID.
	// Returns ErrDuplicateMAC or ErrDuplicateName if a unique constraint
	// on the respective column rejects the insert.
	Create(ctx context.Context, d *Device) error

	// Update rewrites the mutable fields of an existing device, addressed
	// by its MAC address. Returns ErrDeviceNotFound if the device does not
	// exist and ErrDuplicateName if the new name collides.
	Update(ctx context.Context, d *Device) error

	// UpdateStatus updates only the status and updated_at columns.
	// Returns ErrDeviceNotFound if the device does not exist.
	UpdateStatus(ctx context.Context, mac string, status Status, updatedAt time.Time) error

	// Delete removes a device by MAC address.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, mac string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// deviceColumns is the column list shared by all SELECT queries.
const deviceColumns = `id, mac_address, device_name, device_type, location,
	description, install_date, status, created_at, updated_at`

// GetByMAC retrieves a device by MAC address, matched exactly as given.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE mac_address = ?`

	d, err := scanDevice(r.db.QueryRowContext(ctx, query, mac))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by mac: %w", err)
	}
	return d, nil
}

// GetByName retrieves a device by its exact name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE device_name = ?`

	d, err := scanDevice(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by name: %w", err)
	}
	return d, nil
}

// List retrieves devices matching the filter, ordered by creation time
// descending. Filtering happens at the store layer so every read reflects
// the latest committed state.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices`

	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Type != "" {
		where = append(where, "device_type = ?")
		args = append(args, f.Type)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// Create inserts a new device and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	query := `
		INSERT INTO devices (
			mac_address, device_name, device_type, location, description,
			install_date, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		d.MACAddress,
		d.Name,
		d.Type,
		nullableString(d.Location),
		nullableString(d.Description),
		nullableTime(d.InstallDate),
		string(d.Status),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if dupErr := mapUniqueConstraintError(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("inserting device %s: %w", d.MACAddress, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted device id: %w", err)
	}
	d.ID = id

	return nil
}

// Update rewrites the mutable fields of an existing device.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	d.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE devices SET
			device_name = ?, device_type = ?, location = ?, description = ?,
			status = ?, updated_at = ?
		WHERE mac_address = ?`

	result, err := r.db.ExecContext(ctx, query,
		d.Name,
		d.Type,
		nullableString(d.Location),
		nullableString(d.Description),
		string(d.Status),
		d.UpdatedAt.Format(time.RFC3339),
		d.MACAddress,
	)
	if err != nil {
		if dupErr := mapUniqueConstraintError(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("updating device %s: %w", d.MACAddress, err)
	}

	return requireRowAffected(result)
}

// UpdateStatus updates only the status and updated_at columns.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, mac string, status Status, updatedAt time.Time) error {
	query := `UPDATE devices SET status = ?, updated_at = ? WHERE mac_address = ?`

	result, err := r.db.ExecContext(ctx, query,
		string(status),
		updatedAt.UTC().Format(time.RFC3339),
		mac,
	)
	if err != nil {
		return fmt.Errorf("updating device status %s: %w", mac, err)
	}

	return requireRowAffected(result)
}

// Delete removes a device by MAC address. The associated config row, if
// any, is left in place; readers tolerate orphaned configs.
func (r *SQLiteRepository) Delete(ctx context.Context, mac string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE mac_address = ?", mac)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", mac, err)
	}

	return requireRowAffected(result)
}

// requireRowAffected converts a zero-row write into ErrDeviceNotFound.
func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var location, description sql.NullString
	var installDate sql.NullString
	var status string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&d.ID,
		&d.MACAddress,
		&d.Name,
		&d.Type,
		&location,
		&description,
		&installDate,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = Status(status)

	if location.Valid {
		d.Location = &location.String
	}
	if description.Valid {
		d.Description = &description.String
	}
	if installDate.Valid {
		t, err := time.Parse(time.RFC3339, installDate.String)
		if err == nil {
			d.InstallDate = &t
		}
	}

	var parseErr error
	d.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	d.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &d, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableTime returns a sql.NullString for optional time pointers (as RFC3339 strings).
func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// mapUniqueConstraintError maps a SQLite unique constraint violation onto
// the matching duplicate sentinel, or returns nil for other errors.
//
// Two concurrent creates can both pass the registry's pre-checks; the
// unique indexes on mac_address and device_name are the final arbiter, so
// their rejections must surface as the same typed errors the pre-checks
// produce.
func mapUniqueConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") &&
		!strings.Contains(msg, "unique constraint") {
		return nil
	}
	switch {
	case strings.Contains(msg, "devices.mac_address"):
		return fmt.Errorf("%w: constraint rejected insert", ErrDuplicateMAC)
	case strings.Contains(msg, "devices.device_name"):
		return fmt.Errorf("%w: constraint rejected insert", ErrDuplicateName)
	}
	return fmt.Errorf("unique constraint violation: %w", err)
}

package deviceconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for configuration persistence.
type Repository interface {
	// GetByMAC retrieves the configuration for a device, matched on the
	// MAC exactly as given. Returns ErrConfigNotFound if no row exists.
	GetByMAC(ctx context.Context, mac string) (*Config, error)

	// Create inserts a new configuration row and assigns its ID.
	// A second create for the same MAC fails on the unique index; the
	// error is a plain storage error, not a typed sentinel.
	Create(ctx context.Context, c *Config) error

	// Update rewrites an existing configuration row, addressed by MAC.
	// Returns ErrConfigNotFound if the row does not exist.
	Update(ctx context.Context, c *Config) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed configuration repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const configColumns = `id, device_mac, report_interval, alarm_threshold_min,
	alarm_threshold_max, config_data, updated_by, updated_at`

// GetByMAC retrieves the configuration for a device.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Config, error) {
	query := `SELECT ` + configColumns + ` FROM device_config WHERE device_mac = ?`

	c, err := scanConfig(r.db.QueryRowContext(ctx, query, mac))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("querying config for %s: %w", mac, err)
	}
	return c, nil
}

// Create inserts a new configuration row and assigns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, c *Config) error {
	c.UpdatedAt = time.Now().UTC()

	configData, err := marshalConfigData(c.ConfigData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO device_config (
			device_mac, report_interval, alarm_threshold_min,
			alarm_threshold_max, config_data, updated_by, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		c.DeviceMAC,
		c.ReportInterval,
		nullableFloat(c.AlarmThresholdMin),
		nullableFloat(c.AlarmThresholdMax),
		configData,
		nullableString(c.UpdatedBy),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting config for %s: %w", c.DeviceMAC, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted config id: %w", err)
	}
	c.ID = id

	return nil
}

// Update rewrites an existing configuration row.
func (r *SQLiteRepository) Update(ctx context.Context, c *Config) error {
	c.UpdatedAt = time.Now().UTC()

	configData, err := marshalConfigData(c.ConfigData)
	if err != nil {
		return err
	}

	query := `
		UPDATE device_config SET
			report_interval = ?, alarm_threshold_min = ?, alarm_threshold_max = ?,
			config_data = ?, updated_by = ?, updated_at = ?
		WHERE device_mac = ?`

	result, err := r.db.ExecContext(ctx, query,
		c.ReportInterval,
		nullableFloat(c.AlarmThresholdMin),
		nullableFloat(c.AlarmThresholdMax),
		configData,
		nullableString(c.UpdatedBy),
		c.UpdatedAt.Format(time.RFC3339),
		c.DeviceMAC,
	)
	if err != nil {
		return fmt.Errorf("updating config for %s: %w", c.DeviceMAC, err)
	}

	return requireRowAffected(result)
}

// requireRowAffected converts a zero-row write into ErrConfigNotFound.
func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConfig scans a row result into a Config.
func scanConfig(scanner rowScanner) (*Config, error) {
	var c Config
	var thresholdMin, thresholdMax sql.NullFloat64
	var configData, updatedBy sql.NullString
	var updatedAt string

	err := scanner.Scan(
		&c.ID,
		&c.DeviceMAC,
		&c.ReportInterval,
		&thresholdMin,
		&thresholdMax,
		&configData,
		&updatedBy,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if thresholdMin.Valid {
		c.AlarmThresholdMin = &thresholdMin.Float64
	}
	if thresholdMax.Valid {
		c.AlarmThresholdMax = &thresholdMax.Float64
	}
	if updatedBy.Valid {
		c.UpdatedBy = &updatedBy.String
	}
	if configData.Valid && configData.String != "" {
		if err := json.Unmarshal([]byte(configData.String), &c.ConfigData); err != nil {
			return nil, fmt.Errorf("parsing config_data: %w", err)
		}
	}

	c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &c, nil
}

// marshalConfigData serialises the free-form parameter map for storage.
// A nil map is stored as NULL rather than the string "null".
func marshalConfigData(data map[string]any) (sql.NullString, error) {
	if data == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding config_data: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// nullableFloat returns a sql.NullFloat64 for optional float pointers.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

package deviceconfig

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the device_config table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE device_config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_mac TEXT NOT NULL UNIQUE,
			report_interval INTEGER NOT NULL DEFAULT 60,
			alarm_threshold_min REAL,
			alarm_threshold_max REAL,
			config_data TEXT,
			updated_by TEXT,
			updated_at TEXT NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestSQLiteRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates config and assigns id", func(t *testing.T) {
		c := &Config{
			DeviceMAC:      "AA:BB:CC:DD:EE:FF",
			ReportInterval: 120,
		}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if c.ID == 0 {
			t.Error("Create() did not assign an ID")
		}
		if c.UpdatedAt.IsZero() {
			t.Error("Create() did not set UpdatedAt")
		}
	})

	t.Run("duplicate mac fails with a plain storage error", func(t *testing.T) {
		c := &Config{
			DeviceMAC:      "AA:BB:CC:DD:EE:FF",
			ReportInterval: 30,
		}
		err := repo.Create(ctx, c)
		if err == nil {
			t.Fatal("Create() succeeded for duplicate mac")
		}
		if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidInterval) {
			t.Errorf("Create() error = %v, want an untyped storage error", err)
		}
	})

	t.Run("round-trips optional fields", func(t *testing.T) {
		c := &Config{
			DeviceMAC:         "11:22:33:44:55:66",
			ReportInterval:    60,
			AlarmThresholdMin: floatPtr(5.5),
			AlarmThresholdMax: floatPtr(42.0),
			ConfigData: map[string]any{
				"unit":      "celsius",
				"precision": float64(2),
			},
			UpdatedBy: strPtr("provisioner"),
		}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "11:22:33:44:55:66")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.AlarmThresholdMin == nil || *got.AlarmThresholdMin != 5.5 {
			t.Errorf("AlarmThresholdMin = %v, want 5.5", got.AlarmThresholdMin)
		}
		if got.AlarmThresholdMax == nil || *got.AlarmThresholdMax != 42.0 {
			t.Errorf("AlarmThresholdMax = %v, want 42.0", got.AlarmThresholdMax)
		}
		if got.ConfigData["unit"] != "celsius" {
			t.Errorf("ConfigData[unit] = %v, want celsius", got.ConfigData["unit"])
		}
		if got.ConfigData["precision"] != float64(2) {
			t.Errorf("ConfigData[precision] = %v, want 2", got.ConfigData["precision"])
		}
		if got.UpdatedBy == nil || *got.UpdatedBy != "provisioner" {
			t.Errorf("UpdatedBy = %v, want provisioner", got.UpdatedBy)
		}
	})

	t.Run("nil optionals stay nil", func(t *testing.T) {
		c := &Config{
			DeviceMAC:      "DE:AD:BE:EF:00:01",
			ReportInterval: 60,
		}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "DE:AD:BE:EF:00:01")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.AlarmThresholdMin != nil || got.AlarmThresholdMax != nil {
			t.Errorf("thresholds = %v/%v, want nil/nil", got.AlarmThresholdMin, got.AlarmThresholdMax)
		}
		if got.ConfigData != nil {
			t.Errorf("ConfigData = %v, want nil", got.ConfigData)
		}
		if got.UpdatedBy != nil {
			t.Errorf("UpdatedBy = %v, want nil", got.UpdatedBy)
		}
	})
}

func TestSQLiteRepository_GetByMAC(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := repo.GetByMAC(ctx, "00:00:00:00:00:00")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("GetByMAC(missing) error = %v, want ErrConfigNotFound", err)
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &Config{
		DeviceMAC:      "AA:BB:CC:DD:EE:FF",
		ReportInterval: 60,
	}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("rewrites the row", func(t *testing.T) {
		c.ReportInterval = 300
		c.AlarmThresholdMax = floatPtr(80)

		if err := repo.Update(ctx, c); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := repo.GetByMAC(ctx, "AA:BB:CC:DD:EE:FF")
		if err != nil {
			t.Fatalf("GetByMAC() error = %v", err)
		}
		if got.ReportInterval != 300 {
			t.Errorf("ReportInterval = %d, want 300", got.ReportInterval)
		}
		if got.AlarmThresholdMax == nil || *got.AlarmThresholdMax != 80 {
			t.Errorf("AlarmThresholdMax = %v, want 80", got.AlarmThresholdMax)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		missing := &Config{DeviceMAC: "00:00:00:00:00:00", ReportInterval: 60}
		err := repo.Update(ctx, missing)
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrConfigNotFound", err)
		}
	})
}

// Package deviceconfig manages per-device operational configuration.
//
// Each registered device may carry at most one configuration row, keyed
// by the device's canonical MAC address. A configuration bundles the
// telemetry report interval, optional alarm thresholds, and a free-form
// JSON parameter blob for device-specific settings.
//
// # Key Types
//
//   - Config: the configuration entity
//   - Store: business logic (defaults, validation, partial updates)
//   - Repository: persistence interface
//   - SQLiteRepository: SQLite implementation
//
// # Usage
//
//	repo := deviceconfig.NewSQLiteRepository(db)
//	store := deviceconfig.NewStore(repo)
//
//	cfg, err := store.Create(ctx, deviceconfig.CreateInput{
//	    DeviceMAC: "AA:BB:CC:DD:EE:FF",
//	})
//
// The store does not verify that the MAC refers to a registered device;
// callers that need referential integrity check the device registry
// first. Configs key on the MAC exactly as given, so callers are
// expected to pass the canonical form.
package deviceconfig

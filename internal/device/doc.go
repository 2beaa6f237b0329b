// Package device provides the Device Registry for the IoT device registry
// service.
//
// The Device Registry is the catalogue of all sensor and actuator devices
// known to the system, keyed by MAC address. It owns the rules that decide
// whether a device may be created, renamed, re-typed, or deleted, and the
// invariants that keep MAC and device-name uniqueness intact across
// concurrent callers.
//
// # Key Types
//
//   - Device: the core entity (MAC address, name, type, location, status)
//   - Registry: validation, normalisation, uniqueness enforcement, CRUD
//   - Repository: persistence abstraction with a SQLite implementation
//   - Status: active | inactive | maintenance (an unconstrained label)
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	dev, err := registry.Create(ctx, device.CreateInput{
//	    MACAddress: "aa-bb-cc-dd-ee-ff",
//	    Name:       "Living Room Temperature",
//	    Type:       "sensor",
//	})
//
// Create normalises the MAC to its canonical form (AA:BB:CC:DD:EE:FF),
// trims and validates the textual fields, and rejects duplicates with
// typed errors citing the conflicting device. Lookups match the MAC
// exactly as given; callers normalise first.
//
// # Concurrency
//
// The duplicate pre-checks are check-then-act; the unique indexes on
// mac_address and device_name serialise concurrent creates at the store
// level, and the repository maps constraint rejections onto the same
// ErrDuplicateMAC / ErrDuplicateName sentinels the pre-checks produce.
package device

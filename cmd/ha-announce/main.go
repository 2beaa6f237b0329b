// ha-announce republishes Home Assistant discovery configs for every
// registered device, then exits.
//
// The registry publishes discovery configs as devices are created and
// updated, but the retained messages live in the broker. After a broker
// reinstall or a retained-message purge this tool rebuilds them from
// the database in one pass.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/jokker-dev/iot-registry/internal/device"
	"github.com/jokker-dev/iot-registry/internal/homeassistant"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/config"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/database"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/logging"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/mqtt"
)

// version is set at build time via ldflags, matching the registry binary.
var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("IOTREG_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.MQTT.Enabled {
		return fmt.Errorf("mqtt is disabled in %s", configPath)
	}
	if !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("home assistant discovery is disabled in %s", configPath)
	}

	log := logging.New(cfg.Logging, version)

	// Unique client ID so a concurrent registry instance keeps its
	// broker session.
	cfg.MQTT.Broker.ClientID = cfg.MQTT.Broker.ClientID + "-announce-" + uuid.NewString()[:8]

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer mqttClient.Close()
	log.Info("MQTT connected", "client_id", cfg.MQTT.Broker.ClientID)

	registry := device.NewRegistry(device.NewSQLiteRepository(db.DB))

	announcer := homeassistant.NewAnnouncer(mqttClient, cfg.HomeAssistant)
	announcer.SetLogger(log)

	devices, err := registry.List(ctx, device.Filter{})
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	announced := 0
	for i := range devices {
		if err := announcer.AnnounceDevice(&devices[i]); err != nil {
			log.Error("announce failed", "mac", devices[i].MACAddress, "error", err)
			continue
		}
		announced++
	}

	log.Info("discovery configs published", "devices", len(devices), "announced", announced)
	if announced < len(devices) {
		return fmt.Errorf("announced %d of %d devices", announced, len(devices))
	}
	return nil
}

package homeassistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jokker-dev/iot-registry/internal/device"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/config"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client the announcer needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger defines the logging interface used by the Announcer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Home Assistant MQTT component types.
const (
	componentSensor       = "sensor"
	componentBinarySensor = "binary_sensor"
	componentSwitch       = "switch"
)

// discoveryQoS is the QoS for discovery config messages. At-least-once
// so Home Assistant reliably sees new entities.
const discoveryQoS = 1

// deviceInfo is the device block of a discovery payload. Home Assistant
// groups entities sharing an identifier under one device.
type deviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// discoveryPayload is a Home Assistant MQTT discovery config message.
// Optional fields are only present for the component types that use them.
type discoveryPayload struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	ValueTemplate       string     `json:"value_template,omitempty"`
	CommandTopic        string     `json:"command_topic,omitempty"`
	PayloadOn           string     `json:"payload_on,omitempty"`
	PayloadOff          string     `json:"payload_off,omitempty"`
	StateOn             string     `json:"state_on,omitempty"`
	StateOff            string     `json:"state_off,omitempty"`
	Optimistic          *bool      `json:"optimistic,omitempty"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`
	Device              deviceInfo `json:"device"`
}

// Announcer publishes discovery config messages for registered devices.
type Announcer struct {
	pub    Publisher
	cfg    config.HomeAssistantConfig
	topics mqtt.Topics
	logger Logger
}

// NewAnnouncer creates an announcer publishing through the given client.
func NewAnnouncer(pub Publisher, cfg config.HomeAssistantConfig) *Announcer {
	return &Announcer{
		pub:    pub,
		cfg:    cfg,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the announcer.
func (a *Announcer) SetLogger(logger Logger) {
	a.logger = logger
}

// AnnounceDevice publishes a retained discovery config for the device.
// Home Assistant creates or updates the matching entity on receipt.
func (a *Announcer) AnnounceDevice(d *device.Device) error {
	objectID := ObjectID(d.MACAddress)
	component := componentFor(d.Type)

	payload := a.buildPayload(d, objectID, component)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding discovery payload for %s: %w", d.MACAddress, err)
	}

	topic := a.topics.Discovery(a.cfg.DiscoveryPrefix, component, objectID)
	if err := a.pub.Publish(topic, raw, discoveryQoS, true); err != nil {
		return fmt.Errorf("publishing discovery for %s: %w", d.MACAddress, err)
	}

	a.logger.Info("announced device to home assistant",
		"mac", d.MACAddress, "component", component, "topic", topic)
	return nil
}

// RemoveDevice clears the retained discovery config for a device.
// An empty retained payload on the config topic removes the entity.
func (a *Announcer) RemoveDevice(mac, deviceType string) error {
	objectID := ObjectID(mac)
	component := componentFor(deviceType)

	topic := a.topics.Discovery(a.cfg.DiscoveryPrefix, component, objectID)
	if err := a.pub.Publish(topic, nil, discoveryQoS, true); err != nil {
		return fmt.Errorf("clearing discovery for %s: %w", mac, err)
	}

	a.logger.Info("removed device from home assistant", "mac", mac, "topic", topic)
	return nil
}

// buildPayload assembles the discovery config for a device.
func (a *Announcer) buildPayload(d *device.Device, objectID, component string) discoveryPayload {
	payload := discoveryPayload{
		Name:                d.Name,
		UniqueID:            fmt.Sprintf("%s_%s", component, objectID),
		StateTopic:          a.topics.DeviceState(objectID),
		AvailabilityTopic:   a.topics.DeviceAvailability(objectID),
		PayloadAvailable:    "online",
		PayloadNotAvailable: "offline",
		Device: deviceInfo{
			Identifiers:  []string{objectID},
			Name:         d.Name,
			Manufacturer: "CustomMQTTDevice",
			Model:        d.Type,
		},
	}

	switch component {
	case componentSwitch:
		optimistic := false
		payload.CommandTopic = a.topics.DeviceCommand(objectID)
		payload.PayloadOn = "ON"
		payload.PayloadOff = "OFF"
		payload.StateOn = "ON"
		payload.StateOff = "OFF"
		payload.Optimistic = &optimistic
	case componentBinarySensor:
		payload.PayloadOn = "ON"
		payload.PayloadOff = "OFF"
		payload.ValueTemplate = "{{ value_json.value }}"
	default:
		payload.ValueTemplate = "{{ value_json.value }}"
	}

	return payload
}

// ObjectID derives the MQTT object id from a MAC address: lowercase with
// the separators stripped, e.g. "AA:BB:CC:DD:EE:FF" -> "aabbccddeeff".
func ObjectID(mac string) string {
	replacer := strings.NewReplacer(":", "", "-", "")
	return strings.ToLower(replacer.Replace(mac))
}

// componentFor maps a registry device type onto a Home Assistant component.
func componentFor(deviceType string) string {
	switch strings.ToLower(strings.TrimSpace(deviceType)) {
	case "switch", "relay", "plug":
		return componentSwitch
	case "binary_sensor", "motion", "presence", "contact":
		return componentBinarySensor
	default:
		return componentSensor
	}
}

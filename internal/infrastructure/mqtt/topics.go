package mqtt

import "fmt"

// Topic prefixes for registry-published messages.
//
// Registry topics use the scheme: iot/{category}/{object_id}/{leaf}
// Home Assistant discovery topics live under the discovery prefix
// configured on the Home Assistant side (conventionally "homeassistant").
const (
	// TopicPrefixBase is the base for all registry topics.
	TopicPrefixBase = "iot"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "iot/system"
)

// Topics provides builders for registry MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("aabbccddeeff")
//	// Returns: "iot/device/aabbccddeeff/state"
type Topics struct{}

// DeviceState returns the topic a device publishes its telemetry to.
//
// Example: iot/device/aabbccddeeff/state
func (Topics) DeviceState(objectID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixBase, objectID)
}

// DeviceAvailability returns the availability topic for a device.
//
// Example: iot/device/aabbccddeeff/availability
func (Topics) DeviceAvailability(objectID string) string {
	return fmt.Sprintf("%s/device/%s/availability", TopicPrefixBase, objectID)
}

// DeviceCommand returns the topic commands are sent to a device on.
//
// Example: iot/device/aabbccddeeff/set
func (Topics) DeviceCommand(objectID string) string {
	return fmt.Sprintf("%s/device/%s/set", TopicPrefixBase, objectID)
}

// Discovery returns the Home Assistant discovery config topic for a device.
// The prefix comes from configuration and must match the one Home
// Assistant watches.
//
// Example: homeassistant/sensor/aabbccddeeff/config
func (Topics) Discovery(prefix, component, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/config", prefix, component, objectID)
}

// SystemStatus returns the registry's own status topic.
//
// Example: iot/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

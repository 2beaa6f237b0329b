// Package homeassistant publishes MQTT discovery announcements so that
// registered devices appear in Home Assistant without manual setup.
//
// For each device the announcer publishes a retained config payload to
// the discovery topic Home Assistant watches:
//
//	<prefix>/<component>/<object_id>/config
//
// The component (sensor, binary_sensor, switch) is derived from the
// device type. Deleting a device publishes an empty retained payload to
// the same topic, which removes the entity from Home Assistant.
package homeassistant

// Package mqtt provides MQTT broker connectivity for the IoT registry.
//
// The registry is a publisher: it announces devices to Home Assistant via
// MQTT discovery and reports its own availability. There is no inbound
// message handling.
//
// This package manages:
//   - Connection lifecycle with automatic reconnection
//   - Last Will and Testament for offline detection
//   - Publishing with QoS and retained message support
//   - Topic construction helpers
//
// Thread Safety:
//   - All Client methods are safe for concurrent use.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceState("aabbccddeeff")
//	err = client.Publish(topic, payload, 1, true)
package mqtt

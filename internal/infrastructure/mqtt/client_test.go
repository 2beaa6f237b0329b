package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jokker-dev/iot-registry/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device state", topics.DeviceState("aabbccddeeff"), "iot/device/aabbccddeeff/state"},
		{"device availability", topics.DeviceAvailability("aabbccddeeff"), "iot/device/aabbccddeeff/availability"},
		{"device command", topics.DeviceCommand("aabbccddeeff"), "iot/device/aabbccddeeff/set"},
		{"discovery", topics.Discovery("homeassistant", "sensor", "aabbccddeeff"), "homeassistant/sensor/aabbccddeeff/config"},
		{"system status", topics.SystemStatus(), "iot/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{
				Host:     "broker.local",
				Port:     1883,
				ClientID: "test-client",
			},
			Reconnect: config.MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60},
		}

		opts := buildClientOptions(cfg)

		if len(opts.Servers) != 1 {
			t.Fatalf("Servers = %d, want 1", len(opts.Servers))
		}
		if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
			t.Errorf("broker URL = %q, want tcp://broker.local:1883", got)
		}
		if opts.ClientID != "test-client" {
			t.Errorf("ClientID = %q, want test-client", opts.ClientID)
		}
		if !opts.AutoReconnect {
			t.Error("AutoReconnect = false, want true")
		}
	})

	t.Run("tls broker", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{
				Host: "broker.local",
				Port: 8883,
				TLS:  true,
			},
		}

		opts := buildClientOptions(cfg)

		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
		if opts.TLSConfig == nil {
			t.Error("TLSConfig = nil, want configured")
		}
	})

	t.Run("credentials applied when set", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883},
			Auth:   config.MQTTAuthConfig{Username: "user", Password: "pass"},
		}

		opts := buildClientOptions(cfg)

		if opts.Username != "user" || opts.Password != "pass" {
			t.Errorf("credentials = %q/%q, want user/pass", opts.Username, opts.Password)
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883, ClientID: "reg-1"},
	}
	opts := buildClientOptions(cfg)
	configureLWT(opts, "reg-1")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "iot/system/status" {
		t.Errorf("WillTopic = %q, want iot/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}

	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("will payload %q missing offline status", payload)
	}
	if !strings.Contains(payload, `"client_id":"reg-1"`) {
		t.Errorf("will payload %q missing client id", payload)
	}
}

func TestStatusPayload(t *testing.T) {
	online := string(statusPayload(statusOnline, "reg-1", ""))
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload %q missing status", online)
	}
	if strings.Contains(online, `"reason"`) {
		t.Errorf("online payload %q should omit reason", online)
	}

	offline := string(statusPayload(statusOffline, "reg-1", reasonGracefulShutdown))
	if !strings.Contains(offline, `"status":"offline"`) {
		t.Errorf("offline payload %q missing status", offline)
	}
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload %q missing reason", offline)
	}
	if !strings.Contains(offline, `"client_id":"reg-1"`) {
		t.Errorf("offline payload %q missing client id", offline)
	}
}

func TestPublish_Validation(t *testing.T) {
	// A client that never connected; validation runs before any network IO.
	c := &Client{}

	t.Run("empty topic", func(t *testing.T) {
		err := c.Publish("", []byte("x"), 1, false)
		if !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
		}
	})

	t.Run("invalid qos", func(t *testing.T) {
		err := c.Publish("iot/system/status", []byte("x"), 3, false)
		if !errors.Is(err, ErrInvalidQoS) {
			t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		payload := make([]byte, maxPayloadSize+1)
		err := c.Publish("iot/system/status", payload, 1, false)
		if !errors.Is(err, ErrPublishFailed) {
			t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
		}
	})
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{}

	err := c.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_CancelledContext(t *testing.T) {
	c := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.HealthCheck(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

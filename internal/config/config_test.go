package config

import (
	"testing"
	"time"

	"github.com/martinsuchenak/lanwatch/internal/model"
)

func validConfig() *Config {
	return &Config{
		Links:        []model.Link{{Name: "lan1", Interface: "eth0", Port: 5554}},
		PollInterval: 30 * time.Second,
		TopN:         50,
		Fetch:        FetchConfig{Attempts: 5, Delay: 2 * time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no links", func(c *Config) { c.Links = nil }, false},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, false},
		{"zero top-n", func(c *Config) { c.TopN = 0 }, false},
		{"zero attempts", func(c *Config) { c.Fetch.Attempts = 0 }, false},
		{"negative delay", func(c *Config) { c.Fetch.Delay = -time.Second }, false},
		{"zero delay", func(c *Config) { c.Fetch.Delay = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestIsMQTTEnabled(t *testing.T) {
	c := validConfig()
	if c.IsMQTTEnabled() {
		t.Error("MQTT should be disabled without a broker")
	}
	c.MQTT.Broker = "tcp://localhost:1883"
	if !c.IsMQTTEnabled() {
		t.Error("MQTT should be enabled with a broker")
	}
}

func TestServerURLFor(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"", "http://localhost:8080"},
		{":8080", "http://localhost:8080"},
		{":9090", "http://localhost:9090"},
		{"0.0.0.0:8081", "http://localhost:8081"},
		{"127.0.0.1:7000", "http://localhost:7000"},
		{"[::]:8443", "http://localhost:8443"},
		{"not-an-address", "http://localhost:8080"},
	}
	for _, tt := range tests {
		if got := ServerURLFor(tt.addr); got != tt.want {
			t.Errorf("ServerURLFor(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestServerURLFromEnvironment(t *testing.T) {
	t.Setenv("LANWATCH_LISTEN_ADDR", "0.0.0.0:9999")
	if got := ServerURL(); got != "http://localhost:9999" {
		t.Errorf("ServerURL() = %q", got)
	}
}

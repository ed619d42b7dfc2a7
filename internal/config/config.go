package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/paularlott/cli"
)

type Config struct {
	DataDir      string
	ListenAddr   string
	LeaseFile    string
	MonitorHost  string
	Links        []model.Link
	PollInterval time.Duration
	TopN         int
	Fetch        FetchConfig
	MQTT         MQTTConfig
	LogLevel     string
	LogFormat    string
}

type FetchConfig struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}

var (
	dataDir       string
	listenAddr    string
	leaseFile     string
	monitorHost   string
	links         string
	pollInterval  int
	topN          int
	fetchAttempts int
	fetchDelay    int
	fetchTimeout  int
	mqttBroker    string
	mqttTopic     string
	mqttClientID  string
	mqttUsername  string
	mqttPassword  string
	logLevel      string
	logFormat     string
)

// LoadDotEnv loads a .env file from the working directory if there is one, so
// its values are visible to the flag EnvVars below.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Directory for JSON snapshots",
			EnvVars:      []string{"LANWATCH_DATA_DIR"},
			DefaultValue: filepath.Join(".", "data"),
			AssignTo:     &dataDir,
		},
		&cli.StringFlag{
			Name:         "addr",
			Usage:        "Server listen address",
			EnvVars:      []string{"LANWATCH_LISTEN_ADDR"},
			DefaultValue: ":8080",
			AssignTo:     &listenAddr,
		},
		&cli.StringFlag{
			Name:         "lease-file",
			Usage:        "dnsmasq DHCP lease file",
			EnvVars:      []string{"LANWATCH_LEASE_FILE"},
			DefaultValue: "/var/lib/misc/dnsmasq.leases",
			AssignTo:     &leaseFile,
		},
		&cli.StringFlag{
			Name:         "monitor-host",
			Usage:        "Host running the traffic monitor",
			EnvVars:      []string{"LANWATCH_MONITOR_HOST"},
			DefaultValue: "localhost",
			AssignTo:     &monitorHost,
		},
		&cli.StringFlag{
			Name:         "links",
			Usage:        "Monitored links as name=interface:port, comma-separated",
			EnvVars:      []string{"LANWATCH_LINKS"},
			DefaultValue: "lan1=enp3s0:5554,lan2=enp4s0:20000,wan1=enp1s0:5555,wan2=enp2s0:40000",
			AssignTo:     &links,
		},
		&cli.IntFlag{
			Name:         "poll-interval",
			Usage:        "Polling period in seconds",
			EnvVars:      []string{"LANWATCH_POLL_INTERVAL"},
			DefaultValue: 30,
			AssignTo:     &pollInterval,
		},
		&cli.IntFlag{
			Name:         "top-n",
			Usage:        "Devices per snapshot",
			EnvVars:      []string{"LANWATCH_TOP_N"},
			DefaultValue: 50,
			AssignTo:     &topN,
		},
		&cli.IntFlag{
			Name:         "fetch-attempts",
			Usage:        "Attempts per monitor page",
			EnvVars:      []string{"LANWATCH_FETCH_ATTEMPTS"},
			DefaultValue: 5,
			AssignTo:     &fetchAttempts,
		},
		&cli.IntFlag{
			Name:         "fetch-delay",
			Usage:        "Seconds between fetch attempts",
			EnvVars:      []string{"LANWATCH_FETCH_DELAY"},
			DefaultValue: 2,
			AssignTo:     &fetchDelay,
		},
		&cli.IntFlag{
			Name:         "fetch-timeout",
			Usage:        "Per-request timeout in seconds",
			EnvVars:      []string{"LANWATCH_FETCH_TIMEOUT"},
			DefaultValue: 10,
			AssignTo:     &fetchTimeout,
		},
		&cli.StringFlag{
			Name:     "mqtt-broker",
			Usage:    "MQTT broker URL for snapshot publishing (disabled when empty)",
			EnvVars:  []string{"LANWATCH_MQTT_BROKER"},
			AssignTo: &mqttBroker,
		},
		&cli.StringFlag{
			Name:         "mqtt-topic",
			Usage:        "MQTT topic prefix",
			EnvVars:      []string{"LANWATCH_MQTT_TOPIC"},
			DefaultValue: "lanwatch",
			AssignTo:     &mqttTopic,
		},
		&cli.StringFlag{
			Name:         "mqtt-client-id",
			Usage:        "MQTT client ID",
			EnvVars:      []string{"LANWATCH_MQTT_CLIENT_ID"},
			DefaultValue: "lanwatch",
			AssignTo:     &mqttClientID,
		},
		&cli.StringFlag{
			Name:     "mqtt-username",
			Usage:    "MQTT username",
			EnvVars:  []string{"LANWATCH_MQTT_USERNAME"},
			AssignTo: &mqttUsername,
		},
		&cli.StringFlag{
			Name:     "mqtt-password",
			Usage:    "MQTT password",
			EnvVars:  []string{"LANWATCH_MQTT_PASSWORD"},
			AssignTo: &mqttPassword,
		},
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (debug, info, warn, error)",
			EnvVars:      []string{"LANWATCH_LOG_LEVEL"},
			DefaultValue: "info",
			AssignTo:     &logLevel,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			EnvVars:      []string{"LANWATCH_LOG_FORMAT"},
			DefaultValue: "console",
			AssignTo:     &logFormat,
		},
	}
}

// Load assembles the configuration from the parsed flags
func Load() (*Config, error) {
	parsed, err := model.ParseLinks(links)
	if err != nil {
		return nil, fmt.Errorf("parsing links: %w", err)
	}

	cfg := &Config{
		DataDir:      dataDir,
		ListenAddr:   listenAddr,
		LeaseFile:    leaseFile,
		MonitorHost:  monitorHost,
		Links:        parsed,
		PollInterval: time.Duration(pollInterval) * time.Second,
		TopN:         topN,
		Fetch: FetchConfig{
			Attempts: fetchAttempts,
			Delay:    time.Duration(fetchDelay) * time.Second,
			Timeout:  time.Duration(fetchTimeout) * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:   mqttBroker,
			Topic:    mqttTopic,
			ClientID: mqttClientID,
			Username: mqttUsername,
			Password: mqttPassword,
		},
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the flag parser cannot
func (c *Config) Validate() error {
	if len(c.Links) == 0 {
		return fmt.Errorf("at least one link is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top-n must be positive")
	}
	if c.Fetch.Attempts <= 0 {
		return fmt.Errorf("fetch attempts must be positive")
	}
	if c.Fetch.Delay < 0 {
		return fmt.Errorf("fetch delay cannot be negative")
	}
	return nil
}

// IsMQTTEnabled checks if snapshot publishing is configured
func (c *Config) IsMQTTEnabled() bool {
	return c.MQTT.Broker != ""
}

// ServerURL is the default base URL the client commands talk to. Client
// flags are built before parsing, so it falls back to the environment.
func ServerURL() string {
	addr := listenAddr
	if addr == "" {
		addr = os.Getenv("LANWATCH_LISTEN_ADDR")
	}
	return ServerURLFor(addr)
}

// ServerURLFor maps a listen address to a local URL, keeping only the port
func ServerURLFor(addr string) string {
	port := "8080"
	if addr != "" {
		if _, p, err := net.SplitHostPort(addr); err == nil && p != "" {
			port = p
		}
	}
	return "http://localhost:" + port
}

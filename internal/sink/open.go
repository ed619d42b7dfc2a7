package sink

import (
	"github.com/martinsuchenak/lanwatch/internal/config"
	"github.com/martinsuchenak/lanwatch/internal/log"
)

// Open builds the configured sinks. The file sink is always present and is
// also returned on its own for reading snapshots back.
func Open(cfg *config.Config) (Multi, *FileSink, error) {
	files, err := NewFileSink(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	sinks := Multi{files}
	log.Info("Snapshot files enabled", "dir", cfg.DataDir)

	if cfg.IsMQTTEnabled() {
		m, err := NewMQTTSink(MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
		})
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, m)
		log.Info("Snapshot publishing enabled", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
	}

	return sinks, files, nil
}

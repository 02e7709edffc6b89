// v0
// internal/config/config_test.go
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeProps(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venting.properties")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SIM_PROPERTIES", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("MQTT_TOPIC", "")
	cfg, err := Load("", discard())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ZoneID != "zone-1" || cfg.Step != 10*time.Minute || cfg.WarmupSteps != 6 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 || cfg.MQTTBroker != "" {
		t.Fatalf("transports should be disabled by default: %+v", cfg)
	}
	if cfg.MQTTTopic != "nrg-champ/zone-1/venting" {
		t.Fatalf("mqtt topic=%q", cfg.MQTTTopic)
	}
}

func TestLoadPropertiesAndEnv(t *testing.T) {
	path := writeProps(t, "# venting sim\n"+
		"zoneId=zone-A\n"+
		"listen_addr = :9090\n"+
		"step=15m\n"+
		"pace=0s\n"+
		"steps=96\n"+
		"warmup_steps=2\n"+
		"initial_rh=70\n"+
		"// legacy comment\n"+
		"beta=0.001\n"+
		"garbage line\n")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("MQTT_BROKER", "tcp://mosquitto:1883")
	t.Setenv("MQTT_TOPIC", "")
	t.Setenv("TOPIC_PARTITIONS", "3")
	t.Setenv("TOPIC_REPLICATION", "zero")

	cfg, err := Load(path, discard())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ZoneID != "zone-A" || cfg.ListenAddr != ":9090" {
		t.Fatalf("zone/addr mismatch: %+v", cfg)
	}
	if cfg.Step != 15*time.Minute || cfg.Pace != 0 || cfg.Steps != 96 || cfg.WarmupSteps != 2 {
		t.Fatalf("timing mismatch: %+v", cfg)
	}
	if cfg.InitialRH != 70 || cfg.Beta != 0.001 || cfg.Alpha != 0.00005 {
		t.Fatalf("model mismatch: %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if cfg.TopicPartitions != 3 || cfg.TopicReplication != 1 {
		t.Fatalf("topic sizing partitions=%d replication=%d", cfg.TopicPartitions, cfg.TopicReplication)
	}
	if cfg.MQTTTopic != "nrg-champ/zone-A/venting" {
		t.Fatalf("mqtt topic=%q", cfg.MQTTTopic)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	path := writeProps(t, "initial_rh=humid\nsteps=-3\npace=soon\n")
	cfg, err := Load(path, discard())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.InitialRH != 45 || cfg.Steps != 0 || cfg.Pace != time.Second {
		t.Fatalf("expected defaults for invalid values, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.properties"), discard()); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := writeProps(t, "step=0s\n")
	if _, err := Load(path, discard()); err == nil {
		t.Fatalf("expected error for zero step")
	}
}

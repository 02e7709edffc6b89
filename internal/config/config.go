// v0
// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// SimConfig is the runtime configuration of the venting simulation.
type SimConfig struct {
	ZoneID     string
	ListenAddr string

	// Simulation
	Step        time.Duration // simulated timestep
	Pace        time.Duration // wall time per timestep
	Steps       int           // 0 = until stopped
	WarmupSteps int

	// Zone moisture model
	InitialRH        float64
	OutdoorRHMean    float64
	OutdoorRHAmp     float64
	MoistureGainPctH float64
	Alpha            float64
	Beta             float64

	// Kafka (disabled when no brokers)
	KafkaBrokers       []string
	TopicVentingPrefix string
	TopicPartitions    int
	TopicReplication   int

	// MQTT (disabled when no broker)
	MQTTBroker string
	MQTTTopic  string

	LogPath string
}

func defaults() SimConfig {
	return SimConfig{
		ZoneID:             "zone-1",
		ListenAddr:         ":8080",
		Step:               10 * time.Minute,
		Pace:               time.Second,
		WarmupSteps:        6,
		InitialRH:          45,
		OutdoorRHMean:      55,
		OutdoorRHAmp:       20,
		MoistureGainPctH:   4,
		Alpha:              0.00005,
		Beta:               0.0008,
		TopicVentingPrefix: "zone.venting",
		TopicPartitions:    1,
		TopicReplication:   1,
		LogPath:            "venting_sim.log",
	}
}

func loadProps(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load properties file: %w", err)
	}
	m := map[string]string{}
	for _, ln := range strings.Split(string(b), "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") || strings.HasPrefix(ln, "//") {
			continue
		}
		k, v, ok := strings.Cut(ln, "=")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m, nil
}

func getf(m map[string]string, key string, def float64, log *slog.Logger) float64 {
	if v, ok := m[key]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn("invalid float in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func geti(m map[string]string, key string, def int, log *slog.Logger) int {
	if v, ok := m[key]; ok {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
		log.Warn("invalid integer in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func getd(m map[string]string, key string, def time.Duration, log *slog.Logger) time.Duration {
	if v, ok := m[key]; ok {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
		log.Warn("invalid duration in properties, using default", "key", key, "val", v, "default", def)
	}
	return def
}

func gets(m map[string]string, key, def string) string {
	if v := m[key]; v != "" {
		return v
	}
	return def
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int, log *slog.Logger) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.Warn("invalid integer in env, using default", "key", k, "val", v, "default", d)
		return d
	}
	return i
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Load reads the properties file at propsPath (SIM_PROPERTIES when empty;
// defaults only when both are empty) and overlays the environment.
func Load(propsPath string, log *slog.Logger) (SimConfig, error) {
	if propsPath == "" {
		propsPath = os.Getenv("SIM_PROPERTIES")
	}
	props := map[string]string{}
	if propsPath != "" {
		p, err := loadProps(propsPath)
		if err != nil {
			return SimConfig{}, err
		}
		props = p
	}

	d := defaults()
	cfg := SimConfig{
		ZoneID:     gets(props, "zoneId", d.ZoneID),
		ListenAddr: gets(props, "listen_addr", d.ListenAddr),

		Step:        getd(props, "step", d.Step, log),
		Pace:        getd(props, "pace", d.Pace, log),
		Steps:       geti(props, "steps", d.Steps, log),
		WarmupSteps: geti(props, "warmup_steps", d.WarmupSteps, log),

		InitialRH:        getf(props, "initial_rh", d.InitialRH, log),
		OutdoorRHMean:    getf(props, "outdoor_rh_mean", d.OutdoorRHMean, log),
		OutdoorRHAmp:     getf(props, "outdoor_rh_amplitude", d.OutdoorRHAmp, log),
		MoistureGainPctH: getf(props, "moisture_gain_pct_per_hour", d.MoistureGainPctH, log),
		Alpha:            getf(props, "alpha", d.Alpha, log),
		Beta:             getf(props, "beta", d.Beta, log),

		KafkaBrokers:       splitCSV(os.Getenv("KAFKA_BROKERS")),
		TopicVentingPrefix: getenv("TOPIC_VENTING_PREFIX", d.TopicVentingPrefix),
		TopicPartitions:    getenvInt("TOPIC_PARTITIONS", d.TopicPartitions, log),
		TopicReplication:   getenvInt("TOPIC_REPLICATION", d.TopicReplication, log),
		MQTTBroker:         os.Getenv("MQTT_BROKER"),
		LogPath:            getenv("LOG_PATH", d.LogPath),
	}
	cfg.MQTTTopic = getenv("MQTT_TOPIC", "nrg-champ/"+cfg.ZoneID+"/venting")

	if cfg.Step <= 0 {
		return SimConfig{}, fmt.Errorf("step must be > 0, got %s", cfg.Step)
	}
	return cfg, nil
}

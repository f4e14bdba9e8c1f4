package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the complaint service.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Telemetry TelemetryConfig
	Kafka     KafkaConfig
	Refdata   RefdataConfig
	Webhook   WebhookConfig
	Retention RetentionConfig
}

type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty means the in-memory
	// store is used instead.
	URL string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
	// SampleRatio is the trace sampling ratio; values outside (0,1) mean
	// sample everything.
	SampleRatio float64
}

type KafkaConfig struct {
	// Brokers is a comma-separated broker list. Empty disables eventing.
	Brokers []string
	Topic   string
}

type RefdataConfig struct {
	// SeedPath points to a YAML seed file for the reference catalogs.
	// Empty means the built-in defaults.
	SeedPath string
}

type WebhookConfig struct {
	// URL receives complaint lifecycle notifications. Empty disables the
	// webhook channel; the log channel is always registered.
	URL    string
	Secret string
}

type RetentionConfig struct {
	// Days is how long resolved complaints stay in the hot store.
	Days int
	// ArchiveDir is where purged complaints are archived as JSONL. Empty
	// means the default under the user home directory.
	ArchiveDir string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("SWAPDESK_PORT", 8080),
		Version: envStr("SWAPDESK_VERSION", "0.2.0"),
		Database: DatabaseConfig{
			URL: envStr("DATABASE_URL", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", true),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "swapdesk"),
			SampleRatio:  envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS", nil),
			Topic:   envStr("KAFKA_EVENTS_TOPIC", "swapdesk.complaints"),
		},
		Refdata: RefdataConfig{
			SeedPath: envStr("SWAPDESK_SEED_PATH", ""),
		},
		Webhook: WebhookConfig{
			URL:    envStr("SWAPDESK_WEBHOOK_URL", ""),
			Secret: envStr("SWAPDESK_WEBHOOK_SECRET", ""),
		},
		Retention: RetentionConfig{
			Days:       envInt("SWAPDESK_RETENTION_DAYS", 90),
			ArchiveDir: envStr("SWAPDESK_ARCHIVE_DIR", ""),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

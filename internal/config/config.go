package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all worker settings, populated from environment variables.
type Config struct {
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaBundleTopic  string
	KafkaGroupID      string
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Synchronous generation over HTTP.
	GenerateAPIEnabled bool
	GenerateTimeout    time.Duration
	MaxRequestBytes    int64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	generateTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GENERATE_TIMEOUT", "30s"))
	if err != nil || generateTimeout <= 0 {
		return nil, errors.New("invalid GENERATE_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	maxRequestBytes, err := parseMaxRequestBytes()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic:  sharedcfg.EnvOrDefault("KAFKA_REQUEST_TOPIC", "wfs-generation-requests"),
		KafkaBundleTopic:   sharedcfg.EnvOrDefault("KAFKA_BUNDLE_TOPIC", "wfs-input-bundles"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "wfs-input-generator"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GenerateAPIEnabled: os.Getenv("GENERATE_API_ENABLED") != "false",
		GenerateTimeout:    generateTimeout,
		MaxRequestBytes:    maxRequestBytes,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaRequestTopic == "" {
		return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
	}
	if cfg.KafkaBundleTopic == "" {
		return nil, errors.New("KAFKA_BUNDLE_TOPIC is required")
	}
	if cfg.KafkaRequestTopic == cfg.KafkaBundleTopic {
		return nil, errors.New("KAFKA_REQUEST_TOPIC and KAFKA_BUNDLE_TOPIC must differ")
	}

	return cfg, nil
}

func parseMaxRequestBytes() (int64, error) {
	s := os.Getenv("MAX_REQUEST_BYTES")
	if s == "" {
		return 8 << 20, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid MAX_REQUEST_BYTES")
	}
	return n, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Input files.
	EnrolPath   string `envconfig:"ENROL_PATH" required:"true"`
	DemoPath    string `envconfig:"DEMO_PATH" required:"true"`
	BioPath     string `envconfig:"BIO_PATH" required:"true"`
	PincodePath string `envconfig:"PINCODE_PATH" required:"true"`

	// Outputs. The CSV artifacts are always written; the other sinks are
	// enabled by setting their destination.
	OutputDir  string `envconfig:"OUTPUT_DIR" default:"data"`
	SQLitePath string `envconfig:"SQLITE_PATH"`
	XLSXPath   string `envconfig:"XLSX_PATH"`

	// Analytics parameters.
	WeekAnchor           string  `envconfig:"WEEK_ANCHOR" default:"Tuesday"`
	AnomalySeed          int64   `envconfig:"ANOMALY_SEED" default:"42"`
	AnomalyContamination float64 `envconfig:"ANOMALY_CONTAMINATION" default:"0.1"`
	Workers              int     `envconfig:"WORKERS"` // 0 means GOMAXPROCS

	// Kafka district-week feed.
	KafkaEnabled   bool     `envconfig:"KAFKA_ENABLED"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"ews-district-weeks"`

	// Admin HTTP server.
	AdminEnabled bool   `envconfig:"ADMIN_ENABLED"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Anchor(); err != nil {
		return err
	}
	if c.AnomalyContamination <= 0 || c.AnomalyContamination > 0.5 {
		return fmt.Errorf("ANOMALY_CONTAMINATION must be in (0, 0.5], got %v", c.AnomalyContamination)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Anchor parses the configured week-anchor weekday.
func (c *Config) Anchor() (time.Weekday, error) {
	switch strings.ToLower(c.WeekAnchor) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid WEEK_ANCHOR %q", c.WeekAnchor)
	}
}

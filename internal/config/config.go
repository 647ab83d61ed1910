package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/evermore-app/evermore/internal/genai"
	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/imagestore"
)

var (
	logger = log.With().Str("component", "config").Logger()
)

const defaultAnalyticsRetentionDays = 90

type AnalyticsConfig struct {
	// RetentionDays before the nightly pruner deletes an event.
	RetentionDays uint `yaml:"retention_days"`
}

type Config struct {
	Port      uint              `yaml:"port"`
	GinMode   string            `yaml:"gin_mode"`
	DB        gormw.Config      `yaml:"db"`
	GenAI     genai.Config      `yaml:"genai"`
	Images    imagestore.Config `yaml:"images"`
	Analytics AnalyticsConfig   `yaml:"analytics"`
}

func LoadConfig(path string) *Config {
	cfg := &Config{}

	file, err := os.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Msgf("failed to open config file: %s", path)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to decode config file")
	}

	cfg.validate()

	return cfg
}

func (c *Config) validate() {
	if c.Port == 0 {
		logger.Fatal().Msg("Port is missing")
	}

	if c.GinMode == "" {
		logger.Fatal().Msg("GinMode is missing")
	}

	c.GenAI.Validate()

	if c.Analytics.RetentionDays == 0 {
		c.Analytics.RetentionDays = defaultAnalyticsRetentionDays
	}
}

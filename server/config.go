package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds server configuration
type Config struct {
	Port        string
	DatabaseURL string
	Mistral     struct {
		APIKey string
		Model  string
	}
}

// LoadConfig reads configuration from config.yaml and IDEAVAULT_* env vars.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("ideavault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Port = v.GetString("port")
	cfg.DatabaseURL = v.GetString("database_url")
	cfg.Mistral.APIKey = v.GetString("mistral.api_key")
	cfg.Mistral.Model = v.GetString("mistral.model")

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "postgres://localhost:5432/ideavault?sslmode=disable")
	v.SetDefault("mistral.model", "mistral-small-latest")
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if cfg.Port == "" {
		return fmt.Errorf("port is required")
	}
	// mistral.api_key stays optional: without it the brainstorm endpoint
	// answers 503 and everything else works.
	return nil
}

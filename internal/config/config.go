package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/yourorg/transitload/internal/pipeline"
)

// Config is the process configuration: the agencies to ingest plus ambient
// knobs. Store credentials stay in env vars (DB_USER and friends).
type Config struct {
	StoreDriver string `mapstructure:"store_driver"`
	WorkDir     string `mapstructure:"workdir"`
	StatusAddr  string `mapstructure:"status_addr"`
	LogLevel    string `mapstructure:"log_level"`

	Agencies []pipeline.TaskSpec `mapstructure:"agencies"`
}

// Load reads the config file (default ./transitload.yaml) with env-var
// overrides for the scalar keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("store_driver", "mysql")
	v.SetDefault("workdir", "downloads")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("transitload")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if len(cfg.Agencies) == 0 {
		return nil, errors.New("config: no agencies configured")
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr"`
	APIToken string `mapstructure:"api_token"`
	Mode     string `mapstructure:"mode"`
}

type StorageConfig struct {
	Spec string `mapstructure:"spec"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ValuationConfig struct {
	BackfillDays int    `mapstructure:"backfill_days"`
	Location     string `mapstructure:"location"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Valuation ValuationConfig `mapstructure:"valuation"`
}

// EnvPrefix prefixes every environment override, e.g. GOALFOLIO_STORAGE_SPEC
const EnvPrefix = "GOALFOLIO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.http_addr", ":8081")
	v.SetDefault("server.api_token", "dev-token")
	v.SetDefault("server.mode", "release")
	v.SetDefault("storage.spec", "file:data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("valuation.backfill_days", 30)
	v.SetDefault("valuation.location", "UTC")
}

// Load loads configuration from the given file path (e.g. "goalfolio.yaml").
// If path is empty, "goalfolio.yaml" is looked up in the working directory and
// a missing file is not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("goalfolio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. GOALFOLIO_SERVER_GRPC_ADDR=:9000
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if c.Valuation.BackfillDays < 0 {
		return errors.New("valuation.backfill_days cannot be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

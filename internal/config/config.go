package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the runtime configuration for the engine.
type Config struct {
	DatabasePath string `mapstructure:"database_path"`
	KVPath       string `mapstructure:"kv_path"`

	// DefaultCalorieTarget is applied when a user profile carries no target.
	DefaultCalorieTarget float64 `mapstructure:"default_calorie_target"`
}

// LoadConfig reads configuration from the given file (optional) plus
// environment variables, falling back to defaults.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database_path", "data/diet-engine.db")
	v.SetDefault("kv_path", "data/diet-engine-kv")
	v.SetDefault("default_calorie_target", 2000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	v.SetEnvPrefix("DIET_ENGINE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

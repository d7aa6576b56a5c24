// Package config is for app-wide settings unmarshalled from Viper:
// an optional motifscan.yaml in the working directory plus MOTIFSCAN_*
// environment variables. Command-line flags override both.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"motifscan/internal/logger"
)

// Config holds the defaults the CLI starts from.
type Config struct {
	// worker-goroutine count per process; 0 means NumCPU
	Threads int `mapstructure:"threads"`

	// coordinator listen address
	Listen string `mapstructure:"listen"`

	// sort results by pattern before rendering
	Sort bool `mapstructure:"sort"`
}

// New returns the configuration from motifscan.yaml and the
// environment, falling back to built-in defaults. A missing config
// file is not an error.
func New() Config {
	v := viper.New()
	v.SetConfigName("motifscan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("MOTIFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("threads", 0)
	v.SetDefault("listen", ":9077")
	v.SetDefault("sort", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("config: %v", err)
		}
	} else {
		logger.Debug("config: loaded %s", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		logger.Warn("config: %v", err)
	}
	return c
}

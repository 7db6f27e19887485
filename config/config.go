// Package config loads query engine settings from an optional config file
// and prefixed environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/magpierre/jasondata/datasource"
	"github.com/magpierre/jasondata/internal/logger"
)

// DefaultPrefix is the environment variable prefix used by LoadDefault.
const DefaultPrefix = "JASONDATA"

// Config holds engine settings.
//
// Each key is read from PREFIX_KEY with dots replaced by underscores:
// case_sensitive <- JASONDATA_CASE_SENSITIVE, log.level <- JASONDATA_LOG_LEVEL.
type Config struct {
	CaseSensitive bool          `mapstructure:"case_sensitive"`
	NotEqual      string        `mapstructure:"not_equal"` // strict, startsWith
	Log           logger.Config `mapstructure:"log"`
}

// logWriter receives output of loggers built by Options.
var logWriter io.Writer = os.Stderr

// keys lists every setting so that environment variables are picked up
// even without a config file.
var keys = map[string]any{
	"case_sensitive": false,
	"not_equal":      "strict",
	"log.level":      "INFO",
	"log.format":     "text",
	"log.add_source": false,
}

// Load reads configFile (if non-empty) and then environment variables
// starting with prefix. Environment values win over the file.
func Load(prefix, configFile string) (Config, error) {
	v := viper.New()
	for k, def := range keys {
		v.SetDefault(k, def)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads settings from JASONDATA_* environment variables only.
func LoadDefault() (Config, error) {
	return Load(DefaultPrefix, "")
}

// Options converts the settings into DataSource options.
func (c Config) Options() (datasource.Options, error) {
	mode, err := datasource.ParseNotEqualMode(c.NotEqual)
	if err != nil {
		return datasource.Options{}, err
	}
	return datasource.Options{
		CaseSensitive: c.CaseSensitive,
		NotEqual:      mode,
		Logger:        logger.New(c.Log, logWriter),
	}, nil
}

// InitLogger installs the configured logger as the package-wide default.
func (c Config) InitLogger() {
	logger.Init(c.Log)
}

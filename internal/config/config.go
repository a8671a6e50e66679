package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server        Server        `mapstructure:"server"`
	Database      Database      `mapstructure:"database"`
	Logger        Logger        `mapstructure:"logger"`
	Quotes        Quotes        `mapstructure:"quotes"`
	Recalculation Recalculation `mapstructure:"recalculation"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release or test
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Quotes holds the configuration for the market quote source.
// An empty BaseURL disables price refreshing.
type Quotes struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	Timeout        int     `mapstructure:"timeout"` // seconds
}

// Enabled reports whether a quote source is configured.
func (q Quotes) Enabled() bool {
	return strings.TrimSpace(q.BaseURL) != ""
}

// Recalculation holds the configuration for the periodic profit/loss job.
type Recalculation struct {
	Interval      int  `mapstructure:"interval"` // seconds
	RefreshQuotes bool `mapstructure:"refresh_quotes"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and the environment still apply.
func LoadConfig(path string) (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	// PAIRS_DATABASE_DSN overrides database.dsn, and so on.
	v.SetEnvPrefix("pairs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, err
		}
	}

	err := v.Unmarshal(&config)
	return config, err
}

// Every key gets a default so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.dsn", "file:pairs.db?_foreign_keys=on")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("quotes.base_url", "")
	v.SetDefault("quotes.api_key", "")
	v.SetDefault("quotes.rate_limit", 5)      // requests per second
	v.SetDefault("quotes.rate_limit_burst", 2) // burst size
	v.SetDefault("quotes.timeout", 10)
	v.SetDefault("recalculation.interval", 300)
	v.SetDefault("recalculation.refresh_quotes", false)
}

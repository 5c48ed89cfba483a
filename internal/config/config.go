package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicanorteespecialidades/clinica-norte-especialidades-sub000/internal/gateway"

	"github.com/spf13/viper"
)

// Config holds all process settings. It is loaded once at startup and never reloaded.
type Config struct {
	Addr               string        `mapstructure:"ADDR"`
	Environment        string        `mapstructure:"APP_ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	GoogleScriptURL    string        `mapstructure:"GOOGLE_SCRIPT_URL"`
	GatewayTimeout     time.Duration `mapstructure:"GATEWAY_TIMEOUT"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var keys = []string{
	"ADDR",
	"APP_ENV",
	"LOG_LEVEL",
	"GOOGLE_SCRIPT_URL",
	"GATEWAY_TIMEOUT",
	"REDIS_ADDR",
	"RATE_LIMIT_PER_MINUTE",
	"JWT_SECRET",
	"CORS_ALLOWED_ORIGINS",
}

// Load reads config.yaml (if any) and the environment. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GOOGLE_SCRIPT_URL", "")
	v.SetDefault("GATEWAY_TIMEOUT", "15s")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 5)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Gateway returns the gateway's immutable view of the configuration
func (c *Config) Gateway() gateway.Config {
	return gateway.NewConfig(c.GoogleScriptURL, c.Environment)
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Development reports whether the process runs in a development environment
func (c *Config) Development() bool {
	return c.Environment == "development"
}

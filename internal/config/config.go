package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Auth   AuthConfig   `yaml:"auth" mapstructure:"auth"`
	Domain DomainConfig `yaml:"domain" mapstructure:"domain"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHrs int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
}

// DomainConfig holds timeline domain constants. The defaults are domain
// invariants observed in production data; they are configurable for tests and
// for deployments with a different current-affairs cutoff.
type DomainConfig struct {
	ModernEraYear    int     `yaml:"modern_era_year" mapstructure:"modern_era_year"`
	SpatialRadiusDeg float64 `yaml:"spatial_radius_deg" mapstructure:"spatial_radius_deg"`
	DefaultLimit     int     `yaml:"default_limit" mapstructure:"default_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TIMELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "timeline.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("auth.token_ttl_hours", 72)
	v.SetDefault("domain.modern_era_year", 1947)
	v.SetDefault("domain.spatial_radius_deg", 3.0)
	v.SetDefault("domain.default_limit", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

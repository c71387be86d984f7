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
	Tenant  string        `yaml:"tenant" mapstructure:"tenant"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Augment AugmentConfig `yaml:"augment" mapstructure:"augment"`
	Train   TrainConfig   `yaml:"train" mapstructure:"train"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the user database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PathsConfig configures the tenant-scoped artifact roots.
type PathsConfig struct {
	DataRoot  string `yaml:"data_root" mapstructure:"data_root"`
	ModelRoot string `yaml:"model_root" mapstructure:"model_root"`
}

// ExtractConfig configures PDF quote extraction.
type ExtractConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// AugmentConfig configures synthetic quote generation.
type AugmentConfig struct {
	Count          int    `yaml:"count" mapstructure:"count"`
	BasePricesXLSX string `yaml:"base_prices_xlsx" mapstructure:"base_prices_xlsx"`
}

// TrainConfig configures hyperparameter search and model training.
type TrainConfig struct {
	Trials   int   `yaml:"trials" mapstructure:"trials"`
	Folds    int   `yaml:"folds" mapstructure:"folds"`
	FoldSeed int64 `yaml:"fold_seed" mapstructure:"fold_seed"`
}

// ServerConfig configures the HTTP backend.
type ServerConfig struct {
	Port          int     `yaml:"port" mapstructure:"port"`
	AuthRateLimit float64 `yaml:"auth_rate_limit" mapstructure:"auth_rate_limit"`
	AuthRateBurst int     `yaml:"auth_rate_burst" mapstructure:"auth_rate_burst"`
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours" mapstructure:"token_expire_hours"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml, environment variables
// (PRICING_ prefix) and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("tenant", "company_alpha")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "pricing.db")
	v.SetDefault("paths.data_root", "data")
	v.SetDefault("paths.model_root", "models")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("extract.max_concurrent", 4)
	v.SetDefault("augment.count", 1500)
	v.SetDefault("train.trials", 50)
	v.SetDefault("train.folds", 5)
	v.SetDefault("train.fold_seed", 42)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.auth_rate_limit", 1.0)
	v.SetDefault("server.auth_rate_burst", 5)
	v.SetDefault("auth.token_expire_hours", 24)
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

// InitLogger builds a zap logger from LogConfig and installs it globally.
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

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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	SerpAPI    SerpAPIConfig    `yaml:"serpapi" mapstructure:"serpapi"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Convention ConventionConfig `yaml:"convention" mapstructure:"convention"`
	Validate   ValidateConfig   `yaml:"validate" mapstructure:"validate"`
	Workbook   WorkbookConfig   `yaml:"workbook" mapstructure:"workbook"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// SerpAPIConfig holds SerpAPI credentials and client settings.
type SerpAPIConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig configures the search phase.
type SearchConfig struct {
	Pages    int      `yaml:"pages" mapstructure:"pages"`
	PageSize int      `yaml:"page_size" mapstructure:"page_size"`
	Roles    []string `yaml:"roles" mapstructure:"roles"`
}

// ConventionConfig holds the default naming convention.
type ConventionConfig struct {
	Separator    string `yaml:"separator" mapstructure:"separator"`
	DomainSuffix string `yaml:"domain_suffix" mapstructure:"domain_suffix"`
}

// ValidateConfig configures email validation.
type ValidateConfig struct {
	MXTimeoutSecs int `yaml:"mx_timeout_secs" mapstructure:"mx_timeout_secs"`
	Concurrency   int `yaml:"concurrency" mapstructure:"concurrency"`
}

// WorkbookConfig configures spreadsheet output.
type WorkbookConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("EMAILSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "emailscout.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("serpapi.key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.rate_limit", 2.0)
	v.SetDefault("search.pages", 3)
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.roles", []string{"HR", "Recruiter", "Talent", "Hiring", "Manager"})
	v.SetDefault("convention.separator", ".")
	v.SetDefault("convention.domain_suffix", "")
	v.SetDefault("validate.mx_timeout_secs", 4)
	v.SetDefault("validate.concurrency", 8)
	v.SetDefault("workbook.path", "companies.xlsx")
	v.SetDefault("server.port", 8080)
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

package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override, e.g. STRESSFREE_SERVER_ADDR.
const EnvPrefix = "STRESSFREE"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig selects the persistence backend: "memory", "sqlite", "postgres" or "mysql".
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	// URL is the connection string for postgres and mysql.
	URL           string `mapstructure:"url"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	// SnapshotPath is a JSON export imported once when the sqlite file is first created.
	SnapshotPath string `mapstructure:"snapshot_path"`
}

type AssessmentConfig struct {
	// QuestionnairePath optionally points at a YAML questionnaire registered next to PHQ-9.
	QuestionnairePath string `mapstructure:"questionnaire_path"`
	// RiskThreshold overrides the per-questionnaire threshold when > 0.
	RiskThreshold int `mapstructure:"risk_threshold"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type CORSConfig struct {
	AllowOrigin string `mapstructure:"allow_origin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "stressfree.db")
	v.SetDefault("store.url", "")
	v.SetDefault("store.migrations_dir", "")
	v.SetDefault("store.snapshot_path", "")

	v.SetDefault("assessment.questionnaire_path", "")
	v.SetDefault("assessment.risk_threshold", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.directory", "")
	v.SetDefault("logging.max_size", 10) // MB
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7) // days
	v.SetDefault("logging.compress", true)

	v.SetDefault("cors.allow_origin", "")
}

// Loader owns the viper instance so the file can be watched after the first read.
type Loader struct {
	v *viper.Viper
}

// NewLoader searches configDir for config.yaml. A missing file is not an error;
// defaults and environment variables are used instead.
func NewLoader(configDir string) *Loader {
	v := viper.New()
	setDefaults(v)
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// File reports the config file in use, or "" when running on defaults.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the file on change and hands every valid result to apply.
// Nothing is watched when no config file was found.
func (l *Loader) Watch(log *zap.Logger, apply func(*Config)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("configuration file changed, reloading", zap.String("file", e.Name))
		cfg, err := l.decode()
		if err != nil {
			log.Error("error reloading configuration", zap.Error(err))
			return
		}
		apply(cfg)
	})
	l.v.WatchConfig()
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path required for sqlite driver")
		}
	case "postgres", "mysql":
		if c.Store.URL == "" {
			return fmt.Errorf("store.url required for %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Assessment.RiskThreshold < 0 {
		return fmt.Errorf("assessment.risk_threshold must not be negative")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendCSV      = "csv"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendSqlite   = "sqlite"
)

const envPrefix = "CAFEDESK_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Secret       string `yaml:"secret"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// StorageConfig selects the record store backend. Dir is used by csv,
// Path by bolt, DSN by postgres and sqlite.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
	Debug   bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`

	// Rotation settings handed to lumberjack. MaxSize is in megabytes.
	MaxSize    int  `yaml:"max_size"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"`
	Compress   bool `yaml:"compress"`
}

// MailConfig configures the notifier. Notify receives low stock alerts.
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Notify   string `yaml:"notify"`
	Workers  int    `yaml:"workers"`
}

// JobsConfig holds cron specs of the background jobs.
type JobsConfig struct {
	TokenSweep string `yaml:"token_sweep"`
	Rollup     string `yaml:"rollup"`
}

// AppConfig application configuration
type AppConfig struct {
	System  SysConfig     `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LogConfig     `yaml:"logger"`
	Mail    MailConfig    `yaml:"mail"`
	Jobs    JobsConfig    `yaml:"jobs"`
	// SeedDemo loads demo accounts, menu, tables and stock into an empty store.
	SeedDemo bool `yaml:"seed_demo"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "cafedesk",
			Location: "Asia/Ho_Chi_Minh",
			Workdir:  "./var/cafedesk",
		},
		Web: WebConfig{
			Host:   "0.0.0.0",
			Port:   8000,
			Secret: "cafedesk-session-secret-change-me",
		},
		Storage: StorageConfig{
			Backend: BackendCSV,
		},
		Logger: LogConfig{
			Mode:       "development",
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		},
		Mail: MailConfig{
			Port:    587,
			From:    "noreply@cafedesk.local",
			Workers: 4,
		},
		Jobs: JobsConfig{
			TokenSweep: "@every 10m",
			Rollup:     "@hourly",
		},
		SeedDemo: true,
	}
}

// GetDataDir returns the csv directory, defaulting under the workdir.
func (c *AppConfig) GetDataDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(c.System.Workdir, "data")
}

// GetBoltPath returns the bbolt file path, defaulting under the workdir.
func (c *AppConfig) GetBoltPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.System.Workdir, "data", "cafedesk.db")
}

// GetLogDir returns the log directory under the workdir.
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// Validate checks the configuration for obviously broken values.
func (c *AppConfig) Validate() error {
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	if strings.TrimSpace(c.Web.Secret) == "" {
		return fmt.Errorf("web.secret is required")
	}
	switch c.Storage.Backend {
	case BackendCSV, BackendBolt:
	case BackendPostgres, BackendSqlite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for backend %s", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Logger.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("unknown logger.mode %q", c.Logger.Mode)
	}
	if c.Logger.FileEnable {
		if c.Logger.Filename == "" {
			return fmt.Errorf("logger.filename is required when file_enable is set")
		}
		if c.Logger.MaxSize <= 0 {
			return fmt.Errorf("logger.max_size must be positive")
		}
		if c.Logger.MaxBackups < 0 || c.Logger.MaxAge < 0 {
			return fmt.Errorf("logger.max_backups and logger.max_age must not be negative")
		}
	}
	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return fmt.Errorf("mail.host is required when mail is enabled")
		}
		if c.Mail.Workers <= 0 {
			return fmt.Errorf("mail.workers must be positive")
		}
	}
	return nil
}

// LoadConfig reads the yaml file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *AppConfig) applyEnv(lookup lookupFunc) error {
	str := func(key string, target *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*target = v
		}
	}
	num := func(key string, target *int) error {
		if v, ok := lookup(envPrefix + key); ok {
			n, err := cast.ToIntE(v)
			if err != nil {
				return errors.Wrapf(err, "env %s%s", envPrefix, key)
			}
			*target = n
		}
		return nil
	}
	flag := func(key string, target *bool) error {
		if v, ok := lookup(envPrefix + key); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return errors.Wrapf(err, "env %s%s", envPrefix, key)
			}
			*target = b
		}
		return nil
	}

	str("SYSTEM_LOCATION", &c.System.Location)
	str("SYSTEM_WORKDIR", &c.System.Workdir)
	str("WEB_HOST", &c.Web.Host)
	str("WEB_SECRET", &c.Web.Secret)
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("STORAGE_PATH", &c.Storage.Path)
	str("STORAGE_DSN", &c.Storage.DSN)
	str("LOGGER_MODE", &c.Logger.Mode)
	str("LOGGER_FILENAME", &c.Logger.Filename)
	str("MAIL_HOST", &c.Mail.Host)
	str("MAIL_USERNAME", &c.Mail.Username)
	str("MAIL_PASSWORD", &c.Mail.Password)
	str("MAIL_FROM", &c.Mail.From)
	str("MAIL_NOTIFY", &c.Mail.Notify)

	for key, target := range map[string]*int{
		"WEB_PORT":           &c.Web.Port,
		"MAIL_PORT":          &c.Mail.Port,
		"MAIL_WORKERS":       &c.Mail.Workers,
		"LOGGER_MAX_SIZE":    &c.Logger.MaxSize,
		"LOGGER_MAX_BACKUPS": &c.Logger.MaxBackups,
		"LOGGER_MAX_AGE":     &c.Logger.MaxAge,
	} {
		if err := num(key, target); err != nil {
			return err
		}
	}
	for key, target := range map[string]*bool{
		"SYSTEM_DEBUG":       &c.System.Debug,
		"WEB_SECURE_COOKIE":  &c.Web.SecureCookie,
		"STORAGE_DEBUG":      &c.Storage.Debug,
		"LOGGER_FILE_ENABLE": &c.Logger.FileEnable,
		"LOGGER_COMPRESS":    &c.Logger.Compress,
		"MAIL_ENABLED":       &c.Mail.Enabled,
		"SEED_DEMO":          &c.SeedDemo,
	} {
		if err := flag(key, target); err != nil {
			return err
		}
	}
	return nil
}

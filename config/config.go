// Package config loads ABAssist settings from defaults, an optional YAML
// file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arkantrust/abassist/reversal"
	"github.com/arkantrust/abassist/store"
	"github.com/arkantrust/abassist/transactions"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. It is only fit
// for development.
const DefaultSessionSecret = "dev-secret-key-change-in-production"

// Config holds every setting of the portal.
type Config struct {
	Port          string `yaml:"port"`
	TemplatesDir  string `yaml:"templates_dir"`
	TemplateExt   string `yaml:"template_ext"`
	LogBackend    string `yaml:"log_backend"`
	DBPath        string `yaml:"db_path"`
	LogLevel      string `yaml:"log_level"`
	SessionSecret string `yaml:"session_secret"`

	TxnStore   TxnStore   `yaml:"txn_store"`
	Dispatcher Dispatcher `yaml:"dispatcher"`
}

// TxnStore holds the connection parameters of the external transaction
// store. An empty Driver disables the reversal lookups.
type TxnStore struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	ServiceName string `yaml:"service_name"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// Dispatcher selects and locates the reversal management interface.
type Dispatcher struct {
	Kind  string `yaml:"kind"`
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	MBean string `yaml:"mbean"`
}

// Capabilities are the optional integrations resolved once at startup.
type Capabilities struct {
	// ExternalStore is true when a transaction store driver is configured.
	ExternalStore bool
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:          "5000",
		TemplatesDir:  "./xml_templates/",
		TemplateExt:   ".xml",
		LogBackend:    "bolt",
		LogLevel:      "info",
		SessionSecret: DefaultSessionSecret,
		TxnStore: TxnStore{
			Host:        "localhost",
			Port:        1521,
			ServiceName: "ORCLPDB1",
		},
		Dispatcher: Dispatcher{
			Kind:  reversal.KindMock,
			Host:  "localhost",
			Port:  9999,
			MBean: "com.company.payment:type=TransactionService",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; when it
// is empty the ABASSIST_CONFIG variable is consulted. A missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}

	if path == "" {
		path = os.Getenv("ABASSIST_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
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

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
		return nil
	}

	str("PORT", &c.Port)
	str("TEMPLATES_DIR", &c.TemplatesDir)
	str("TEMPLATE_EXT", &c.TemplateExt)
	str("LOG_BACKEND", &c.LogBackend)
	str("DB_PATH", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("SESSION_SECRET", &c.SessionSecret)

	str("TXN_DB_DRIVER", &c.TxnStore.Driver)
	str("ORACLE_HOST", &c.TxnStore.Host)
	str("ORACLE_SERVICE_NAME", &c.TxnStore.ServiceName)
	str("ORACLE_USERNAME", &c.TxnStore.Username)
	str("ORACLE_PASSWORD", &c.TxnStore.Password)
	if err := num("ORACLE_PORT", &c.TxnStore.Port); err != nil {
		return err
	}

	str("DISPATCHER", &c.Dispatcher.Kind)
	str("JCONSOLE_HOST", &c.Dispatcher.Host)
	str("JCONSOLE_MBEAN", &c.Dispatcher.MBean)
	return num("JCONSOLE_PORT", &c.Dispatcher.Port)
}

// Validate rejects settings the portal cannot start with.
func (c *Config) Validate() error {
	if _, err := store.DefaultPath(c.LogBackend); err != nil {
		return fmt.Errorf("LOG_BACKEND: %w", err)
	}
	switch c.TxnStore.Driver {
	case "", transactions.DriverOracle, transactions.DriverPostgres:
	default:
		return fmt.Errorf("TXN_DB_DRIVER: unsupported driver %q", c.TxnStore.Driver)
	}
	switch c.Dispatcher.Kind {
	case "", reversal.KindMock, reversal.KindJolokia:
	default:
		return fmt.Errorf("DISPATCHER: unsupported kind %q", c.Dispatcher.Kind)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Capabilities resolves the optional integrations.
func (c *Config) Capabilities() Capabilities {
	return Capabilities{ExternalStore: c.TxnStore.Driver != ""}
}

// ConnConfig returns the transaction store connection parameters.
func (c *Config) ConnConfig() transactions.ConnConfig {
	return transactions.ConnConfig{
		Driver:      c.TxnStore.Driver,
		Host:        c.TxnStore.Host,
		Port:        c.TxnStore.Port,
		ServiceName: c.TxnStore.ServiceName,
		Username:    c.TxnStore.Username,
		Password:    c.TxnStore.Password,
	}
}

// JMXConfig returns the management interface location.
func (c *Config) JMXConfig() reversal.JMXConfig {
	return reversal.JMXConfig{
		Host:  c.Dispatcher.Host,
		Port:  c.Dispatcher.Port,
		MBean: c.Dispatcher.MBean,
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL: unknown level %q", name)
	}
}

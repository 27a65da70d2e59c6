package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string                      `mapstructure:"env"`
	Log       LogConfig                   `mapstructure:"log"`
	ADB       ADBConfig                   `mapstructure:"adb"`
	Ledger    LedgerConfig                `mapstructure:"ledger"`
	OCR       OCRConfig                   `mapstructure:"ocr"`
	Cycle     CycleConfig                 `mapstructure:"cycle"`
	UI        map[string][]map[string]any `mapstructure:"ui"`
	Artifacts ArtifactsConfig             `mapstructure:"artifacts"`
	Notify    NotifyConfig                `mapstructure:"notify"`
	API       APIConfig                   `mapstructure:"api"`

	path string
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ADBConfig struct {
	Path   string `mapstructure:"path"`
	Serial string `mapstructure:"serial"` // "auto" selects by discovery
}

type LedgerConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

type OCRConfig struct {
	TesseractCmd string           `mapstructure:"tesseract_cmd"`
	Lang         string           `mapstructure:"lang"`
	TrainingDir  string           `mapstructure:"training_dir"`
	Scale        float64          `mapstructure:"scale"`
	Regions      map[string][]int `mapstructure:"regions"`
}

type CycleConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	BuybackPercent  float64       `mapstructure:"buyback_percent"`
	ActionDelay     time.Duration `mapstructure:"action_delay"`
	CardPause       time.Duration `mapstructure:"card_pause"`
	ClipboardSettle time.Duration `mapstructure:"clipboard_settle"`
}

type ArtifactsConfig struct {
	Driver string      `mapstructure:"driver"` // "fs" or "minio"
	Root   string      `mapstructure:"root"`
	Minio  MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type NotifyConfig struct {
	QueueSize int         `mapstructure:"queue_size"`
	Redis     RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

type APIConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr"` // empty disables the API
	MaxConns     int           `mapstructure:"max_conns"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	AdminUserIDs []int64       `mapstructure:"admin_user_ids"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("adb.path", "adb")
	v.SetDefault("adb.serial", "auto")

	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.dsn", "contract_bot.sqlite")

	v.SetDefault("ocr.tesseract_cmd", "tesseract")
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.training_dir", "training")
	v.SetDefault("ocr.scale", 1.0)

	v.SetDefault("cycle.poll_interval", 30*time.Second)
	v.SetDefault("cycle.cooldown", 5*time.Second)
	v.SetDefault("cycle.buyback_percent", 100.0)
	v.SetDefault("cycle.action_delay", 4*time.Second)
	v.SetDefault("cycle.card_pause", 500*time.Millisecond)
	v.SetDefault("cycle.clipboard_settle", 4*time.Second)

	v.SetDefault("artifacts.driver", "fs")
	v.SetDefault("artifacts.root", "artifacts")

	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("notify.redis.stream", "contractbot:contracts")

	v.SetDefault("api.max_conns", 64)
	v.SetDefault("api.token_ttl", 30*24*time.Hour)
}

// Load reads path (YAML) and applies CONTRACTBOT_* environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("contractbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.UI == nil {
		cfg.UI = map[string][]map[string]any{}
	}
	return cfg, nil
}

// Validate checks the values the worker cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Ledger.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("ledger.driver %q: want sqlite or postgres", c.Ledger.Driver))
	}
	if c.Ledger.DSN == "" {
		errs = append(errs, errors.New("ledger.dsn is required"))
	}
	if c.Cycle.PollInterval <= 0 {
		errs = append(errs, errors.New("cycle.poll_interval must be positive"))
	}
	if c.Cycle.Cooldown < 0 {
		errs = append(errs, errors.New("cycle.cooldown must not be negative"))
	}
	if c.Cycle.BuybackPercent < 0 {
		errs = append(errs, errors.New("cycle.buyback_percent must not be negative"))
	}
	for name, box := range c.OCR.Regions {
		if len(box) != 4 {
			errs = append(errs, fmt.Errorf("ocr.regions.%s: want 4 coordinates, got %d", name, len(box)))
		}
	}
	switch c.Artifacts.Driver {
	case "fs":
	case "minio":
		if c.Artifacts.Minio.Endpoint == "" || c.Artifacts.Minio.Bucket == "" {
			errs = append(errs, errors.New("artifacts.minio.endpoint and bucket are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("artifacts.driver %q: want fs or minio", c.Artifacts.Driver))
	}
	if c.API.ListenAddr != "" && c.API.JWTSecret == "" {
		errs = append(errs, errors.New("api.jwt_secret is required when api.listen_addr is set"))
	}
	return errors.Join(errs...)
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// Path is the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// PersistSerial writes the discovered adb serial back to the config file so
// later starts bind the same device without prompting. Only adb.serial is
// touched; defaults and environment overrides never reach the file and its
// comments survive.
func (c *Config) PersistSerial(serial string) error {
	c.ADB.Serial = serial
	if c.path == "" {
		return nil
	}

	mode := fs.FileMode(0o644)
	raw, err := os.ReadFile(c.path)
	switch {
	case err == nil:
		if st, err := os.Stat(c.path); err == nil {
			mode = st.Mode().Perm()
		}
	case isNotExist(err):
	default:
		return fmt.Errorf("persist adb serial: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("persist adb serial: parse %s: %w", c.path, err)
	}
	if doc.Kind != yaml.DocumentNode {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("persist adb serial: %s is not a YAML mapping", c.path)
	}

	adb := mappingEntry(root, "adb")
	if adb.Kind != yaml.MappingNode {
		*adb = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", LineComment: adb.LineComment}
	}
	value := mappingEntry(adb, "serial")
	if value.Kind != yaml.ScalarNode {
		*value = yaml.Node{Kind: yaml.ScalarNode, LineComment: value.LineComment}
	}
	value.Tag = "!!str"
	value.Value = serial

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("persist adb serial: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("persist adb serial: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("persist adb serial: %w", err)
	}
	return nil
}

// mappingEntry returns the value node stored under key in m, appending an
// empty one when the key is absent.
func mappingEntry(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	value := &yaml.Node{}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
	return value
}

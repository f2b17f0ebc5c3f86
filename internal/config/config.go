package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the photodex service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Index       IndexConfig       `yaml:"index"`
	Storage     StorageConfig     `yaml:"storage"`
	Recognition RecognitionConfig `yaml:"recognition"`
	NLU         NLUConfig         `yaml:"nlu"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	AWS         AWSConfig         `yaml:"aws"`
	Events      EventsConfig      `yaml:"events"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for event intake and admin routes.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds index store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	WriteTimeoutMs   int      `yaml:"write_timeout_ms"`
}

// IndexConfig holds the photo index layout. Hit caps and fuzziness are fixed by the
// search executor and not configurable.
type IndexConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	Name      string `yaml:"name"`
}

// StorageConfig holds object storage settings.
type StorageConfig struct {
	PublicBaseURL string `yaml:"public_base_url"`
	Endpoint      string `yaml:"endpoint"` // S3-compatible endpoint, empty for AWS
	UsePathStyle  bool   `yaml:"use_path_style"`
}

// RecognitionConfig selects and tunes the label extractor.
type RecognitionConfig struct {
	Driver        string  `yaml:"driver"` // rekognition, openai
	MaxLabels     int     `yaml:"max_labels"`
	MinConfidence float64 `yaml:"min_confidence"`
	Model         string  `yaml:"model"` // openai driver only
}

// NLUConfig selects the slot-filling backend and the bot it talks to.
type NLUConfig struct {
	Driver   string   `yaml:"driver"` // lex, openai
	BotName  string   `yaml:"bot_name"`
	BotAlias string   `yaml:"bot_alias"`
	Slots    []string `yaml:"slots"`
	Model    string   `yaml:"model"` // openai driver only
}

// OpenAIConfig holds OpenAI-compatible provider settings shared by the openai drivers.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AWSConfig holds settings shared by the AWS SDK clients.
type AWSConfig struct {
	Region      string `yaml:"region"`
	MaxAttempts int    `yaml:"max_attempts"`
	TimeoutSec  int    `yaml:"timeout_sec"` // per HTTP attempt, connect included
}

// EventsConfig holds the JetStream upload notification consumer settings.
type EventsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	NATSURL       string `yaml:"nats_url"`
	Stream        string `yaml:"stream"`
	Subject       string `yaml:"subject"`
	Durable       string `yaml:"durable"`
	MaxAckPending int    `yaml:"max_ack_pending"`
	AckWaitSec    int    `yaml:"ack_wait_sec"`
	// MaxDeliver caps deliveries of a failing event before it is dropped.
	MaxDeliver       int `yaml:"max_deliver"`
	RetryDelayMs     int `yaml:"retry_delay_ms"`
	MaxRetryDelaySec int `yaml:"max_retry_delay_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.WriteTimeoutMs <= 0 {
		c.Database.WriteTimeoutMs = 5000
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "photodex:"
	}
	if c.Index.Name == "" {
		c.Index.Name = c.Index.KeyPrefix + "idx:photo"
	}
	if c.Recognition.Driver == "" {
		c.Recognition.Driver = "rekognition"
	}
	if c.Recognition.Model == "" {
		c.Recognition.Model = "gpt-4o-mini"
	}
	if c.NLU.Driver == "" {
		c.NLU.Driver = "lex"
	}
	if c.NLU.BotName == "" {
		c.NLU.BotName = "photo_keyword_key"
	}
	if c.NLU.BotAlias == "" {
		c.NLU.BotAlias = "alpha"
	}
	if len(c.NLU.Slots) == 0 {
		c.NLU.Slots = []string{"keyword_one", "keyword_two"}
	}
	if c.NLU.Model == "" {
		c.NLU.Model = "gpt-4o-mini"
	}
	if c.OpenAI.TimeoutSec <= 0 {
		c.OpenAI.TimeoutSec = 30
	}
	if c.AWS.MaxAttempts <= 0 {
		c.AWS.MaxAttempts = 1
	}
	if c.AWS.TimeoutSec <= 0 {
		c.AWS.TimeoutSec = 10
	}
	if c.Events.Stream == "" {
		c.Events.Stream = "PHOTO_UPLOADS"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "photodex.uploads"
	}
	if c.Events.Durable == "" {
		c.Events.Durable = "photodex-indexer"
	}
	if c.Events.MaxAckPending <= 0 {
		c.Events.MaxAckPending = 16
	}
	if c.Events.AckWaitSec <= 0 {
		c.Events.AckWaitSec = 60
	}
	if c.Events.MaxDeliver <= 0 {
		c.Events.MaxDeliver = 5
	}
	if c.Events.RetryDelayMs <= 0 {
		c.Events.RetryDelayMs = 1000
	}
	if c.Events.MaxRetryDelaySec <= 0 {
		c.Events.MaxRetryDelaySec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Storage.PublicBaseURL == "" {
		return fmt.Errorf("storage.public_base_url is required")
	}

	needsOpenAI := false
	switch c.Recognition.Driver {
	case "rekognition":
	case "openai":
		needsOpenAI = true
	default:
		return fmt.Errorf("recognition.driver must be \"rekognition\" or \"openai\", got %q", c.Recognition.Driver)
	}
	switch c.NLU.Driver {
	case "lex":
	case "openai":
		needsOpenAI = true
	default:
		return fmt.Errorf("nlu.driver must be \"lex\" or \"openai\", got %q", c.NLU.Driver)
	}
	if needsOpenAI && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required by the openai driver")
	}

	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events.nats_url is required when events are enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

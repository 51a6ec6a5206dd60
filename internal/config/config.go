package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverRedis  = "redis"
	DriverQdrant = "qdrant"
)

// Supported filterable field types.
const (
	FieldTag     = "tag"
	FieldNumeric = "numeric"
)

// Config holds the semdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string       `yaml:"driver" validate:"oneof=redis qdrant"`
	Addrs            []string     `yaml:"addrs"`
	Password         string       `yaml:"password"`
	ReadinessTimeout int          `yaml:"readiness_timeout_sec"`
	Qdrant           QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds Qdrant gRPC settings.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	User        string `yaml:"user"`
	MaxAPIBatch int    `yaml:"max_api_batch"`
}

// CacheConfig holds embedding cache settings. The cache needs the redis driver.
type CacheConfig struct {
	Disabled bool `yaml:"disabled"`
	TTLSec   int  `yaml:"ttl_sec"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Name            string        `yaml:"name"`
	KeyPrefix       string        `yaml:"key_prefix"`
	HNSWM           int           `yaml:"hnsw_m"`
	HNSWEFConstruct int           `yaml:"hnsw_ef_construction"`
	Fields          []FieldConfig `yaml:"fields" validate:"unique=Name,dive"`
}

// FieldConfig declares a metadata key that can be filtered on.
type FieldConfig struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=tag numeric"`
}

// IngestConfig holds admission settings.
type IngestConfig struct {
	MaxContentTokens int `yaml:"max_content_tokens"`
}

// SearchConfig holds search endpoint settings.
type SearchConfig struct {
	FilterField string `yaml:"filter_field"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file next to the working directory is loaded first, without overriding
// variables that are already set.
func Load(env string) (Config, error) {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment references in data and decodes it.
func Parse(data []byte) (Config, error) {
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
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Qdrant.Port <= 0 {
		c.Database.Qdrant.Port = 6334
	}
	if c.Database.Qdrant.Collection == "" {
		c.Database.Qdrant.Collection = "semdex"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.MaxAPIBatch <= 0 {
		c.Embedding.MaxAPIBatch = 256
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.Index.Name == "" {
		c.Index.Name = "semdex_idx"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "semdex:"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Ingest.MaxContentTokens <= 0 {
		c.Ingest.MaxContentTokens = 8192
	}
	if c.Search.FilterField == "" {
		c.Search.FilterField = "artist"
	}
	for i := range c.Index.Fields {
		if c.Index.Fields[i].Type == "" {
			c.Index.Fields[i].Type = FieldTag
		}
	}
	if !c.hasField(c.Search.FilterField) {
		c.Index.Fields = append(c.Index.Fields, FieldConfig{Name: c.Search.FilterField, Type: FieldTag})
	}
}

// Validate checks struct rules first, then the cross-section ones.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return describe(verrs[0])
		}
		return fmt.Errorf("validate: %w", err)
	}
	switch {
	case c.Database.Driver == DriverRedis && len(c.Database.Addrs) == 0:
		return errors.New("database.addrs is required")
	case c.Database.Driver == DriverQdrant && c.Database.Qdrant.Host == "":
		return errors.New("database.qdrant.host is required")
	}
	typ, ok := c.fieldType(c.Search.FilterField)
	if !ok {
		return fmt.Errorf("search.filter_field %q must be listed in index.fields", c.Search.FilterField)
	}
	if typ != FieldTag {
		return fmt.Errorf("search.filter_field %q must be a tag field, got %s", c.Search.FilterField, typ)
	}
	return nil
}

// validate names fields by their yaml keys so errors point into the file.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

func describe(fe validator.FieldError) error {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", path)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "unique":
		return fmt.Errorf("%s: duplicate %s", path, strings.ToLower(fe.Param()))
	default:
		return fmt.Errorf("%s fails %s=%s (got %v)", path, fe.Tag(), fe.Param(), fe.Value())
	}
}

func (c *Config) hasField(name string) bool {
	_, ok := c.fieldType(name)
	return ok
}

func (c *Config) fieldType(name string) (string, bool) {
	for _, f := range c.Index.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
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

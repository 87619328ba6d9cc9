package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/itemfilter/internal/domain/view"
)

// Config holds the itemfilter service configuration.
type Config struct {
	HTTP     HTTPConfig            `yaml:"http"`
	Database DatabaseConfig        `yaml:"database"`
	Auth     AuthConfig            `yaml:"auth"`
	Storage  StorageConfig         `yaml:"storage"`
	Logging  LoggingConfig         `yaml:"logging"`
	Engine   EngineConfig          `yaml:"engine"`
	Views    map[string]ViewConfig `yaml:"views"`
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
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverValkey = "valkey"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, memory (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EngineConfig holds session engine settings.
type EngineConfig struct {
	SettleMs          int  `yaml:"settle_ms"` // debounce before a transition settles
	DisableSettle     bool `yaml:"disable_settle"`
	MaxSessions       int  `yaml:"max_sessions"` // 0 = unlimited
	SessionIdleTTLSec int  `yaml:"session_idle_ttl_sec"`
}

// Settle returns the settle delay; zero when settling is disabled.
func (e EngineConfig) Settle() time.Duration {
	if e.DisableSettle {
		return 0
	}
	return time.Duration(e.SettleMs) * time.Millisecond
}

// SessionIdleTTL returns how long an untouched session lives.
func (e EngineConfig) SessionIdleTTL() time.Duration {
	return time.Duration(e.SessionIdleTTLSec) * time.Second
}

// ViewConfig describes one view. Omitted sections disable the feature.
type ViewConfig struct {
	Filter      *FilterConfig         `yaml:"filter"`
	Sort        *SortConfig           `yaml:"sort"`
	Count       *CountConfig          `yaml:"count"`
	Predicates  map[string]RuleConfig `yaml:"predicates"`
	DateLayouts []string              `yaml:"date_layouts"`
	Collation   string                `yaml:"collation"` // BCP 47 tag, e.g. "de"
}

// FilterConfig holds filter buttons.
type FilterConfig struct {
	Grouping bool          `yaml:"grouping"`
	Mode     string        `yaml:"mode"` // exclusive (radio), multi (toggle)
	Groups   []GroupConfig `yaml:"groups"`
}

// GroupConfig lists the buttons of one group.
type GroupConfig struct {
	ID      string   `yaml:"id"`
	Buttons []string `yaml:"buttons"`
}

// SortConfig holds sort options.
type SortConfig struct {
	Trigger string             `yaml:"trigger"` // list, button
	Options []SortOptionConfig `yaml:"options"`
}

// SortOptionConfig is one sort option, e.g. {by: ".price, number", ascending: true}.
type SortOptionConfig struct {
	By        string `yaml:"by"`
	Ascending bool   `yaml:"ascending"`
}

// CountConfig holds the count display format.
type CountConfig struct {
	Format string `yaml:"format"` // "n / N" when empty
}

// RuleConfig is a declarative predicate.
type RuleConfig struct {
	Field string `yaml:"field"`
	Op    string `yaml:"op"` // exists, eq, ne, contains, prefix, suffix, gt, gte, lt, lte, even, odd, class
	Value string `yaml:"value"`
}

// Load reads configuration from a YAML file by environment name (local, test, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "itemfilter:"
	}
	if c.Engine.SettleMs <= 0 {
		c.Engine.SettleMs = 400
	}
	if c.Engine.SessionIdleTTLSec <= 0 {
		c.Engine.SessionIdleTTLSec = 1800
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be one of valkey, redis, memory, got %q", c.Database.Driver)
	}
	if c.Engine.MaxSessions < 0 {
		return fmt.Errorf("engine.max_sessions must not be negative, got %d", c.Engine.MaxSessions)
	}
	if _, err := c.BuildViews(); err != nil {
		return err
	}
	return nil
}

// BuildViews validates every view section and returns the views by name.
func (c *Config) BuildViews() (map[string]*view.View, error) {
	out := make(map[string]*view.View, len(c.Views))
	names := make([]string, 0, len(c.Views))
	for name := range c.Views {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		v, err := view.New(name, c.Views[name].Definition())
		if err != nil {
			return nil, fmt.Errorf("views.%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Definition converts the YAML form into a view definition.
func (v ViewConfig) Definition() view.Definition {
	def := view.Definition{
		DateLayouts: v.DateLayouts,
		Collation:   v.Collation,
	}
	if v.Filter != nil {
		f := &view.FilterDef{Grouping: v.Filter.Grouping, Mode: v.Filter.Mode}
		for _, g := range v.Filter.Groups {
			f.Groups = append(f.Groups, view.GroupDef{ID: g.ID, Buttons: g.Buttons})
		}
		def.Filter = f
	}
	if v.Sort != nil {
		s := &view.SortDef{Trigger: v.Sort.Trigger}
		for _, o := range v.Sort.Options {
			s.Options = append(s.Options, view.SortOptionDef{By: o.By, Ascending: o.Ascending})
		}
		def.Sort = s
	}
	if v.Count != nil {
		def.Count = &view.CountDef{Format: v.Count.Format}
	}
	if len(v.Predicates) > 0 {
		def.Predicates = make(map[string]view.RuleDef, len(v.Predicates))
		for name, r := range v.Predicates {
			def.Predicates[name] = view.RuleDef{Field: r.Field, Op: r.Op, Value: r.Value}
		}
	}
	return def
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

// Package config loads settings from defaults, an optional config file and
// ACCEPTJSON_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/terrpan/acceptjson/internal/acceptjson"
)

const envPrefix = "acceptjson"

type Config struct {
	Version    string
	Commit     string
	BuildTime  string
	Logger     LoggerConfig     `mapstructure:"logger"`
	AcceptJSON AcceptJSONConfig `mapstructure:"accept_json"`
	Port       int              `mapstructure:"port"`
	OTLP       OTLPConfig       `mapstructure:"otlp"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	JSONOutput bool   `mapstructure:"json_output"`
	AddSource  bool   `mapstructure:"add_source"`
}

// AcceptJSONConfig configures the middleware mounted on the API routes.
type AcceptJSONConfig struct {
	// Quality of the injected application/json entry.
	Quality float64 `mapstructure:"quality"`
	// Force injects even when application/json is already accepted. Besides
	// booleans it accepts the string "force".
	Force bool `mapstructure:"force"`
}

// OTLPConfig toggles span export. The endpoint itself comes from the
// standard OTEL_EXPORTER_OTLP_* variables.
type OTLPConfig struct {
	EnableOTLP bool `mapstructure:"enable_otlp"`
	OTLPStdOut bool `mapstructure:"otlp_stdout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Build information, set through -ldflags.
var (
	Version   = "v0.0.1"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	// AppConfig is nil until InitConfig succeeds.
	AppConfig *Config

	defaultConfig = Config{
		Port: 8080,
		Logger: LoggerConfig{
			Level:      "info",
			JSONOutput: true,
		},
		AcceptJSON: AcceptJSONConfig{
			Quality: 1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
)

// InitConfig registers defaults and environment bindings on the global
// viper instance and loads AppConfig from them.
func InitConfig() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	defaults := reflect.ValueOf(defaultConfig)
	walkConfigFields(reflect.TypeOf(Config{}), "", func(key string, index []int) {
		viper.SetDefault(key, defaults.FieldByIndex(index).Interface())

		// accept_json.quality binds ACCEPTJSON_ACCEPT_JSON_QUALITY
		envKey := strings.ToUpper(envPrefix + "_" + strings.ReplaceAll(key, ".", "_"))
		if err := viper.BindEnv(key, envKey); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding environment variable %s: %v\n", envKey, err)
		}
	})

	return load()
}

// LoadFile merges a config file under the environment. An empty path is a
// no-op.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)

	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return load()
}

func load() error {
	cfg := &Config{}

	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		forceKeywordDecodeHook,
	)

	if err := viper.Unmarshal(cfg, viper.DecodeHook(hooks)); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Version, cfg.Commit, cfg.BuildTime = GetBuildInfo()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	AppConfig = cfg

	return nil
}

// forceKeywordDecodeHook decodes the string "force" into true for bool
// fields. Other strings are left to the usual weak bool parsing.
func forceKeywordDecodeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}

	if s, ok := data.(string); ok && acceptjson.ParseForce(s) {
		return true, nil
	}

	return data, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}

	return errors.Join(errs...)
}

// walkConfigFields calls fn with the dotted viper key and field index of
// every leaf field carrying a mapstructure tag.
func walkConfigFields(typ reflect.Type, keyPrefix string, fn func(key string, index []int)) {
	walkFields(typ, keyPrefix, nil, fn)
}

func walkFields(typ reflect.Type, keyPrefix string, parent []int, fn func(string, []int)) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		key := joinKey(keyPrefix, tag)
		index := append(append([]int(nil), parent...), i)

		if field.Type.Kind() == reflect.Struct {
			walkFields(field.Type, key, index, fn)
			continue
		}

		fn(key, index)
	}
}

// GetDefaultConfig returns a copy of the built-in defaults.
func GetDefaultConfig() *Config {
	cfg := defaultConfig
	return &cfg
}

func GetBuildInfo() (version, commit, buildTime string) {
	return Version, Commit, BuildTime
}

// GetAcceptJSONConfig returns the accept_json section, or its defaults
// before InitConfig has run.
func GetAcceptJSONConfig() AcceptJSONConfig {
	if AppConfig == nil {
		return defaultConfig.AcceptJSON
	}

	return AppConfig.AcceptJSON
}

func joinKey(prefix, tag string) string {
	if prefix == "" {
		return tag
	}

	return prefix + "." + tag
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite provides a test suite for configuration testing with setup/teardown
type ConfigTestSuite struct {
	suite.Suite
	originalAppConfig *Config
}

func (suite *ConfigTestSuite) SetupTest() {
	// Save original AppConfig to restore after each test
	suite.originalAppConfig = AppConfig
	viper.Reset()
}

func (suite *ConfigTestSuite) TearDownTest() {
	AppConfig = suite.originalAppConfig
	viper.Reset()
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestInitConfig_Defaults() {
	suite.Require().NoError(InitConfig())
	suite.Require().NotNil(AppConfig)

	suite.Equal(8080, AppConfig.Port)
	suite.Equal(1.0, AppConfig.AcceptJSON.Quality)
	suite.False(AppConfig.AcceptJSON.Force)
	suite.True(AppConfig.Metrics.Enabled)
	suite.Equal("/metrics", AppConfig.Metrics.Path)
	suite.Equal(Version, AppConfig.Version)
	suite.Equal(Commit, AppConfig.Commit)
	suite.Equal(BuildTime, AppConfig.BuildTime)
}

func (suite *ConfigTestSuite) TestInitConfig_EnvironmentOverrides() {
	suite.T().Setenv("ACCEPTJSON_PORT", "9090")
	suite.T().Setenv("ACCEPTJSON_ACCEPT_JSON_QUALITY", "0.5")
	suite.T().Setenv("ACCEPTJSON_ACCEPT_JSON_FORCE", "true")
	suite.T().Setenv("ACCEPTJSON_LOGGER_LEVEL", "debug")
	suite.T().Setenv("ACCEPTJSON_METRICS_ENABLED", "false")

	suite.Require().NoError(InitConfig())

	suite.Equal(9090, AppConfig.Port)
	suite.Equal(0.5, AppConfig.AcceptJSON.Quality)
	suite.True(AppConfig.AcceptJSON.Force)
	suite.Equal("debug", AppConfig.Logger.Level)
	suite.False(AppConfig.Metrics.Enabled)
}

func (suite *ConfigTestSuite) TestInitConfig_ForceKeyword() {
	tests := []struct {
		value    string
		expected bool
	}{
		{value: "force", expected: true},
		{value: " force ", expected: true},
		{value: "true", expected: true},
		{value: "false", expected: false},
		{value: "0", expected: false},
	}

	for _, tt := range tests {
		suite.Run(tt.value, func() {
			viper.Reset()
			suite.T().Setenv("ACCEPTJSON_ACCEPT_JSON_FORCE", tt.value)

			suite.Require().NoError(InitConfig())
			suite.Equal(tt.expected, AppConfig.AcceptJSON.Force)
		})
	}
}

func (suite *ConfigTestSuite) TestLoadFile_ForceKeyword() {
	suite.Require().NoError(InitConfig())

	path := filepath.Join(suite.T().TempDir(), "acceptjson.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("accept_json:\n  force: force\n"), 0o600))

	suite.Require().NoError(LoadFile(path))
	suite.True(AppConfig.AcceptJSON.Force)
}

func (suite *ConfigTestSuite) TestInitConfig_InvalidForce() {
	suite.T().Setenv("ACCEPTJSON_ACCEPT_JSON_FORCE", "maybe")

	suite.Error(InitConfig())
}

func TestForceKeywordDecodeHook(t *testing.T) {
	boolType := reflect.TypeOf(false)
	stringType := reflect.TypeOf("")

	out, err := forceKeywordDecodeHook(stringType, boolType, "force")
	require.NoError(t, err)
	assert.Equal(t, true, out)

	out, err = forceKeywordDecodeHook(stringType, boolType, "yes")
	require.NoError(t, err)
	assert.Equal(t, "yes", out, "left for weak decoding")

	out, err = forceKeywordDecodeHook(stringType, stringType, "force")
	require.NoError(t, err)
	assert.Equal(t, "force", out, "only bool targets are rewritten")
}

func (suite *ConfigTestSuite) TestLoadFile() {
	suite.Require().NoError(InitConfig())

	path := filepath.Join(suite.T().TempDir(), "acceptjson.yaml")
	content := []byte("accept_json:\n  quality: 0.7\n  force: true\nport: 8181\n")
	suite.Require().NoError(os.WriteFile(path, content, 0o600))

	suite.Require().NoError(LoadFile(path))

	suite.Equal(0.7, AppConfig.AcceptJSON.Quality)
	suite.True(AppConfig.AcceptJSON.Force)
	suite.Equal(8181, AppConfig.Port)
	suite.Equal(Version, AppConfig.Version)
}

func (suite *ConfigTestSuite) TestLoadFile_EnvironmentWins() {
	suite.T().Setenv("ACCEPTJSON_ACCEPT_JSON_QUALITY", "0.2")
	suite.Require().NoError(InitConfig())

	path := filepath.Join(suite.T().TempDir(), "acceptjson.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("accept_json:\n  quality: 0.7\n"), 0o600))

	suite.Require().NoError(LoadFile(path))
	suite.Equal(0.2, AppConfig.AcceptJSON.Quality)
}

func (suite *ConfigTestSuite) TestLoadFile_Missing() {
	err := LoadFile(filepath.Join(suite.T().TempDir(), "missing.yaml"))

	suite.Require().Error(err)
	suite.Contains(err.Error(), "failed to read config file")
}

func (suite *ConfigTestSuite) TestLoadFile_EmptyPathIsNoop() {
	AppConfig = &Config{Port: 1234}

	suite.Require().NoError(LoadFile(""))
	suite.Equal(1234, AppConfig.Port)
}

func (suite *ConfigTestSuite) TestGetAcceptJSONConfig() {
	AppConfig = nil
	suite.Equal(defaultConfig.AcceptJSON, GetAcceptJSONConfig())

	AppConfig = &Config{AcceptJSON: AcceptJSONConfig{Quality: 0.3, Force: true}}
	suite.Equal(AcceptJSONConfig{Quality: 0.3, Force: true}, GetAcceptJSONConfig())
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSONOutput)
	assert.False(t, cfg.Logger.AddSource)
	assert.Equal(t, 1.0, cfg.AcceptJSON.Quality)
	assert.False(t, cfg.AcceptJSON.Force)
	assert.False(t, cfg.OTLP.EnableOTLP)
}

func TestGetBuildInfo(t *testing.T) {
	version, commit, buildTime := GetBuildInfo()

	assert.Equal(t, Version, version)
	assert.Equal(t, Commit, commit)
	assert.Equal(t, BuildTime, buildTime)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "port", joinKey("", "port"))
	assert.Equal(t, "accept_json.quality", joinKey("accept_json", "quality"))
}

func (suite *ConfigTestSuite) TestInitConfig_InvalidMetricsPath() {
	suite.T().Setenv("ACCEPTJSON_METRICS_PATH", "metrics")

	err := InitConfig()

	suite.Require().Error(err)
	suite.Contains(err.Error(), "metrics.path")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "port zero picks a free port",
			mutate: func(c *Config) { c.Port = 0 },
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Port = -1 },
			wantErr: "port -1 out of range",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "port 70000 out of range",
		},
		{
			name:    "relative metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: `metrics.path "metrics" must start with /`,
		},
		{
			name: "path ignored while metrics are disabled",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Path = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDefaultConfig_ReturnsCopy(t *testing.T) {
	GetDefaultConfig().Port = 1

	assert.Equal(t, 8080, GetDefaultConfig().Port)
}

func TestWalkConfigFields(t *testing.T) {
	keys := map[string][]int{}
	walkConfigFields(reflect.TypeOf(Config{}), "", func(key string, index []int) {
		keys[key] = index
	})

	assert.Contains(t, keys, "accept_json.quality")
	assert.Contains(t, keys, "logger.level")
	assert.Contains(t, keys, "port")
	assert.NotContains(t, keys, "Version", "untagged fields are skipped")
	assert.NotContains(t, keys, "accept_json", "structs are walked, not bound")

	defaults := reflect.ValueOf(defaultConfig)
	assert.Equal(t, 1.0, defaults.FieldByIndex(keys["accept_json.quality"]).Interface())
	assert.Equal(t, "/metrics", defaults.FieldByIndex(keys["metrics.path"]).Interface())
}

// Package config loads the survey service configuration with Viper.
// Precedence, highest first: command-line flags, environment variables,
// config.yaml in the config directory, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/survey/internal/paths"
	"github.com/mesh-intelligence/survey/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config keys matching config.yaml.
const (
	KeyStorageFile     = "storage_file"
	KeyHost            = "host"
	KeyPort            = "port"
	KeyName            = "name"
	KeyMaxBodyBytes    = "max_body_bytes"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyCORSOrigins     = "cors.origins"
)

// Defaults applied when no other source sets a key.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultName            = "World"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = types.LogLevelInfo
	DefaultLogFormat       = types.LogFormatText
)

// DefaultCORSOrigins allows submissions from any origin.
var DefaultCORSOrigins = []string{"*"}

// envBindings maps config keys to environment variables. PORT and NAME keep
// the names container platforms set.
var envBindings = map[string]string{
	KeyStorageFile:     paths.EnvStorageFile,
	KeyHost:            "SURVEY_HOST",
	KeyPort:            "PORT",
	KeyName:            "NAME",
	KeyMaxBodyBytes:    "SURVEY_MAX_BODY_BYTES",
	KeyShutdownTimeout: "SURVEY_SHUTDOWN_TIMEOUT",
	KeyLogLevel:        "SURVEY_LOG_LEVEL",
	KeyLogFormat:       "SURVEY_LOG_FORMAT",
	KeyCORSOrigins:     "SURVEY_CORS_ORIGINS",
}

// flagBindings maps config keys to command-line flag names.
var flagBindings = map[string]string{
	KeyStorageFile: "storage-file",
	KeyHost:        "host",
	KeyPort:        "port",
	KeyLogLevel:    "log-level",
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() types.Config {
	return types.Config{
		StorageFile:     paths.DefaultStorageFile,
		Host:            DefaultHost,
		Port:            DefaultPort,
		Name:            DefaultName,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		ShutdownTimeout: DefaultShutdownTimeout,
		Log: types.LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		CORS: types.CORSConfig{
			Origins: append([]string(nil), DefaultCORSOrigins...),
		},
	}
}

// Load reads config.yaml from configDir, applies environment and flag
// overrides, and validates the result. A missing config.yaml is not an
// error. flags may be nil; only flags that are present are bound.
func Load(configDir string, flags *pflag.FlagSet) (types.Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	if flags != nil {
		for key, name := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return types.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if configDir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return types.Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	storageFile, err := paths.ResolveStorageFile(cfg.StorageFile)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve storage file: %w", err)
	}
	cfg.StorageFile = storageFile

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyStorageFile, d.StorageFile)
	v.SetDefault(KeyHost, d.Host)
	v.SetDefault(KeyPort, d.Port)
	v.SetDefault(KeyName, d.Name)
	v.SetDefault(KeyMaxBodyBytes, d.MaxBodyBytes)
	v.SetDefault(KeyShutdownTimeout, d.ShutdownTimeout)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyCORSOrigins, d.CORS.Origins)
}

// defaultConfigHeader precedes the generated config.yaml.
const defaultConfigHeader = `# Survey service configuration.
# Environment variables (PORT, NAME, SURVEY_*) and flags override these values.
`

// WriteDefaultIfMissing creates configDir and writes config.yaml holding the
// defaults if the file does not exist. It reports whether a file was written.
func WriteDefaultIfMissing(configDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := FilePath(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := Defaults()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	data = append([]byte(defaultConfigHeader), data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// FilePath returns the config.yaml path inside configDir.
func FilePath(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}

package types

import (
	"errors"
	"time"
)

// Config holds the settings for the survey service. Field tags match the
// keys of config.yaml.
type Config struct {
	StorageFile     string        `mapstructure:"storage_file" yaml:"storage_file"`
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Name            string        `mapstructure:"name" yaml:"name"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Log             LogConfig     `mapstructure:"log" yaml:"log"`
	CORS            CORSConfig    `mapstructure:"cors" yaml:"cors"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// CORSConfig lists the origins allowed to submit responses from a browser.
type CORSConfig struct {
	Origins []string `mapstructure:"origins" yaml:"origins"`
}

// Log levels and formats accepted by Validate.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config validation errors.
var (
	ErrStorageFileEmpty    = errors.New("storage file must not be empty")
	ErrPortInvalid         = errors.New("port must be between 1 and 65535")
	ErrLogLevelUnknown     = errors.New("unknown log level")
	ErrLogFormatUnknown    = errors.New("unknown log format")
	ErrMaxBodyInvalid      = errors.New("max body bytes must be positive")
	ErrShutdownTimeoutZero = errors.New("shutdown timeout must be positive")
)

var knownLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

var knownLogFormats = map[string]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.StorageFile == "" {
		return ErrStorageFileEmpty
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrPortInvalid
	}
	if !knownLogLevels[c.Log.Level] {
		return ErrLogLevelUnknown
	}
	if !knownLogFormats[c.Log.Format] {
		return ErrLogFormatUnknown
	}
	if c.MaxBodyBytes <= 0 {
		return ErrMaxBodyInvalid
	}
	if c.ShutdownTimeout <= 0 {
		return ErrShutdownTimeoutZero
	}
	return nil
}

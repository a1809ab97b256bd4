package types

import (
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		StorageFile:     "/tmp/data/responses.json",
		Host:            "0.0.0.0",
		Port:            8080,
		Name:            "World",
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: 10 * time.Second,
		Log:             LogConfig{Level: LogLevelInfo, Format: LogFormatText},
		CORS:            CORSConfig{Origins: []string{"*"}},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty storage file returns ErrStorageFileEmpty",
			mutate:  func(c *Config) { c.StorageFile = "" },
			wantErr: ErrStorageFileEmpty,
		},
		{
			name:    "zero port returns ErrPortInvalid",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: ErrPortInvalid,
		},
		{
			name:    "port above range returns ErrPortInvalid",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: ErrPortInvalid,
		},
		{
			name:    "unknown log level returns ErrLogLevelUnknown",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: ErrLogLevelUnknown,
		},
		{
			name:    "unknown log format returns ErrLogFormatUnknown",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrLogFormatUnknown,
		},
		{
			name:    "non-positive body limit returns ErrMaxBodyInvalid",
			mutate:  func(c *Config) { c.MaxBodyBytes = 0 },
			wantErr: ErrMaxBodyInvalid,
		},
		{
			name:    "zero shutdown timeout returns ErrShutdownTimeoutZero",
			mutate:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: ErrShutdownTimeoutZero,
		},
		{
			name:    "empty CORS origins is valid",
			mutate:  func(c *Config) { c.CORS.Origins = nil },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

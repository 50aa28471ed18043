package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty driver returns ErrDriverEmpty",
			config:  Config{Driver: ""},
			wantErr: ErrDriverEmpty,
		},
		{
			name:    "unknown driver returns ErrDriverUnknown",
			config:  Config{Driver: "postgres"},
			wantErr: ErrDriverUnknown,
		},
		{
			name:    "unknown log level returns ErrLogLevelUnknown",
			config:  Config{Driver: DriverPlain, LogLevel: "chatty"},
			wantErr: ErrLogLevelUnknown,
		},
		{
			name:    "negative jobs returns ErrJobsInvalid",
			config:  Config{Driver: DriverPlain, Decimate: DecimateConfig{Jobs: -1}},
			wantErr: ErrJobsInvalid,
		},
		{
			name:    "out of range factor returns ErrInvalidFactor",
			config:  Config{Driver: DriverPlain, Decimate: DecimateConfig{Factor: "1.5"}},
			wantErr: ErrInvalidFactor,
		},
		{
			name:    "default config is valid",
			config:  DefaultConfig(),
			wantErr: nil,
		},
		{
			name:    "spatialite with factor is valid",
			config:  Config{Driver: DriverSpatialite, LogLevel: "debug", Decimate: DecimateConfig{Factor: "0.9", Jobs: 4}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
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

func TestParseFactor(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "0.9", want: 0.9},
		{in: " 0.5 ", want: 0.5},
		{in: "1", want: 1},
		{in: "0", wantErr: true},
		{in: "-0.2", wantErr: true},
		{in: "1.01", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "+Inf", wantErr: true},
		{in: "ninety", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFactor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFactor) {
					t.Fatalf("expected ErrInvalidFactor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

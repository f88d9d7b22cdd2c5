package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
	"github.com/jamesainslie/chumtree/pkg/chumtree/logging"
	"github.com/jamesainslie/chumtree/pkg/chumtree/types"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name:     "default values",
			input:    config.RotationConfig{MaxSize: "10MiB", MaxAge: 30, MaxBackups: 5},
			expected: logging.RotationConfig{MaxSize: 10 * types.MiB, MaxAge: 30, MaxBackups: 5},
		},
		{
			name:     "custom size in gibibytes",
			input:    config.RotationConfig{MaxSize: "1GiB", MaxAge: 7, MaxBackups: 3},
			expected: logging.RotationConfig{MaxSize: types.GiB, MaxAge: 7, MaxBackups: 3},
		},
		{
			name:     "SI size",
			input:    config.RotationConfig{MaxSize: "5MB", MaxAge: 1, MaxBackups: 1},
			expected: logging.RotationConfig{MaxSize: 5_000_000, MaxAge: 1, MaxBackups: 1},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxSize: "", MaxAge: 14, MaxBackups: 2},
			expected: logging.RotationConfig{MaxSize: 10 * types.MiB, MaxAge: 14, MaxBackups: 2},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "invalid", MaxAge: 21, MaxBackups: 4},
			expected: logging.RotationConfig{MaxSize: 10 * types.MiB, MaxAge: 21, MaxBackups: 4},
		},
		{
			name:     "zero max_size uses default",
			input:    config.RotationConfig{MaxSize: "0", MaxAge: 0, MaxBackups: 0},
			expected: logging.RotationConfig{MaxSize: 10 * types.MiB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRotationConfig(tt.input))
		})
	}
}

func TestBuildLoggingConfig(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Logging: config.LoggingConfig{
				Level:      "info",
				Path:       "/tmp/chumtree-test.log",
				Rotation:   config.RotationConfig{MaxSize: "1MiB", MaxBackups: 2, MaxAge: 3},
				Components: map[string]string{"walker": "warn"},
			},
		}
	}

	tests := []struct {
		name           string
		quiet, verbose bool
		wantLevel      string
		wantConsole    string
		wantWalker     string
	}{
		{name: "default", wantLevel: "info", wantConsole: "warn", wantWalker: "warn"},
		{name: "verbose", verbose: true, wantLevel: "debug", wantConsole: "debug", wantWalker: "debug"},
		{name: "quiet", quiet: true, wantLevel: "info", wantConsole: "", wantWalker: "warn"},
		{name: "quiet wins over verbose console", quiet: true, verbose: true, wantLevel: "debug", wantConsole: "", wantWalker: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			lc := buildLoggingConfig(c, tt.quiet, tt.verbose)

			assert.Equal(t, tt.wantLevel, lc.Level)
			assert.Equal(t, tt.wantConsole, lc.ConsoleLevel)
			assert.Equal(t, tt.wantWalker, lc.Components["walker"])
			assert.Equal(t, "/tmp/chumtree-test.log", lc.Path)
			assert.Equal(t, types.MiB, lc.Rotation.MaxSize)

			// The config's own map is left alone.
			assert.Equal(t, "warn", c.Logging.Components["walker"])
		})
	}
}

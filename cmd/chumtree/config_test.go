package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesainslie/chumtree/pkg/chumtree/config"
)

func TestShowConfig(t *testing.T) {
	t.Setenv("CHUMTREE_WORKERS", "3")
	t.Setenv("CHUMTREE_OUTPUT", "")

	c := &config.Config{
		Exclude:  []string{"**/.DS_Store"},
		Workers:  3,
		Output:   "summary",
		Progress: true,
		Logging: config.LoggingConfig{
			Level:      "info",
			Path:       "/var/log/chumtree.log",
			Rotation:   config.RotationConfig{MaxSize: "10MiB", MaxBackups: 5, MaxAge: 30},
			Components: map[string]string{"walker": "debug", "cli": "info"},
		},
	}

	var buf bytes.Buffer
	showConfig(&buf, c, "/home/u/.config/chumtree/config.yaml")

	out := buf.String()
	assert.Contains(t, out, "Config file: /home/u/.config/chumtree/config.yaml")
	assert.Contains(t, out, "exclude:                       [**/.DS_Store]")
	assert.Contains(t, out, "workers:                       3")
	assert.Contains(t, out, "output:                        summary")
	assert.Contains(t, out, "logging.path:                  /var/log/chumtree.log")
	assert.Contains(t, out, "logging.rotation.max_age:      30 days")
	assert.Contains(t, out, "logging.components.walker:     debug")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("components.cli")), bytes.Index(buf.Bytes(), []byte("components.walker")))
	assert.Contains(t, out, "CHUMTREE_WORKERS=3")
	assert.NotContains(t, out, "(none)")
}

func TestShowConfig_Defaults(t *testing.T) {
	t.Setenv("CHUMTREE_EXCLUDE", "")
	t.Setenv("CHUMTREE_WORKERS", "")
	t.Setenv("CHUMTREE_OUTPUT", "")
	t.Setenv("CHUMTREE_PROGRESS", "")
	t.Setenv("CHUMTREE_LOGGING_LEVEL", "")
	t.Setenv("CHUMTREE_LOGGING_PATH", "")

	var buf bytes.Buffer
	showConfig(&buf, &config.Config{Output: "json"}, "")

	out := buf.String()
	assert.Contains(t, out, "(using defaults, no file found)")
	assert.Contains(t, out, "(none)")
}

// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.25
//

package gopvt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pvt.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
channels: 12
averaging_depth: 50
dump_enabled: true
dump_filename: /tmp/pvt_e1.dat
debug: 2
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	assert.Equal(t, 12, cfg.Channels)
	assert.Equal(t, 50, cfg.AveragingDepth)
	assert.True(t, cfg.DumpEnabled)
	assert.Equal(t, "/tmp/pvt_e1.dat", cfg.DumpFilename)
	assert.Equal(t, 2, cfg.Debug)
}

func TestLoadConfigDefaults(t *testing.T) {
	// Omitted keys keep their defaults
	path := writeConfig(t, "channels: 10\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	assert.Equal(t, 10, cfg.Channels)
	assert.Equal(t, def.AveragingDepth, cfg.AveragingDepth)
	assert.Equal(t, def.DumpEnabled, cfg.DumpEnabled)
	assert.Equal(t, def.DumpFilename, cfg.DumpFilename)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero channels", "channels: 0\n"},
		{"negative depth", "averaging_depth: -1\n"},
		{"malformed yaml", "channels: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error")
	}
}

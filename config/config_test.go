package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/coffersTech/logsafe"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logsafe.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
redact_paths:
  - password
  - user.token
header_groups:
  - common
max_depth: 32
placeholder: "[REDACTED]"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.RedactPaths, []string{"password", "user.token"}) {
		t.Errorf("paths = %v", cfg.RedactPaths)
	}
	if cfg.MaxDepth != 32 || cfg.Placeholder != "[REDACTED]" {
		t.Errorf("cfg = %+v", cfg)
	}

	s := cfg.Serializers()
	out := s[logsafe.FieldEvent](map[string]any{"password": "pw"}).(map[string]any)
	if out["password"] != "[REDACTED]" {
		t.Errorf("loaded config not applied: %#v", out)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty config", Config{}, false},
		{"valid paths", Config{RedactPaths: []string{"a", "a.b.c"}}, false},
		{"empty path", Config{RedactPaths: []string{""}}, true},
		{"empty segment", Config{RedactPaths: []string{"a..b"}}, true},
		{"trailing dot", Config{RedactPaths: []string{"a."}}, true},
		{"negative depth", Config{MaxDepth: -1}, true},
		{"bad fingerprint key", Config{FingerprintKey: "not-hex"}, true},
		{"good fingerprint key", Config{FingerprintKey: "00ff"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Verify(); (err != nil) != tt.wantErr {
				t.Errorf("Verify() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_EnvKeyWins(t *testing.T) {
	t.Setenv("LOGSAFE_FINGERPRINT_KEY", "aabbccdd")

	cfg := Config{FingerprintKey: "00112233"}
	opts := cfg.Options()
	if got := opts.FingerprintKey; !reflect.DeepEqual(got, []byte{0xaa, 0xbb, 0xcc, 0xdd}) {
		t.Errorf("env key should win, got %x", got)
	}
}

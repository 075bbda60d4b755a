package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.Door.Timing.OpenDelay != 15*time.Second || cfg.Door.Timing.AutoCloseDelay != 60*time.Second {
		t.Errorf("timing defaults: %+v", cfg.Door.Timing)
	}
	if cfg.Relay.Host != "" {
		t.Errorf("relay host should default to empty, got %q", cfg.Relay.Host)
	}
	if cfg.Relay.RequestTimeout != 3*time.Second {
		t.Errorf("relay timeout: got %v", cfg.Relay.RequestTimeout)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl: got %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Auth.UsesDefaultKey() {
		t.Errorf("default signing key should be reported")
	}
}

func TestLoad_CustomSigningKey(t *testing.T) {
	t.Setenv("GARAGE_AUTH_SIGNING_KEY", "s3cret-garage-key")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.UsesDefaultKey() {
		t.Fatalf("custom key reported as default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := writeConfig(t, `
port: "9090"
log:
  level: DEBUG
door:
  name: Workshop
  open_time: 12.5
  close_time: 14
  auto_close_time: 120
relay:
  host: 192.168.1.40
  username: admin
  password: pw
  timeout_ms: 1500
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Log.Level != "debug" || cfg.Door.Name != "Workshop" {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
	if cfg.Door.Timing.OpenDelay != 12500*time.Millisecond {
		t.Errorf("open delay: got %v", cfg.Door.Timing.OpenDelay)
	}
	if cfg.Door.Timing.CloseDelay != 14*time.Second || cfg.Door.Timing.AutoCloseDelay != 2*time.Minute {
		t.Errorf("timing: %+v", cfg.Door.Timing)
	}
	if cfg.Relay.Host != "192.168.1.40" || cfg.Relay.Username != "admin" || cfg.Relay.Password != "pw" {
		t.Errorf("relay: %+v", cfg.Relay)
	}
	if cfg.Relay.RequestTimeout != 1500*time.Millisecond {
		t.Errorf("relay timeout: got %v", cfg.Relay.RequestTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "relay:\n  host: 10.0.0.1\n")
	t.Setenv("GARAGE_RELAY_HOST", "10.0.0.2")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Relay.Host != "10.0.0.2" {
		t.Fatalf("expected env override, got %q", cfg.Relay.Host)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"negative delay", "door:\n  close_time: -1\n", errNegativeDelay},
		{"zero timeout", "relay:\n  timeout_ms: 0\n", errRelayTimeout},
		{"empty key", "auth:\n  signing_key: \"\"\n", errEmptySigningKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "door: [unclosed\n"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "debug: true\n")
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if config.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", config.ListenAddr, DefaultListenAddr)
	}
	if config.TrustProxyHeaders || config.Session.InsecureCookies {
		t.Error("security flags must default to off")
	}
}

func TestLoadConfigTolerantBoolFlags(t *testing.T) {
	path := writeConfigFile(t, `
trustProxyHeaders: "1"
session:
  insecureCookies: "true"
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !config.TrustProxyHeaders {
		t.Error(`trustProxyHeaders: "1" must parse as true`)
	}
	if !config.Session.InsecureCookies {
		t.Error(`session.insecureCookies: "true" must parse as true`)
	}
}

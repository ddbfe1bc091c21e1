package config

import (
	"bytes"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int    `env:"TEST_PORT" envDefault:"123"`
	Name string `env:"TEST_NAME"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvReadsPrefixedVariables(t *testing.T) {
	t.Setenv("TYPESHELF_TEST_NAME", "brand")
	t.Setenv("TEST_NAME", "ignored")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Name != "brand" {
		t.Fatalf("name = %q, want %q", cfg.Name, "brand")
	}
}

func TestParseEnvUnprefixedReadsRawNames(t *testing.T) {
	t.Setenv("TEST_NAME", "raw")

	var cfg envTestConfig
	if err := ParseEnvUnprefixed(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Name != "raw" {
		t.Fatalf("name = %q, want %q", cfg.Name, "raw")
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TYPESHELF_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestExitfWritesMessageAndExitsWithCodeOne(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	prevStderr, prevExit := stderr, exit
	stderr = &buf
	exit = func(c int) { code = c }
	t.Cleanup(func() {
		stderr, exit = prevStderr, prevExit
	})

	Exitf("fatal: %s", "something broke")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := buf.String(); got != "fatal: something broke\n" {
		t.Fatalf("stderr = %q", got)
	}
}

package web

import (
	"flag"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.GRPCAddr != ":8081" {
		t.Fatalf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8081")
	}
	if cfg.DBPath != "data/typeshelf.db" {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, "data/typeshelf.db")
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("SessionTTL = %v, want 12h", cfg.SessionTTL)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Diagnostics {
		t.Fatal("Diagnostics = true, want false")
	}
}

func TestParseConfigReadsEnvironment(t *testing.T) {
	t.Setenv("TYPESHELF_WEB_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("TYPESHELF_REDIS_ADDR", "redis:6379")
	t.Setenv("TYPESHELF_SESSION_TTL", "30m")
	t.Setenv("TYPESHELF_LOG_FORMAT", "console")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("Logging.Format = %q", cfg.Logging.Format)
	}
}

func TestParseConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TYPESHELF_WEB_HTTP_ADDR", "127.0.0.1:9000")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9002", "-diagnostics", "-grpc-addr", ""})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
	if !cfg.Diagnostics {
		t.Fatal("Diagnostics = false, want true")
	}
	if cfg.GRPCAddr != "" {
		t.Fatalf("GRPCAddr = %q, want empty", cfg.GRPCAddr)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{HTTPAddr: ":8080", DBPath: "x.db", SessionSecret: strings.Repeat("s", 32)}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing http addr", mutate: func(c *Config) { c.HTTPAddr = " " }, wantErr: "http address"},
		{name: "missing db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: "db path"},
		{name: "short secret", mutate: func(c *Config) { c.SessionSecret = "short" }, wantErr: "session secret"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

// Package mcp parses MCP command flags and serves the catalog tools on stdio.
package mcp

import (
	"context"
	"flag"

	platformcmd "github.com/louisbranch/typeshelf/internal/platform/cmd"
	"github.com/louisbranch/typeshelf/internal/platform/logging"
	mcpservice "github.com/louisbranch/typeshelf/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath  string `env:"DB_PATH" envDefault:"data/typeshelf.db"`
	Logging logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite font catalog path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter on stdio. Logs go to stderr.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(platformcmd.ServiceMCP, cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, platformcmd.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{DBPath: cfg.DBPath, Logger: logger})
	})
}

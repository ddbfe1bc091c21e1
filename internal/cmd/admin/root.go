// Package admin implements the typeshelf operator CLI: session minting and
// font catalog maintenance.
package admin

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	platformcmd "github.com/louisbranch/typeshelf/internal/platform/cmd"
)

// Config holds environment defaults shared by every subcommand.
type Config struct {
	DBPath        string        `env:"DB_PATH"        envDefault:"data/typeshelf.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionIssuer string        `env:"SESSION_ISSUER" envDefault:"typeshelf"`
	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"12h"`
}

type cli struct {
	cfg Config
}

// NewRootCommand builds the typeshelf command tree over cfg.
func NewRootCommand(cfg Config) *cobra.Command {
	c := &cli{cfg: cfg}
	root := &cobra.Command{
		Use:           "typeshelf",
		Short:         "Operate the typeshelf brand font catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.cfg.DBPath, "db-path", c.cfg.DBPath, "SQLite font catalog path")
	root.PersistentFlags().StringVar(&c.cfg.RedisAddr, "redis-addr", c.cfg.RedisAddr, "Redis address; the font list cache is invalidated after writes")

	root.AddCommand(c.sessionCmd(), c.fontsCmd())
	return root
}

// Execute loads env defaults and runs the command tree with args.
func Execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return err
	}
	root := NewRootCommand(cfg)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

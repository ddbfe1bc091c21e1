package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
)

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage sign-in sessions",
	}
	cmd.AddCommand(c.sessionIssueCmd())
	return cmd
}

func (c *cli) sessionIssueCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
		cookie bool
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a session token for a user",
		Long:  "Mint a signed session token. Paste it into the login page or set it as the session cookie.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			if ttl <= 0 {
				ttl = c.cfg.SessionTTL
			}
			manager, err := session.NewManager(session.Config{
				Secret: []byte(c.cfg.SessionSecret),
				Issuer: c.cfg.SessionIssuer,
				TTL:    ttl,
			})
			if err != nil {
				return fmt.Errorf("init sessions (set TYPESHELF_SESSION_SECRET): %w", err)
			}
			token, principal, err := manager.Issue(userID)
			if err != nil {
				return err
			}
			if cookie {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", sessioncookie.Name, token)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "session %s for %s expires %s\n",
				principal.SessionID, principal.UserID, principal.ExpiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the session belongs to")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "session lifetime (default TYPESHELF_SESSION_TTL)")
	cmd.Flags().BoolVar(&cookie, "cookie", false, "print as a cookie pair")
	return cmd
}

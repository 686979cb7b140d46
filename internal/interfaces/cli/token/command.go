package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/auth"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/bootstrap"
)

var (
	env   string
	email string
	admin bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Session token tools for local development",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.AddCommand(newIssueCommand())

	return cmd
}

func newIssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Sign a session token for a user",
		Long:  `Sign a token with the configured secret. Partner ownership is resolved per request, so seed memberships first.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runIssue,
	}

	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")

	return cmd
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg, _, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	if cfg.Server.Mode == "release" {
		return fmt.Errorf("refusing to issue tokens in release mode")
	}

	signed, expiresAt, err := auth.NewSessionVerifier(cfg.Auth).Issue(args[0], email, admin)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

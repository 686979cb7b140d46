package relay

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/database"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/fachwerk-hq/fachwerk/internal/interfaces/http"
)

var (
	env     string
	timeout time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Drain the outbox once",
		Long:  `Publish every undispatched ledger entry to the live stream and mail, then exit. Useful when the server runs with relay.enabled=false.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up after this long")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.InitWithDatabase(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer database.Close()

	redisClient, err := bootstrap.OpenRedis(cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// The scheduler is never started here; only the job is used.
	cfg.Relay.Enabled = false
	container, err := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire relay: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := container.RelayJob().Drain(ctx)
	if err != nil {
		return fmt.Errorf("relay stopped after %d entries: %w", n, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dispatched %d entries\n", n)
	return nil
}

package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/database"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/repository"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/bootstrap"
)

var (
	env  string
	file string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load profiles and partner owners from a YAML file",
		Long:  `Mirror the identity directory locally: user profiles for mail notifications and partner ownership for caller resolution.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "Seed file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	fh, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()

	fixture, err := Parse(fh)
	if err != nil {
		return err
	}

	_, log, err := bootstrap.InitWithDatabase(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	stats, err := Apply(cmd.Context(), fixture,
		repository.NewProfileRepository(db),
		repository.NewPartnerMemberRepository(db),
		models.PartnerMemberRoleOwner,
	)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Infow("seed applied", "file", file, "profiles", stats.Profiles, "owners", stats.Owners)
	return nil
}

package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/database"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/migration"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/bootstrap"
)

const scriptsPath = "./internal/infrastructure/migration/scripts"

var (
	env   string
	name  string
	steps int
	auto  bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newVersionCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Derive the schema from the models instead of running SQL scripts")

	return cmd
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the state of every migration script.`,
		RunE:  runStatus,
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE:  runVersion,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create new migration files for every supported dialect.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration in snake_case (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newManager() (*migration.Manager, func(), error) {
	cfg, log, err := bootstrap.InitWithDatabase(bootstrap.ResolveEnv(env))
	if err != nil {
		return nil, nil, err
	}
	log.Infow("migration target", "environment", env, "driver", cfg.Database.Driver)
	return migration.NewManager(cfg.Database.Driver, auto), func() { _ = database.Close() }, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	manager, closeDB, err := newManager()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	manager, closeDB, err := newManager()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := manager.Down(database.Get(), steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, closeDB, err := newManager()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := manager.Status(database.Get()); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	manager, closeDB, err := newManager()
	if err != nil {
		return err
	}
	defer closeDB()

	version, err := manager.Version(database.Get())
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	files, err := migration.NewGenerator(scriptsPath).CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", f)
	}
	return nil
}

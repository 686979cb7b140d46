package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/migrate"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/relay"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/seed"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/server"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/cli/token"
)

// @title Fachwerk Marketplace API
// @version 1.0
// @description Request, application, appointment, order and rating lifecycle of the service marketplace.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:          "fachwerk",
		Short:        "Fachwerk - service marketplace engagement backend",
		Long:         `Fachwerk runs the request, application, appointment, order and rating lifecycle of the service marketplace.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		relay.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

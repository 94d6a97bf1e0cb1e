package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// bootstrap migrates the Postgres store on open
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requirePersistent("migrate"); err != nil {
				return err
			}
			a.log.Info().Msg("migrations applied")
			return nil
		},
	}
}

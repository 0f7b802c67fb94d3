package main

import (
	"fmt"
	"os"

	"github.com/signalix/otplogin/internal/db"
	"github.com/signalix/otplogin/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres pending-login migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.AutomaticEnv()
			v.SetDefault("LOG_LEVEL", "info")
			logging.Setup(v.GetString("LOG_LEVEL"))

			databaseURL := v.GetString("DATABASE_URL")
			if databaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}

			database, err := db.Open(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if status {
				return db.MigrationStatus(database)
			}
			if err := db.Migrate(database); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/storyloom/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	var flags dbFlags
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			err = db.RunMigrations(cmd.Context(), conn.DB, flags.driver)
			if err != nil {
				return err
			}
			fmt.Println("==> Migrations applied")
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func migrateDownCmd() *cobra.Command {
	var flags dbFlags
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			err = db.MigrateDown(cmd.Context(), conn.DB, flags.driver)
			if err != nil {
				return err
			}
			fmt.Println("==> Rolled back one migration")
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

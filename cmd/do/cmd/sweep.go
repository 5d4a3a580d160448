package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/storyloom/internal/repository"
	"github.com/templui/storyloom/internal/service"
)

func SweepCmd() *cobra.Command {
	var flags dbFlags
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete orphaned stories once, outside the server's schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := flags.open()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			orphans := service.NewOrphanService(
				repository.NewOrphanRepository(conn),
				repository.NewStoryRepository(conn),
				repository.NewAssetRepository(conn),
			)
			deleted, err := orphans.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("==> Deleted %d orphaned stories\n", deleted)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

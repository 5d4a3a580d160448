package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/templui/storyloom/internal/service"
)

func CatalogCmd() *cobra.Command {
	var contentPath string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Parse the sample story catalog and list its entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := service.NewCatalogService(os.DirFS(contentPath), nil)
			if err != nil {
				return err
			}

			stories, err := catalog.Stories(cmd.Context(), "", "", "")
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tGENRE\tMINUTES")
			for _, s := range stories {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.Title, s.Genre, s.ReadingTime)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&contentPath, "content", "content", "content directory containing stories/")
	return cmd
}

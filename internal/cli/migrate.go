package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/database"
	"github.com/iliyamo/letters/internal/migration"
)

func newMigrateCommand(load configLoader) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database.URL, cfg.Database.MaxConnections)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			if !list {
				return migration.Migrate(ctx, db, migration.LatestVersion())
			}

			statuses, err := migration.List(ctx, db)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED\tDESCRIPTION")
			for _, s := range statuses {
				applied := "no"
				if s.Applied {
					applied = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Version, s.Name, applied, s.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list migrations and whether they are applied")
	return cmd
}

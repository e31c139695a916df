package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/database"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/repository"
)

type userLister interface {
	List(ctx context.Context, p repository.Pagination) ([]*model.User, error)
}

func newUsersCommand(load configLoader) *cobra.Command {
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Print one page of registered users",
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

			return printUsers(context.Background(), os.Stdout, repository.NewUserRepo(db),
				repository.Pagination{Page: page, PerPage: perPage})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", repository.DefaultPerPage, "users per page")
	return cmd
}

func printUsers(ctx context.Context, out io.Writer, users userLister, p repository.Pagination) error {
	list, err := users.List(ctx, p)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
	for _, u := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

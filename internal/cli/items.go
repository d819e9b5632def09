package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/catalog"
	"github.com/mesh-intelligence/aimrepo/internal/repo"
)

func newItemsCmd() *cobra.Command {
	var (
		filter catalog.Filter
		counts bool
		dsn    string
	)
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List stored items across branches",
		Long: "Load the meta index of every branch into a SQLite catalog and list or\n" +
			"count the items. The catalog is rebuilt on every run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				c, err := catalog.Open(dsn, log)
				if err != nil {
					return err
				}
				defer c.Close()
				if _, err := c.Load(r); err != nil {
					return err
				}

				if counts {
					tc, err := c.Counts()
					if err != nil {
						return err
					}
					if flags.jsonMode {
						return writeJSON(cmd, tc)
					}
					for _, t := range tc {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", t.Branch, t.Type, t.Count)
					}
					return nil
				}

				items, err := c.Query(filter)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					if items == nil {
						items = []catalog.Item{}
					}
					return writeJSON(cmd, items)
				}
				for _, it := range items {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", it.Branch, it.Type, it.Name, it.DataPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.Branch, "branch", "", "only items of this branch")
	cmd.Flags().StringVar(&filter.Type, "type", "", "only items of this type")
	cmd.Flags().StringVar(&filter.NamePrefix, "prefix", "", "only items whose name starts with this prefix")
	cmd.Flags().BoolVar(&counts, "counts", false, "print item counts per branch and type")
	cmd.Flags().StringVar(&dsn, "db", catalog.MemoryDSN, "SQLite database for the catalog")
	return cmd
}

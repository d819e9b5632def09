package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Create, switch, remove and list branches",
	}
	cmd.AddCommand(newBranchCreateCmd())
	cmd.AddCommand(newBranchCheckoutCmd())
	cmd.AddCommand(newBranchRmCmd())
	cmd.AddCommand(newBranchLsCmd())
	return cmd
}

func newBranchCreateCmd() *cobra.Command {
	var checkout bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				if err := r.CreateBranch(args[0]); err != nil {
					return err
				}
				if checkout {
					if err := r.CheckoutBranch(args[0]); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&checkout, "checkout", "c", false, "switch to the new branch")
	return cmd
}

func newBranchCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <name>",
		Short: "Switch the active branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				if err := r.CheckoutBranch(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s\n", args[0])
				return nil
			})
		},
	}
}

func newBranchRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a branch and its objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				if err := r.RemoveBranch(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed branch %s\n", args[0])
				return nil
			})
		},
	}
}

type branchView struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func newBranchLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List branches; the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				names, err := r.ListBranches()
				if err != nil {
					return err
				}
				views := make([]branchView, 0, len(names))
				for _, n := range names {
					views = append(views, branchView{Name: n, Active: n == r.Branch()})
				}
				if flags.jsonMode {
					return writeJSON(cmd, views)
				}
				for _, v := range views {
					mark := " "
					if v.Active {
						mark = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, v.Name)
				}
				return nil
			})
		},
	}
}

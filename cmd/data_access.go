package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newDataAccessCmd())
}

func newDataAccessCmd() *cobra.Command {
	daCmd := &cobra.Command{
		Use:   "data-access",
		Short: "Request Data Access exports",
		Long: `Request the Data Access file listings for agent activity and web
sessions. The Data Access domain is fixed; override it with the
data_access_domain config key.`,
	}

	daCmd.AddCommand(newDataAccessCmdFor("agent-activity", "Agent activity files for a time range", (*api.DataAccess).AgentActivity))
	daCmd.AddCommand(newDataAccessCmdFor("web-session", "Web session files for a time range", (*api.DataAccess).WebSession))
	return daCmd
}

type dataAccessQuery func(*api.DataAccess, context.Context, int64, int64) (any, error)

func newDataAccessCmdFor(use, short string, query dataAccessQuery) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: fmt.Sprintf("  lp data-access %s --from 2024-03-01 --to 2024-03-02", use),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := timeRange(from, to)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				da, err := api.NewDataAccess(ctx, s)
				if err != nil {
					return err
				}
				data, err := query(da, ctx, start, end)
				if err != nil {
					return fmt.Errorf("requesting %s: %w", use, err)
				}
				return printResult(cmd, data)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start of range: RFC3339, yyyy-mm-dd, ms epoch, or duration ago")
	cmd.Flags().StringVar(&to, "to", "now", "End of range, same formats as --from")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newEngagementsCmd())
}

func newEngagementsCmd() *cobra.Command {
	engCmd := &cobra.Command{
		Use:   "engagements",
		Short: "Search chat engagement history",
	}
	engCmd.AddCommand(newEngagementsSearchCmd())
	return engCmd
}

func newEngagementsSearchCmd() *cobra.Command {
	var (
		flags   searchFlags
		keyword string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search engagements by start time and filters",
		Example: `  # First page of the last 6 hours
  lp engagements search --from 6h

  # Every engagement of March as JSON lines
  lp engagements search --from 2024-03-01 --to 2024-04-01 --all

  # Survey answers only
  lp engagements search --from 24h --all --json --jq '.[].surveys'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := searchBody(flags.body, flags.from, flags.to, map[string]string{
				"skillIds": flags.skillIDs,
				"agentIds": flags.agentIDs,
			})
			if err != nil {
				return err
			}
			if keyword != "" {
				body["keyword"] = keyword
			}
			return runEngagementsSearch(cmd, body, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&keyword, "keyword", "", "Search transcripts for a keyword")
	return cmd
}

func runEngagementsSearch(cmd *cobra.Command, body map[string]any, flags searchFlags) error {
	return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
		eh, err := api.NewEngagementHistory(ctx, s)
		if err != nil {
			return err
		}

		if !flags.all {
			data, err := eh.Engagements(ctx, body, flags.page())
			if err != nil {
				return fmt.Errorf("searching engagements: %w", err)
			}
			return printResult(cmd, data)
		}

		records, err := eh.AllEngagements(ctx, body, fanOutOptions(flags.sort))
		getIO().ProgressDone()
		if err != nil {
			return fmt.Errorf("searching engagements: %w", err)
		}
		return printRecords(cmd, records)
	})
}

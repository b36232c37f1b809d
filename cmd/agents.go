package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newAgentsCmd())
}

func newAgentsCmd() *cobra.Command {
	agentsCmd := &cobra.Command{
		Use:   "agents",
		Short: "Query messaging agent metrics",
		Long:  "Read the current status and load of messaging agents.",
	}

	agentsCmd.AddCommand(newAgentsStatusCmd())
	agentsCmd.AddCommand(newAgentsSummaryCmd())
	return agentsCmd
}

type agentFilterFlags struct {
	status   string
	agentIDs string
	skillIDs string
	groupIDs string
}

func (f *agentFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Comma-separated agent states (ONLINE, AWAY, BACK_SOON, OFFLINE)")
	cmd.Flags().StringVar(&f.agentIDs, "agent-ids", "", "Comma-separated agent IDs")
	cmd.Flags().StringVar(&f.skillIDs, "skill-ids", "", "Comma-separated skill IDs")
	cmd.Flags().StringVar(&f.groupIDs, "group-ids", "", "Comma-separated agent group IDs")
}

func (f *agentFilterFlags) filter() api.AgentFilter {
	return api.AgentFilter{
		Status:        splitCSV(f.status),
		AgentIDs:      splitCSV(f.agentIDs),
		SkillIDs:      splitCSV(f.skillIDs),
		AgentGroupIDs: splitCSV(f.groupIDs),
	}
}

func newAgentsStatusCmd() *cobra.Command {
	var flags agentFilterFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show logged-in agents with status, load and skills",
		Example: `  # All logged-in agents
  lp agents status

  # Online agents of two skills
  lp agents status --status ONLINE --skill-ids 11,12

  # Agent IDs only
  lp agents status --json --jq '.agentStatusRecords[].agentId'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgents(cmd, flags.filter(), (*api.AgentMetrics).AgentStatus)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAgentsSummaryCmd() *cobra.Command {
	var flags agentFilterFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show agent counts per status and the average load",
		Example: `  lp agents summary
  lp agents summary --group-ids 3 --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgents(cmd, flags.filter(), (*api.AgentMetrics).Summary)
		},
	}
	flags.register(cmd)
	return cmd
}

type agentQuery func(*api.AgentMetrics, context.Context, api.AgentFilter) (any, error)

func runAgents(cmd *cobra.Command, filter api.AgentFilter, query agentQuery) error {
	return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
		am, err := api.NewAgentMetrics(ctx, s)
		if err != nil {
			return err
		}
		data, err := query(am, ctx, filter)
		if err != nil {
			return fmt.Errorf("querying agent metrics: %w", err)
		}
		return printResult(cmd, data)
	})
}

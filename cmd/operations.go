package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newOperationsCmd())
}

func newOperationsCmd() *cobra.Command {
	opsCmd := &cobra.Command{
		Use:   "operations",
		Short: "Query messaging operations metrics",
		Long: `Query messaging conversation and CSAT metrics for a recent timeframe
(at most 1440 minutes). Skill and agent lists accept "all".`,
	}

	opsCmd.AddCommand(newOperationsConversationCmd())
	opsCmd.AddCommand(newOperationsCSATCmd())
	return opsCmd
}

// operationsFlags are the flags shared by operations and realtime queries.
type operationsFlags struct {
	timeframe int
	version   int
	skillIDs  string
	agentIDs  string
	groupIDs  string
	interval  int
	histogram string
}

func (f *operationsFlags) register(cmd *cobra.Command, names ...string) {
	fl := cmd.Flags()
	fl.IntVar(&f.version, "api-version", 1, "API version")
	for _, name := range names {
		switch name {
		case "timeframe":
			fl.IntVar(&f.timeframe, "timeframe", 60, "Minutes before now (1-1440)")
		case "skill-ids":
			fl.StringVar(&f.skillIDs, "skill-ids", "", `Comma-separated skill IDs or "all"`)
		case "agent-ids":
			fl.StringVar(&f.agentIDs, "agent-ids", "", `Comma-separated agent IDs or "all"`)
		case "group-ids":
			fl.StringVar(&f.groupIDs, "group-ids", "", `Comma-separated agent group IDs or "all"`)
		case "interval":
			fl.IntVar(&f.interval, "interval", 0, "Bucket size in minutes; must divide the timeframe")
		case "histogram":
			fl.StringVar(&f.histogram, "histogram", "", "Comma-separated bucket bounds in seconds (multiples of 5)")
		}
	}
}

func (f *operationsFlags) query() api.OperationsQuery {
	return api.OperationsQuery{
		Timeframe: f.timeframe,
		Version:   f.version,
		SkillIDs:  f.skillIDs,
		AgentIDs:  f.agentIDs,
		GroupIDs:  f.groupIDs,
		Interval:  f.interval,
		Histogram: f.histogram,
	}
}

func newOperationsConversationCmd() *cobra.Command {
	var flags operationsFlags
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Messaging conversation metrics",
		Example: `  # Last hour, all skills
  lp operations conversation --skill-ids all

  # Last 24 hours in hourly buckets
  lp operations conversation --timeframe 1440 --interval 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperations(cmd, flags.query(), (*api.MessagingOperations).MessagingConversation)
		},
	}
	flags.register(cmd, "timeframe", "skill-ids", "agent-ids", "interval")
	return cmd
}

func newOperationsCSATCmd() *cobra.Command {
	var flags operationsFlags
	cmd := &cobra.Command{
		Use:     "csat",
		Short:   "CSAT score distribution",
		Example: `  lp operations csat --timeframe 720 --agent-ids all`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperations(cmd, flags.query(), (*api.MessagingOperations).CSATDistribution)
		},
	}
	flags.register(cmd, "timeframe", "skill-ids", "agent-ids")
	return cmd
}

type operationsQuery func(*api.MessagingOperations, context.Context, api.OperationsQuery) (any, error)

func runOperations(cmd *cobra.Command, q api.OperationsQuery, query operationsQuery) error {
	return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
		ops, err := api.NewMessagingOperations(ctx, s)
		if err != nil {
			return err
		}
		data, err := query(ops, ctx, q)
		if err != nil {
			return fmt.Errorf("querying messaging operations: %w", err)
		}
		return printResult(cmd, data)
	})
}

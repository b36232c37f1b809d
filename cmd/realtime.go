package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newRealtimeCmd())
}

func newRealtimeCmd() *cobra.Command {
	rtCmd := &cobra.Command{
		Use:   "realtime",
		Short: "Query operational realtime metrics",
		Long: `Query queue health, engagement and agent activity, queue state, and
SLA distribution for a recent timeframe (at most 1440 minutes).`,
	}

	rtCmd.AddCommand(newRealtimeCmdFor(realtimeCommand{
		use:     "queue-health",
		short:   "Queue health metrics per skill",
		example: `  lp realtime queue-health --skill-ids all --timeframe 120 --interval 30`,
		flags:   []string{"timeframe", "skill-ids", "interval"},
		query:   (*api.OperationalRealtime).QueueHealth,
	}))
	rtCmd.AddCommand(newRealtimeCmdFor(realtimeCommand{
		use:     "engagement-activity",
		short:   "Engagement activity per agent and skill",
		example: `  lp realtime engagement-activity --agent-ids 7,8 --timeframe 60`,
		flags:   []string{"timeframe", "agent-ids", "skill-ids", "interval"},
		query:   (*api.OperationalRealtime).EngagementActivity,
	}))
	rtCmd.AddCommand(newRealtimeCmdFor(realtimeCommand{
		use:     "agent-activity",
		short:   "Agent state distribution (requires --agent-ids)",
		example: `  lp realtime agent-activity --agent-ids all --timeframe 30`,
		flags:   []string{"timeframe", "agent-ids", "interval"},
		query:   (*api.OperationalRealtime).AgentActivity,
	}))
	rtCmd.AddCommand(newRealtimeCmdFor(realtimeCommand{
		use:     "queue-state",
		short:   "Current queue size and available slots per skill",
		example: `  lp realtime queue-state --skill-ids all`,
		flags:   []string{"skill-ids"},
		query:   (*api.OperationalRealtime).CurrentQueueState,
	}))
	rtCmd.AddCommand(newRealtimeCmdFor(realtimeCommand{
		use:     "sla",
		short:   "Consumer wait time distribution before the first reply",
		example: `  lp realtime sla --skill-ids all --histogram 5,30,60,120`,
		flags:   []string{"timeframe", "skill-ids", "group-ids", "histogram"},
		query:   (*api.OperationalRealtime).SLAHistogram,
	}))
	return rtCmd
}

type realtimeCommand struct {
	use     string
	short   string
	example string
	flags   []string
	query   func(*api.OperationalRealtime, context.Context, api.OperationsQuery) (any, error)
}

func newRealtimeCmdFor(rc realtimeCommand) *cobra.Command {
	var flags operationsFlags
	cmd := &cobra.Command{
		Use:     rc.use,
		Short:   rc.short,
		Example: rc.example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRealtime(cmd, flags.query(), rc.query)
		},
	}
	flags.register(cmd, rc.flags...)
	return cmd
}

func runRealtime(cmd *cobra.Command, q api.OperationsQuery, query func(*api.OperationalRealtime, context.Context, api.OperationsQuery) (any, error)) error {
	return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
		rt, err := api.NewOperationalRealtime(ctx, s)
		if err != nil {
			return err
		}
		data, err := query(rt, ctx, q)
		if err != nil {
			return fmt.Errorf("querying operational realtime: %w", err)
		}
		return printResult(cmd, data)
	})
}

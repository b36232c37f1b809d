package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/output"
)

func init() {
	rootCmd.AddCommand(newConversationsCmd())
}

func newConversationsCmd() *cobra.Command {
	convCmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Search messaging conversation history",
		Long: `Search messaging conversations, fetch one conversation, or list the
conversations of a consumer. Records can be flattened into one table per
kind (info, message_record, survey, ...) and written to CSV or SQLite.`,
	}

	convCmd.AddCommand(newConversationsSearchCmd())
	convCmd.AddCommand(newConversationsGetCmd())
	convCmd.AddCommand(newConversationsConsumerCmd())
	return convCmd
}

// searchFlags are shared by the history search commands.
type searchFlags struct {
	from     string
	to       string
	body     string
	skillIDs string
	agentIDs string
	offset   int
	limit    int
	sort     string
	all      bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.from, "from", "", "Start of range: RFC3339, yyyy-mm-dd, ms epoch, or duration ago (e.g. 24h)")
	fl.StringVar(&f.to, "to", "now", "End of range, same formats as --from")
	fl.StringVar(&f.body, "body", "", "Search body as JSON, or @file")
	fl.StringVar(&f.skillIDs, "skill-ids", "", "Comma-separated skill IDs")
	fl.StringVar(&f.agentIDs, "agent-ids", "", "Comma-separated agent IDs")
	fl.IntVar(&f.offset, "offset", 0, "Record offset of the page")
	fl.IntVar(&f.limit, "limit", api.PageLimit, "Records per page (max 100)")
	fl.StringVar(&f.sort, "sort", "", "Sort order, e.g. start:desc")
	fl.BoolVar(&f.all, "all", false, "Fetch every page concurrently")
}

func (f *searchFlags) page() api.PageParams {
	return api.PageParams{Offset: f.offset, Limit: f.limit, Sort: f.sort}
}

func newConversationsSearchCmd() *cobra.Command {
	var (
		flags   searchFlags
		status  string
		flatten bool
		sink    tableSinkFlags
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search conversations by start time and filters",
		Example: `  # First page of yesterday's conversations
  lp conversations search --from 24h

  # Every closed conversation of a day, as JSON lines
  lp conversations search --from 2024-03-01 --to 2024-03-02 --status CLOSE --all

  # Flatten every conversation into per-kind CSV files
  lp conversations search --from 24h --all --flatten --csv ./out

  # Store message records in SQLite
  lp conversations search --from 168h --body @filter.json --all --flatten --sqlite history.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flatten && !flags.all {
				return fmt.Errorf("--flatten requires --all")
			}
			body, err := searchBody(flags.body, flags.from, flags.to, map[string]string{
				"status":   status,
				"skillIds": flags.skillIDs,
				"agentIds": flags.agentIDs,
			})
			if err != nil {
				return err
			}
			return runConversationsSearch(cmd, body, flags, flatten, sink)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&status, "status", "", "Comma-separated conversation states (OPEN, CLOSE)")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Flatten records into one table per kind")
	sink.register(cmd)
	return cmd
}

func runConversationsSearch(cmd *cobra.Command, body map[string]any, flags searchFlags, flatten bool, sink tableSinkFlags) error {
	return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
		mi, err := api.NewMessagingInteractions(ctx, s)
		if err != nil {
			return err
		}

		if !flags.all {
			data, err := mi.Conversations(ctx, body, flags.page())
			if err != nil {
				return fmt.Errorf("searching conversations: %w", err)
			}
			return printResult(cmd, data)
		}

		records, err := mi.AllConversations(ctx, body, fanOutOptions(flags.sort))
		getIO().ProgressDone()
		if err != nil {
			return fmt.Errorf("searching conversations: %w", err)
		}
		if flatten {
			tables, err := flattenedTables(records)
			if err != nil {
				return err
			}
			return writeTables(cmd, sink, tables)
		}
		return printRecords(cmd, records)
	})
}

// printRecords writes fetched records as JSON lines unless structured output
// was requested.
func printRecords(cmd *cobra.Command, records []map[string]any) error {
	handled, err := handleJSONOutput(cmd, records)
	if err != nil || handled {
		return err
	}
	return output.PrintJSONL(getIO().Out, records)
}

func newConversationsGetCmd() *cobra.Command {
	var (
		flatten bool
		sink    tableSinkFlags
	)
	cmd := &cobra.Command{
		Use:   "get <conversation-id>",
		Short: "Fetch one conversation",
		Example: `  lp conversations get 3f0c2a1e-8d4b-4b8e-9c55-0f4f7f1a2b3c
  lp conversations get 3f0c2a1e-8d4b-4b8e-9c55-0f4f7f1a2b3c --flatten --kind message_record`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				mi, err := api.NewMessagingInteractions(ctx, s)
				if err != nil {
					return err
				}
				data, err := mi.ConversationByID(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetching conversation %s: %w", args[0], err)
				}
				return printConversations(cmd, data, flatten, sink)
			})
		},
	}
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Flatten the conversation into one table per kind")
	sink.register(cmd)
	return cmd
}

func newConversationsConsumerCmd() *cobra.Command {
	var (
		status  string
		flatten bool
		sink    tableSinkFlags
	)
	cmd := &cobra.Command{
		Use:   "consumer <consumer-id>",
		Short: "List the conversations of a consumer",
		Example: `  lp conversations consumer 9b1f6c0e-2f3a-4d7e-8a61-5c2b9e0d4f17 --status OPEN
  lp conversations consumer 9b1f6c0e-2f3a-4d7e-8a61-5c2b9e0d4f17 --flatten --csv ./consumer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				mi, err := api.NewMessagingInteractions(ctx, s)
				if err != nil {
					return err
				}
				data, err := mi.ConversationsByConsumerID(ctx, args[0], splitCSV(status))
				if err != nil {
					return fmt.Errorf("fetching conversations of consumer %s: %w", args[0], err)
				}
				return printConversations(cmd, data, flatten, sink)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Comma-separated conversation states (OPEN, CLOSE)")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Flatten the conversations into one table per kind")
	sink.register(cmd)
	return cmd
}

// printConversations prints a conversation search response, or flattens its
// records.
func printConversations(cmd *cobra.Command, data any, flatten bool, sink tableSinkFlags) error {
	if !flatten {
		return printResult(cmd, data)
	}
	tables, err := flattenedTables(conversationRecords(data))
	if err != nil {
		return err
	}
	return writeTables(cmd, sink, tables)
}

// conversationRecords extracts the records of a conversation search response.
func conversationRecords(data any) []map[string]any {
	envelope, _ := data.(map[string]any)
	list, _ := envelope["conversationHistoryRecords"].([]any)
	records := make([]map[string]any, 0, len(list))
	for _, it := range list {
		if rec, ok := it.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}

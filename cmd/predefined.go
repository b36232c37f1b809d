package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/mapper"
	"github.com/engagekit/lp/internal/output"
)

func init() {
	rootCmd.AddCommand(newPredefinedCmd())
}

func newPredefinedCmd() *cobra.Command {
	pdCmd := &cobra.Command{
		Use:     "predefined",
		Aliases: []string{"canned"},
		Short:   "Read predefined content (canned responses) and categories",
	}

	pdCmd.AddCommand(newPredefinedContentCmd())
	pdCmd.AddCommand(newPredefinedCategoriesCmd())
	pdCmd.AddCommand(newPredefinedDefaultsCmd())
	pdCmd.AddCommand(newPredefinedExportCmd())
	return pdCmd
}

func newPredefinedContentCmd() *cobra.Command {
	var (
		version string
		lang    string
		sel     string
		groupBy string
		skills  string
		ids     string
	)
	cmd := &cobra.Command{
		Use:   "content [id]",
		Short: "List predefined content items, or fetch one by ID",
		Example: `  # English items of two skills
  lp predefined content --lang en-US --skill-ids 11,12

  # One item
  lp predefined content 4711

  # Include deleted items, grouped by category
  lp predefined content --include-deleted --group-by CATEGORIES`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := api.ContentQuery{
				Version:        version,
				IncludeDeleted: boolFlag(cmd, "include-deleted"),
				SanitizeData:   boolFlag(cmd, "sanitize"),
				Lang:           lang,
				Select:         sel,
				GroupBy:        groupBy,
				SkillIDs:       skills,
				IDs:            ids,
			}
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				pc, err := api.NewPredefinedContent(ctx, s)
				if err != nil {
					return err
				}
				var data any
				if len(args) == 1 {
					data, err = pc.ItemByID(ctx, args[0], q)
				} else {
					data, err = pc.Items(ctx, q)
				}
				if err != nil {
					return fmt.Errorf("reading predefined content: %w", err)
				}
				return printResult(cmd, data)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&version, "api-version", "", "API version")
	fl.StringVar(&lang, "lang", "", "Comma-separated languages, e.g. en-US,es")
	fl.StringVar(&sel, "select", "", "Fields to return")
	fl.StringVar(&groupBy, "group-by", "", "Group results, e.g. CATEGORIES")
	fl.StringVar(&skills, "skill-ids", "", "Comma-separated skill IDs")
	fl.StringVar(&ids, "ids", "", "Comma-separated item IDs")
	fl.Bool("include-deleted", false, "Include deleted items")
	fl.Bool("sanitize", false, "Sanitize item text")
	return cmd
}

func newPredefinedCategoriesCmd() *cobra.Command {
	var (
		version string
		sel     string
	)
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List predefined content categories",
		Example: `  lp predefined categories
  lp predefined categories --include-deleted --json --jq '.[].name'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := api.CategoryQuery{Version: version, Select: sel, IncludeDeleted: boolFlag(cmd, "include-deleted")}
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				pc, err := api.NewPredefinedCategories(ctx, s)
				if err != nil {
					return err
				}
				data, err := pc.List(ctx, q)
				if err != nil {
					return fmt.Errorf("listing categories: %w", err)
				}
				handled, err := handleJSONOutput(cmd, data)
				if err != nil || handled {
					return err
				}
				return renderCategories(data)
			})
		},
	}
	cmd.Flags().StringVar(&version, "api-version", "", "API version (default 2.0)")
	cmd.Flags().StringVar(&sel, "select", "", "Fields to return")
	cmd.Flags().Bool("include-deleted", false, "Include deleted categories")
	return cmd
}

func renderCategories(data any) error {
	s := getIO()
	names := mapper.CategoryNames(data)
	if len(names) == 0 {
		s.Printf("No categories found.\n")
		return nil
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id, names[id]}
	}
	output.PrintTable(s.Out, []string{"ID", "NAME"}, rows, s.IsTerminal())
	return nil
}

func newPredefinedDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults [template-id]",
		Short: "List the platform default content templates, or fetch one",
		Example: `  lp predefined defaults
  lp predefined defaults 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				pc, err := api.NewPredefinedContent(ctx, s)
				if err != nil {
					return err
				}
				var data any
				if len(args) == 1 {
					data, err = pc.DefaultItemByID(ctx, args[0])
				} else {
					data, err = pc.DefaultItems(ctx)
				}
				if err != nil {
					return fmt.Errorf("reading default content: %w", err)
				}
				return printResult(cmd, data)
			})
		},
	}
}

func newPredefinedExportCmd() *cobra.Command {
	var sink tableSinkFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Join predefined content with category names, one row per language",
		Long: `Export every predefined content item joined with its category names.
Each language entry of an item becomes one row. Text is stripped of line
breaks, tabs and double quotes. Items that cannot be read are skipped with
a warning.`,
		Example: `  # Print as a table
  lp predefined export --kind predefined_content

  # Write predefined_content.csv into ./export
  lp predefined export --csv ./export

  # Append to a SQLite database
  lp predefined export --sqlite content.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *auth.Session) error {
				tbl, err := predefinedExport(ctx, s)
				if err != nil {
					return err
				}
				return writeTables(cmd, sink, []*mapper.Table{tbl})
			})
		},
	}
	sink.register(cmd)
	return cmd
}

func predefinedExport(ctx context.Context, s *auth.Session) (*mapper.Table, error) {
	categories, err := api.NewPredefinedCategories(ctx, s)
	if err != nil {
		return nil, err
	}
	content, err := api.NewPredefinedContent(ctx, s)
	if err != nil {
		return nil, err
	}

	catList, err := categories.List(ctx, api.CategoryQuery{})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	sanitize := true
	items, err := content.Items(ctx, api.ContentQuery{Select: "accountid", SanitizeData: &sanitize})
	if err != nil {
		return nil, fmt.Errorf("listing predefined content: %w", err)
	}

	tbl, err := mapper.PredefinedTable(s.AccountID(), items, catList)
	if err != nil {
		out := getIO()
		out.Errorf("%s some items were skipped:\n%v\n", out.Warning("!"), err)
	}
	return tbl, nil
}

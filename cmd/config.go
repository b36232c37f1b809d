package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/config"
	"github.com/engagekit/lp/internal/output"
)

func newConfigCmd() *cobra.Command {
	var keys strings.Builder
	for _, k := range config.KnownKeyNames() {
		fmt.Fprintf(&keys, "  %-20s %s\n", k, config.Describe(k))
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage lp configuration",
		Long: `Get, set, and list configuration values stored in ~/.config/lp/config.yaml.

Valid keys:
` + keys.String() + `
OAuth1 signing is used when app_key, app_secret, access_token and
access_token_secret are all set; otherwise username and password log in.`,
	}

	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())

	return configCmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  lp config set account_id 12345678
  lp config set username analyst@example.com
  lp config set max_concurrency 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := cfg.Set(key, value); err != nil {
				return err
			}

			s := getIO()
			s.Printf("%s %s=%s\n", s.Success("✓"), s.Bold(key), value)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			val := cfg.Get(args[0])
			if val == "" {
				return fmt.Errorf("key %q is not set; run: lp config set %s <value>", args[0], args[0])
			}

			s := getIO()
			s.Printf("%s\n", val)
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			entries := cfg.List()
			handled, err := handleJSONOutput(cmd, entries)
			if err != nil || handled {
				return err
			}

			s := getIO()
			if len(entries) == 0 {
				s.Printf("%s\n", s.Muted("No configuration set. Run: lp config set <key> <value>"))
				s.Printf("%s %s\n", s.Muted("Config file:"), cfg.FilePath())
				return nil
			}

			headers := []string{"KEY", "VALUE"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Key, e.Value}
			}

			output.PrintTable(s.Out, headers, rows, s.IsTerminal())
			s.Printf("\n%s %s\n", s.Muted("Config file:"), cfg.FilePath())
			return nil
		},
	}
}

// Package cmd defines the CLI commands for the lp tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/iostreams"
)

var (
	// versionInfo is set by main via SetVersionInfo.
	versionInfo = struct {
		version string
		commit  string
		date    string
	}{version: "dev", commit: "none", date: "unknown"}

	// Global flag values bound to viper.
	cfgAccountID      string
	cfgQuiet          bool
	cfgDebug          bool
	cfgJSON           string
	cfgJQ             string
	cfgTemplate       string
	cfgYAML           bool
	cfgMaxConcurrency int
	cfgTimeout        string

	io *iostreams.IOStreams

	// clientOptions and resolverOptions are appended when a session is
	// built. Tests use them to reach a fake platform.
	clientOptions   []client.Option
	resolverOptions []client.ResolverOption
)

// SetVersionInfo stores build metadata for the version command.
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
}

var rootCmd = &cobra.Command{
	Use:   "lp",
	Short: "Engagement platform data CLI - conversations, agents, operations, and content",
	Long: `lp is a command-line tool for the engagement platform data APIs.

It searches messaging and engagement history, reads agent and operational
metrics, and exports predefined content. Paginated searches can be fetched
in full with --all, flattened into per-kind tables, and stored as CSV or
SQLite. Output can be formatted as JSON, YAML, tables, or filtered with jq
expressions and Go templates.

Configuration is stored in ~/.config/lp/config.yaml and can be overridden
with flags or environment variables (LP_ACCOUNT_ID, LP_USERNAME, LP_PASSWORD,
LP_APP_KEY, LP_APP_SECRET, LP_ACCESS_TOKEN, LP_ACCESS_TOKEN_SECRET).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		io = iostreams.New()
		io.Out = cmd.OutOrStdout()
		io.ErrOut = cmd.ErrOrStderr()
		io.SetQuiet(viper.GetBool("quiet"))

		if n := viper.GetInt("max_concurrency"); n < 0 {
			return fmt.Errorf("invalid max concurrency %d; must be positive", n)
		}
		if jsonOutputRequested(cmd) && cfgYAML {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}
		return nil
	},
}

func init() {
	// Load config file into global viper.
	home, _ := os.UserHomeDir()
	if home != "" {
		viper.SetConfigFile(home + "/.config/lp/config.yaml")
		viper.SetConfigType("yaml")
		_ = viper.ReadInConfig() // Ignore error if file doesn't exist yet.
	}

	// Bind env vars before flag parsing.
	viper.SetEnvPrefix("LP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Persistent flags available to all subcommands.
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgAccountID, "account-id", "a", "", "Account (site) ID (env: LP_ACCOUNT_ID)")
	pf.BoolVarP(&cfgQuiet, "quiet", "q", false, "Suppress non-essential output (env: LP_QUIET)")
	pf.BoolVar(&cfgDebug, "debug", false, "Log HTTP and session activity to stderr (env: LP_DEBUG)")
	pf.StringVar(&cfgJSON, "json", "", "Output JSON; optionally comma-separated field list")
	pf.StringVar(&cfgJQ, "jq", "", "Filter JSON output with a jq expression (requires --json)")
	pf.StringVar(&cfgTemplate, "template", "", "Format output with a Go template (requires --json)")
	pf.BoolVar(&cfgYAML, "yaml", false, "Output YAML")
	pf.IntVar(&cfgMaxConcurrency, "max-concurrency", 0, "Parallel page requests for --all (env: LP_MAX_CONCURRENCY)")
	pf.StringVar(&cfgTimeout, "timeout", "", "Per-request timeout, e.g. 2m (env: LP_TIMEOUT)")

	// Allow --json to be used without a value (e.g., "lp version --json").
	pf.Lookup("json").NoOptDefVal = " "

	// Bind flags to viper keys so env vars and config file values also work.
	_ = viper.BindPFlag("account_id", pf.Lookup("account-id"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
	_ = viper.BindPFlag("max_concurrency", pf.Lookup("max-concurrency"))
	_ = viper.BindPFlag("timeout", pf.Lookup("timeout"))

	// Register subcommands.
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// Execute runs the root command. Called from main. An interrupt cancels
// in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error in red to stderr.
		s := iostreams.New()
		fmt.Fprintln(s.ErrOut, s.Failure("Error: "+err.Error()))
		return err
	}
	return nil
}

// getIO returns the current IOStreams instance, initializing if needed.
func getIO() *iostreams.IOStreams {
	if io == nil {
		io = iostreams.New()
	}
	return io
}

// isDebug reports whether debug logging is enabled via --debug or LP_DEBUG.
func isDebug() bool {
	return viper.GetBool("debug")
}

// jsonOutputRequested reports whether the --json flag was explicitly set.
func jsonOutputRequested(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("json")
}

// yamlOutputRequested reports whether --yaml was set.
func yamlOutputRequested(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("yaml")
	return v
}

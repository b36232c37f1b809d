package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/auth"
)

func init() {
	rootCmd.AddCommand(newAuthCmd())
}

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Check account credentials",
	}
	authCmd.AddCommand(newAuthCheckCmd())
	return authCmd
}

// authReport is the outcome of lp auth check.
type authReport struct {
	AccountID string `json:"accountId"`
	Method    string `json:"method"`
	LoggedIn  bool   `json:"loggedIn"`
	Refreshed bool   `json:"refreshed"`
	LoggedOut bool   `json:"loggedOut"`
}

func newAuthCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured credentials",
		Long: `Verify the configured credentials. Username/password credentials are
logged in, refreshed, and logged out again. OAuth1 credentials sign
requests locally, so only their completeness is checked.`,
		Example: `  lp auth check
  LP_ACCOUNT_ID=12345678 lp auth check --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthCheck(cmd)
		},
	}
}

func runAuthCheck(cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	report := authReport{AccountID: s.AccountID(), Method: s.State().String()}
	if s.State() == auth.StateBearer {
		report.LoggedIn = true
		if err := s.Refresh(ctx); err != nil {
			closeSession(s)
			return fmt.Errorf("refreshing session: %w", err)
		}
		report.Refreshed = true
		if err := s.Logout(ctx); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
		report.LoggedOut = true
	}

	handled, err := handleJSONOutput(cmd, report)
	if err != nil || handled {
		return err
	}

	out := getIO()
	if report.Method == auth.StateOAuth.String() {
		out.Printf("%s account %s uses OAuth1 request signing\n", out.Success("✓"), report.AccountID)
		return nil
	}
	out.Printf("%s logged in, refreshed and logged out of account %s\n", out.Success("✓"), report.AccountID)
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/engagekit/lp/internal/api"
	"github.com/engagekit/lp/internal/auth"
	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/output"
)

// logoutTimeout bounds the logout issued when a command finishes.
const logoutTimeout = 30 * time.Second

// newLogger returns a development console logger on stderr when debug
// output is enabled, and a no-op logger otherwise.
func newLogger() *zap.Logger {
	if !isDebug() {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// requireAccountID returns the configured account ID or an error telling the
// user how to set it.
func requireAccountID() (string, error) {
	id := viper.GetString("account_id")
	if id == "" {
		return "", fmt.Errorf("account ID is required; set via `--account-id`, `LP_ACCOUNT_ID` env, or `lp config set account_id <id>`")
	}
	return id, nil
}

// loadCredentials picks OAuth1 credentials when all four OAuth keys are
// configured and username/password credentials otherwise.
func loadCredentials(accountID string) (auth.Credentials, error) {
	oauth := auth.OAuthCredential{
		Account:           accountID,
		ConsumerKey:       viper.GetString("app_key"),
		ConsumerSecret:    viper.GetString("app_secret"),
		AccessToken:       viper.GetString("access_token"),
		AccessTokenSecret: viper.GetString("access_token_secret"),
	}
	if oauth.ConsumerKey != "" && oauth.ConsumerSecret != "" && oauth.AccessToken != "" && oauth.AccessTokenSecret != "" {
		return oauth, nil
	}

	username, password := viper.GetString("username"), viper.GetString("password")
	if username != "" && password != "" {
		return auth.PasswordCredential{Account: accountID, Username: username, Password: password}, nil
	}

	return nil, fmt.Errorf("no credentials configured; set `username` and `password`, or `app_key`, `app_secret`, `access_token` and `access_token_secret` (lp config set <key> <value> or LP_<KEY> env)")
}

// newClient creates the HTTP client and domain resolver for the configured
// account.
func newClient() (*client.Client, *client.Resolver, error) {
	accountID, err := requireAccountID()
	if err != nil {
		return nil, nil, err
	}

	opts := []client.Option{
		client.WithLogger(newLogger()),
		client.WithUserAgent("lp/" + versionInfo.version),
	}
	if t := viper.GetDuration("timeout"); t > 0 {
		opts = append(opts, client.WithTimeout(t))
	}
	c := client.New(append(opts, clientOptions...)...)

	r := client.NewResolver(c, accountID, resolverOptions...)
	if domain := viper.GetString("data_access_domain"); domain != "" {
		r.Pin(client.ServiceDataAccess, domain)
	}
	return c, r, nil
}

// newSession opens an authenticated session from the current configuration
// state (viper config + env vars + flags).
func newSession(ctx context.Context) (*auth.Session, error) {
	c, r, err := newClient()
	if err != nil {
		return nil, err
	}
	creds, err := loadCredentials(r.AccountID())
	if err != nil {
		return nil, err
	}
	s, err := auth.Open(ctx, c, r, creds)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	return s, nil
}

// withSession runs fn with an open session and logs a bearer session out
// afterwards.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *auth.Session) error) error {
	ctx := cmd.Context()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(s)
	return fn(ctx, s)
}

func closeSession(s *auth.Session) {
	if s.State() != auth.StateBearer {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := s.Logout(ctx); err != nil {
		s.Client().Logger().Warn("logout failed", zap.Error(err))
	}
}

// fanOutOptions builds pagination options from --max-concurrency and
// reports page progress on stderr.
func fanOutOptions(sort string) api.FanOutOptions {
	s := getIO()
	return api.FanOutOptions{
		MaxConcurrency: viper.GetInt("max_concurrency"),
		Sort:           sort,
		OnPage: func(done, total int) {
			s.Progressf("fetched %d/%d pages", done, total)
		},
	}
}

// handleJSONOutput processes a value through --jq or --template filters, or
// prints it as pretty JSON or YAML. It returns true if structured output was
// requested (--json or --yaml), false otherwise.
func handleJSONOutput(cmd *cobra.Command, data any) (bool, error) {
	s := getIO()

	if yamlOutputRequested(cmd) {
		return true, output.PrintYAML(s.Out, data)
	}
	if !jsonOutputRequested(cmd) {
		return false, nil
	}

	if fields := jsonFields(cmd); len(fields) > 0 {
		normalized, err := output.Normalize(data)
		if err != nil {
			return true, err
		}
		data = output.FilterFields(normalized, fields)
	}

	jqExpr, _ := cmd.Flags().GetString("jq")
	tmpl, _ := cmd.Flags().GetString("template")

	switch {
	case jqExpr != "":
		return true, output.ApplyJQ(s.Out, data, jqExpr)
	case tmpl != "":
		return true, output.ApplyTemplate(s.Out, data, tmpl)
	default:
		return true, output.PrintJSON(s.Out, data)
	}
}

// printResult writes an API response. Without --json or --yaml the decoded
// body is printed as indented JSON.
func printResult(cmd *cobra.Command, data any) error {
	handled, err := handleJSONOutput(cmd, data)
	if err != nil || handled {
		return err
	}
	return output.PrintJSON(getIO().Out, data)
}

// jsonFields returns the field list given to --json, if any.
func jsonFields(cmd *cobra.Command) []string {
	v, _ := cmd.Flags().GetString("json")
	return splitCSV(v)
}

// parseTime converts a time flag into a millisecond epoch. It accepts
// "now", RFC3339, yyyy-mm-dd (UTC midnight), a millisecond epoch, or a Go
// duration that is subtracted from now (e.g. 24h).
func parseTime(value string, now time.Time) (int64, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return 0, fmt.Errorf("empty time value")
	case value == "now":
		return now.UnixMilli(), nil
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UnixMilli(), nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d).UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid time %q; use RFC3339, yyyy-mm-dd, a millisecond epoch, or a duration such as 24h", value)
}

// timeRange parses --from and --to relative to the same instant.
func timeRange(from, to string) (int64, int64, error) {
	now := time.Now()
	start, err := parseTime(from, now)
	if err != nil {
		return 0, 0, fmt.Errorf("--from: %w", err)
	}
	end, err := parseTime(to, now)
	if err != nil {
		return 0, 0, fmt.Errorf("--to: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("--to (%d) is before --from (%d)", end, start)
	}
	return start, end, nil
}

// readBody parses a JSON search body given inline or as @file.
func readBody(value string) (map[string]any, error) {
	if value == "" {
		return map[string]any{}, nil
	}
	raw := []byte(value)
	if strings.HasPrefix(value, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		raw = b
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parsing body: %w", err)
	}
	return body, nil
}

// searchBody builds a history search body: the --body document with the
// start range and any list filters set from flags.
func searchBody(raw, from, to string, filters map[string]string) (map[string]any, error) {
	body, err := readBody(raw)
	if err != nil {
		return nil, err
	}
	if from != "" || body["start"] == nil {
		if from == "" {
			return nil, fmt.Errorf("--from is required unless --body sets start")
		}
		start, end, err := timeRange(from, to)
		if err != nil {
			return nil, err
		}
		body["start"] = map[string]any{"from": start, "to": end}
	}
	for key, value := range filters {
		if list := splitCSV(value); len(list) > 0 {
			body[key] = list
		}
	}
	return body, nil
}

// boolFlag returns a pointer to the flag's value if it was set.
func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// splitCSV splits a comma-separated string into trimmed, non-empty parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/client"
	"github.com/engagekit/lp/internal/output"
)

func init() {
	rootCmd.AddCommand(newDomainCmd())
}

// serviceDomain is one resolved service.
type serviceDomain struct {
	Service string `json:"service"`
	Domain  string `json:"domain"`
}

func newDomainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domain [service...]",
		Short: "Resolve service domains for the account",
		Long: fmt.Sprintf(`Resolve the base domain of one or more services through the domain
discovery endpoint. No login is needed. Without arguments every service
used by lp is resolved.

Known services: %v`, client.KnownServices()),
		Example: `  # Resolve the messaging history domain
  lp domain msgHist

  # Resolve every service as JSON
  lp domain --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDomain(cmd, args)
		},
	}
}

func runDomain(cmd *cobra.Command, services []string) error {
	_, r, err := newClient()
	if err != nil {
		return err
	}
	if len(services) == 0 {
		services = client.KnownServices()
	}

	domains := make([]serviceDomain, 0, len(services))
	for _, svc := range services {
		d, err := r.Resolve(cmd.Context(), svc)
		if err != nil {
			return err
		}
		domains = append(domains, serviceDomain{Service: svc, Domain: d})
	}

	handled, err := handleJSONOutput(cmd, domains)
	if err != nil || handled {
		return err
	}

	s := getIO()
	rows := make([][]string, len(domains))
	for i, d := range domains {
		rows[i] = []string{d.Service, d.Domain}
	}
	output.PrintTable(s.Out, []string{"SERVICE", "DOMAIN"}, rows, s.IsTerminal())
	return nil
}

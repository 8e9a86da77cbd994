package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the Puter AI service",
		Long: `Send a minimal probe request to verify the service is reachable
and the stored auth token is accepted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPing(cmd.Context())
		},
	}
}

func (a *App) runPing(ctx context.Context) error {
	provider, err := a.createProvider()
	if err != nil {
		return a.failSetup(err)
	}

	ok := provider.TestConnection(ctx)

	if a.jsonOutput {
		fmt.Fprintf(a.stdout, "{\"ok\":%t}\n", ok)
	} else if ok {
		fmt.Fprintln(a.stdout, "OK: service reachable, token accepted")
	}

	if !ok {
		if !a.jsonOutput {
			fmt.Fprintln(a.stderr, "FAILED: service unreachable or token rejected")
		}
		return exitWithCode(ExitNetwork, fmt.Errorf("connection test failed"))
	}

	return nil
}

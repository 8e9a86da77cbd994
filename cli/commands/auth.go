package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fernlabs/puterai/cli/keystore"
)

func (a *App) newAuthCommand() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage Puter auth tokens",
		Long:  `Manage Puter auth tokens for one or more accounts. Tokens are stored encrypted.`,
	}

	auth.AddCommand(a.newAuthSetCommand())
	auth.AddCommand(a.newAuthListCommand())
	auth.AddCommand(a.newAuthDeleteCommand())

	return auth
}

func (a *App) newAuthSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [account]",
		Short: "Store an auth token for an account",
		Long:  `Store the auth token for an account. The token is prompted without echo for security.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := a.account
			if len(args) == 1 {
				account = args[0]
			}
			return a.runAuthSet(account)
		},
	}
}

func (a *App) newAuthListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with stored tokens",
		Long:  `List all accounts that have a stored token. Only account names are shown, never token values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuthList()
		},
	}
}

func (a *App) newAuthDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete the stored token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuthDelete(args[0])
		},
	}
}

func (a *App) runAuthSet(account string) error {
	token, err := a.readToken(account)
	if err != nil {
		return err
	}

	if token == "" {
		return fmt.Errorf("auth token cannot be empty")
	}

	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Set(account, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Fprintf(a.stdout, "Auth token for %s stored successfully.\n", account)
	return nil
}

// readToken prompts for a token, without echo when stdin is a terminal.
func (a *App) readToken(account string) (string, error) {
	fmt.Fprintf(a.stdout, "Enter Puter auth token for %s: ", account)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tokenBytes, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		fmt.Fprintln(a.stdout) // Newline after hidden input
		return string(tokenBytes), nil
	}

	// Fallback for non-terminal (e.g., piped input)
	reader := bufio.NewReader(a.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runAuthList() error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	accounts, err := ks.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Fprintln(a.stdout, "No auth tokens stored.")
		return nil
	}

	fmt.Fprintln(a.stdout, "Stored accounts:")
	for _, account := range accounts {
		fmt.Fprintf(a.stdout, "  - %s\n", account)
	}

	return nil
}

func (a *App) runAuthDelete(account string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Delete(account); err != nil {
		if _, ok := err.(*keystore.ErrTokenNotFound); ok {
			return fmt.Errorf("no token stored for %s", account)
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}

	fmt.Fprintf(a.stdout, "Auth token for %s deleted.\n", account)
	return nil
}

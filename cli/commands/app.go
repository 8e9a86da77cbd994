// Package commands implements the puterai CLI.
package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernlabs/puterai/cli/config"
	"github.com/fernlabs/puterai/cli/keystore"
	"github.com/fernlabs/puterai/core"
	"github.com/fernlabs/puterai/puter"
)

// DefaultAccount is the account name used when none is configured.
const DefaultAccount = "default"

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ProviderFactory creates a provider from an auth token and client options.
type ProviderFactory func(token string, opts ...puter.Option) core.Provider

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newProvider ProviderFactory
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	cfgFile    string
	account    string
	model      string
	baseURL    string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config

	chatPrompt      string
	chatSystem      string
	chatTemperature float32
	chatMaxTokens   int
	chatStream      bool
	chatTimeout     time.Duration
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithProviderFactory injects a provider factory dependency.
func WithProviderFactory(factory ProviderFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newProvider = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig: config.LoadConfig,
		newProvider: func(token string, opts ...puter.Option) core.Provider {
			return puter.New(token, opts...)
		},
		newKeystore: keystore.NewKeystore,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "puterai",
		Short: "Puter AI - chat with models through the Puter driver API",
		Long: `puterai is a command-line interface for the Puter AI service.

Use it to store auth tokens, chat with models, and inspect the model catalog.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		// Command handlers print their own error output; main reports
		// anything cobra surfaces beyond that (flag and config errors).
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.puterai/config.yaml)")
	root.PersistentFlags().StringVar(&a.account, "account", "", "account holding the auth token (default \"default\")")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. gpt-5-nano)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Puter API base URL")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newPingCommand())
	root.AddCommand(a.newAuthCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Apply config defaults if flags not set.
	if a.account == "" && cfg.DefaultAccount != "" {
		a.account = cfg.DefaultAccount
	}
	if a.account == "" {
		a.account = DefaultAccount
	}

	// Per-account overrides beat global config, flags beat both.
	if ac := cfg.GetAccount(a.account); ac != nil {
		if a.model == "" && ac.Model != "" {
			a.model = ac.Model
		}
		if a.baseURL == "" && ac.BaseURL != "" {
			a.baseURL = ac.BaseURL
		}
	}
	if a.model == "" && cfg.DefaultModel != "" {
		a.model = cfg.DefaultModel
	}
	if a.baseURL == "" && cfg.BaseURL != "" {
		a.baseURL = cfg.BaseURL
	}

	return nil
}

// clientOptions assembles puter client options from resolved CLI state.
func (a *App) clientOptions() []puter.Option {
	var opts []puter.Option
	if a.baseURL != "" {
		opts = append(opts, puter.WithBaseURL(a.baseURL))
	}
	if a.cfg != nil {
		if a.cfg.TimeoutSeconds > 0 {
			opts = append(opts, puter.WithTimeout(time.Duration(a.cfg.TimeoutSeconds)*time.Second))
		}
		if a.cfg.MaxRetries > 0 {
			opts = append(opts, puter.WithMaxRetries(a.cfg.MaxRetries))
		}
		if a.cfg.RetryDelayMS > 0 {
			opts = append(opts, puter.WithRetryDelay(time.Duration(a.cfg.RetryDelayMS)*time.Millisecond))
		}
	}
	if a.verbose || (a.cfg != nil && a.cfg.Debug) {
		opts = append(opts, puter.WithDebug(true))
	}
	return opts
}

// lookupToken resolves the auth token for the active account.
// The environment variable wins over the keystore.
func (a *App) lookupToken() (string, error) {
	if token := os.Getenv(puter.DefaultAuthTokenEnvVar); token != "" {
		return token, nil
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", fmt.Errorf("failed to open keystore: %w", err)
	}

	token, err := ks.Get(a.account)
	if err != nil {
		if _, ok := err.(*keystore.ErrTokenNotFound); ok {
			return "", fmt.Errorf("no token for account %q: run 'puterai auth set %s' or set %s",
				a.account, a.account, puter.DefaultAuthTokenEnvVar)
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return token, nil
}

// createProvider builds a provider for the active account.
func (a *App) createProvider() (core.Provider, error) {
	token, err := a.lookupToken()
	if err != nil {
		return nil, err
	}
	return a.newProvider(token, a.clientOptions()...), nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}

package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/config"
	"ralphx-cli/internal/debuglog"
	"ralphx-cli/internal/format"
	"ralphx-cli/internal/store"
	"ralphx-cli/internal/tui"
)

type App struct {
	Server     string
	Token      string
	Format     string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "ralphx",
		Short:        "RalphX client CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  ralphx

  # Scriptable commands
  ralphx loops list

  # Follow a running loop's iteration stream
  ralphx loops watch loop-3f

  # Direct loop lookup (shortcut for: ralphx loops show <loop-id>)
  ralphx loop-3f
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("RALPHX_SERVER", ""), "Backend base URL (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", "", "Bearer token (overrides RALPHX_TOKEN and config file)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "json", "Output format: json or jsonl")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newLoopsCmd(app))
	cmd.AddCommand(newWorkflowsCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newResourcesCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newReadyCheckCmd(app))
	cmd.AddCommand(newDocCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadClient resolves configuration (flag > env > file > default) and builds
// the API client.
func (app *App) loadClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(app.Server) != "" {
		cfg.Server = strings.TrimRight(strings.TrimSpace(app.Server), "/")
	}
	if strings.TrimSpace(app.Token) != "" {
		cfg.Token = strings.TrimSpace(app.Token)
	}
	log := debuglog.New(cfg.Dir)
	opts := []api.Option{api.WithTimeout(cfg.RequestTimeout), api.WithLogger(log)}
	if cfg.Token != "" {
		opts = append(opts, api.WithToken(cfg.Token))
	}
	return api.New(cfg.Server, opts...), cfg, nil
}

func runTUI(app *App) error {
	client, cfg, err := app.loadClient()
	if err != nil {
		return err
	}
	cache, err := store.Open(context.Background(), cfg.Dir)
	if err != nil {
		return err
	}
	defer cache.Close()
	return tui.Run(tui.Deps{
		Client: client,
		Cache:  cache,
		Dir:    cfg.Dir,
		Server: cfg.Server,
		Log:    debuglog.New(cfg.Dir),
	})
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

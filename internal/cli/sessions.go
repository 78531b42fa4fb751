package cli

import (
	"github.com/spf13/cobra"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and cancel iteration sessions",
	}

	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's status and progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			s, err := client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, s)
		},
	}

	active := &cobra.Command{
		Use:   "active <loop-id>",
		Short: "Show the loop's running session, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			s, err := client.ActiveSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s == nil {
				return writeOut(cmd, app, map[string]any{"active": false})
			}
			return writeOut(cmd, app, s)
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Request cancellation of a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			if err := client.CancelSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"cancelled": args[0]})
		},
	}

	cmd.AddCommand(show, active, cancel)
	return cmd
}

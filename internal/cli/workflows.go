package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ralphx-cli/internal/model"
	"ralphx-cli/internal/store"
)

func newWorkflowsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Inspect multi-step workflows",
	}

	var projectID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := app.loadClient()
			if err != nil {
				return err
			}
			ws, err := client.ListWorkflows(cmd.Context(), projectID)
			if err != nil {
				// Offline fallback: serve the last snapshot if one exists.
				if cache, cerr := store.Open(cmd.Context(), cfg.Dir); cerr == nil {
					defer cache.Close()
					if cached, fetchedAt, gerr := cache.Workflows(cmd.Context()); gerr == nil {
						var filtered []model.Workflow
						for _, w := range cached {
							if projectID == "" || w.ProjectID == projectID {
								filtered = append(filtered, w)
							}
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "backend unreachable; cached snapshot from %s\n",
							fetchedAt.Format(time.RFC3339))
						return writeOut(cmd, app, filtered)
					}
				}
				return err
			}
			if cache, cerr := store.Open(cmd.Context(), cfg.Dir); cerr == nil {
				_ = cache.PutWorkflows(cmd.Context(), ws)
				_ = cache.Close()
			}
			return writeOut(cmd, app, ws)
		},
	}
	list.Flags().StringVar(&projectID, "project", "", "Filter by project id")

	show := &cobra.Command{
		Use:   "show <workflow-id>",
		Short: "Show one workflow with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			w, err := client.GetWorkflow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, w)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

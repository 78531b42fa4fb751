package cli

import (
	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage work items",
	}

	var projectID, loopID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			items, err := client.ListItems(cmd.Context(), projectID, loopID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, items)
		},
	}
	list.Flags().StringVar(&projectID, "project", "", "Filter by project id")
	list.Flags().StringVar(&loopID, "loop", "", "Filter by loop id")

	show := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			it, err := client.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, it)
		},
	}

	var createProject, createLoop, body string
	create := &cobra.Command{
		Use:   "create <title>",
		Short: "Queue a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			it, err := client.CreateItem(cmd.Context(), api.CreateItemRequest{
				ProjectID: createProject,
				LoopID:    createLoop,
				Title:     args[0],
				Body:      body,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, it)
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "Project id (required)")
	create.Flags().StringVar(&createLoop, "loop", "", "Loop to feed the item to")
	create.Flags().StringVar(&body, "body", "", "Item body (markdown)")
	_ = create.MarkFlagRequired("project")

	cmd.AddCommand(list, show, create)
	return cmd
}

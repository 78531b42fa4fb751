package cli

import (
	"os"

	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
)

func newResourcesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Manage project resources (context files, specs, prompts)",
	}

	var projectID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			rs, err := client.ListResources(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, rs)
		},
	}
	list.Flags().StringVar(&projectID, "project", "", "Filter by project id")

	show := &cobra.Command{
		Use:   "show <resource-id>",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			r, err := client.GetResource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, r)
		},
	}

	var createProject, kind, file string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body string
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				body = string(b)
			}
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			r, err := client.CreateResource(cmd.Context(), api.CreateResourceRequest{
				ProjectID: createProject,
				Name:      args[0],
				Kind:      kind,
				Body:      body,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, r)
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "Project id (required)")
	create.Flags().StringVar(&kind, "kind", "context", "Resource kind")
	create.Flags().StringVar(&file, "file", "", "Read body from file")
	_ = create.MarkFlagRequired("project")

	del := &cobra.Command{
		Use:   "delete <resource-id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			return client.DeleteResource(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, show, create, del)
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			ps, err := client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, ps)
		},
	}

	show := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			p, err := client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p)
		},
	}

	var path string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			p, err := client.CreateProject(cmd.Context(), api.CreateProjectRequest{Name: args[0], Path: path})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p)
		},
	}
	create.Flags().StringVar(&path, "path", "", "Project source path on the backend host")

	archive := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			return client.ArchiveProject(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, show, create, archive)
	return cmd
}

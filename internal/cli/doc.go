package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDocCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Read and write a project's design doc",
	}

	var raw bool
	show := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Print the design doc",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			doc, err := client.GetDesignDoc(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(os.Stdout, doc.Body)
				return nil
			}
			return writeOut(cmd, app, doc)
		},
	}
	show.Flags().BoolVar(&raw, "raw", false, "Print only the markdown body")

	var file string
	write := &cobra.Command{
		Use:   "write <project-id>",
		Short: "Replace the design doc (previous version is backed up)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			b, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			doc, err := client.WriteDesignDoc(cmd.Context(), args[0], string(b))
			if err != nil {
				return err
			}
			return writeOut(cmd, app, doc)
		},
	}
	write.Flags().StringVar(&file, "file", "", "Markdown file to upload")

	backups := &cobra.Command{
		Use:   "backups <project-id>",
		Short: "List design doc backups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			bs, err := client.ListDesignDocBackups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, bs)
		},
	}

	restore := &cobra.Command{
		Use:   "restore <project-id> <backup-id>",
		Short: "Restore a design doc backup",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			doc, err := client.RestoreDesignDocBackup(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, doc)
		},
	}

	cmd.AddCommand(show, write, backups, restore)
	return cmd
}

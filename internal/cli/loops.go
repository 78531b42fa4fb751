package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/model"
	"ralphx-cli/internal/stream"
	"ralphx-cli/internal/template"
)

func newLoopsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loops",
		Short: "Manage and monitor AI development loops",
	}

	var projectID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List loops",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			ls, err := client.ListLoops(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, ls)
		},
	}
	list.Flags().StringVar(&projectID, "project", "", "Filter by project id")

	show := &cobra.Command{
		Use:   "show <loop-id>",
		Short: "Show one loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			l, err := client.GetLoop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, l)
		},
	}

	var (
		createProject string
		prompt        string
		itemSource    string
		maxIterations int
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := model.ItemSource(itemSource)
			if src != model.ItemSourceNone && src != model.ItemSourceItems {
				return fmt.Errorf("invalid --item-source %q (none|items)", itemSource)
			}
			if problems := template.Validate(prompt, src == model.ItemSourceItems); len(problems) > 0 {
				return fmt.Errorf("invalid prompt template: %s", strings.Join(problems, "; "))
			}
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			l, err := client.CreateLoop(cmd.Context(), api.CreateLoopRequest{
				ProjectID:      createProject,
				Name:           args[0],
				PromptTemplate: prompt,
				ItemSource:     src,
				MaxIterations:  maxIterations,
				IdempotencyKey: uuid.NewString(),
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, l)
		},
	}
	create.Flags().StringVar(&createProject, "project", "", "Project id (required)")
	create.Flags().StringVar(&prompt, "prompt", "", "Prompt template")
	create.Flags().StringVar(&itemSource, "item-source", "none", "Item source (none|items)")
	create.Flags().IntVar(&maxIterations, "max-iterations", 10, "Default iteration count")
	_ = create.MarkFlagRequired("project")

	var iterations int
	start := &cobra.Command{
		Use:   "start <loop-id>",
		Short: "Start an iteration session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			s, err := client.StartLoop(cmd.Context(), args[0], api.StartLoopRequest{
				Iterations:     iterations,
				IdempotencyKey: uuid.NewString(),
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, s)
		},
	}
	start.Flags().IntVar(&iterations, "iterations", 0, "Iteration count (0 = loop default)")

	stop := &cobra.Command{
		Use:   "stop <loop-id>",
		Short: "Stop a running loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			return client.StopLoop(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, show, create, start, stop, newLoopsWatchCmd(app))
	return cmd
}

// newLoopsWatchCmd follows a loop's active session, printing each event as a
// JSON line. Reconnects transparently; exits non-zero when the stream ends
// in an error or is lost.
func newLoopsWatchCmd(app *App) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "watch <loop-id>",
		Short: "Follow a loop's live iteration stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}

			id := sessionID
			if id == "" {
				sess, err := client.ActiveSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if sess == nil {
					return fmt.Errorf("loop %s has no running session", args[0])
				}
				id = sess.ID
			}

			r := stream.New(stream.ClientBackend{Client: client}, id)
			defer r.Stop()
			r.Connect(0)

			for u := range r.Updates() {
				if u.Event != nil {
					if err := writeOut(cmd, app, u.Event); err != nil {
						return err
					}
				}
				if !u.State.Terminal() {
					continue
				}
				switch u.State {
				case stream.StateDone:
					if u.Reason == stream.ReasonSessionGone {
						fmt.Fprintln(os.Stderr, "session ended without a terminal event")
					}
					return nil
				case stream.StateCancelled:
					return nil
				case stream.StateErrored:
					msg := "session failed"
					if u.Event != nil && u.Event.ErrorMessage != "" {
						msg = u.Event.ErrorMessage
					}
					return fmt.Errorf("%s", msg)
				case stream.StateLost:
					return fmt.Errorf("connection lost after repeated reconnect failures")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Watch a specific session id instead of the loop's active one")
	return cmd
}

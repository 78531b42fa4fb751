package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/model"
)

const readyCheckPollInterval = 2 * time.Second

func newReadyCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ready-check",
		Short: "Run pre-flight checks on a loop configuration",
	}

	run := &cobra.Command{
		Use:   "run <loop-id>",
		Short: "Submit a ready check and poll until it settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			rc, err := client.SubmitReadyCheck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rc, err = pollReadyCheck(cmd, client, rc.ID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, rc)
		},
	}

	answer := &cobra.Command{
		Use:   "answer <check-id> <question-id>=<answer>...",
		Short: "Answer a ready check's questions and re-poll",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := parseAnswers(args[1:])
			if err != nil {
				return err
			}
			client, _, err := app.loadClient()
			if err != nil {
				return err
			}
			rc, err := client.AnswerReadyCheck(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			rc, err = pollReadyCheck(cmd, client, rc.ID)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, rc)
		},
	}

	cmd.AddCommand(run, answer)
	return cmd
}

func pollReadyCheck(cmd *cobra.Command, client *api.Client, id string) (*model.ReadyCheck, error) {
	for {
		rc, err := client.GetReadyCheck(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		if rc.Status != model.ReadyAnalyzing {
			return rc, nil
		}
		select {
		case <-cmd.Context().Done():
			return nil, cmd.Context().Err()
		case <-time.After(readyCheckPollInterval):
		}
	}
}

func parseAnswers(pairs []string) ([]model.ReadyQuestion, error) {
	out := make([]model.ReadyQuestion, 0, len(pairs))
	for _, p := range pairs {
		id, ans, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid answer %q (want <question-id>=<answer>)", p)
		}
		out = append(out, model.ReadyQuestion{ID: strings.TrimSpace(id), Answer: ans})
	}
	return out, nil
}

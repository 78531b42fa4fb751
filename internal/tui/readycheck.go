package tui

import (
	"strings"

	"ralphx-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// readyModel runs a pre-flight ready check against one loop: submit, poll
// while the backend analyzes, answer any questions it raises, resubmit.
type readyModel struct {
	loopID   string
	loopName string

	check *model.ReadyCheck
	err   error

	inputs   []textinput.Model
	focusIdx int
	// answering is true while the question form is being filled in; polling
	// is suspended so the form doesn't get rebuilt under the user.
	answering bool
}

func newReadyModel(loopID, loopName string) readyModel {
	return readyModel{loopID: loopID, loopName: loopName}
}

func (r readyModel) setCheck(check *model.ReadyCheck, err error) readyModel {
	r.err = err
	if err != nil {
		return r
	}
	r.check = check
	if check.Status == model.ReadyQuestions && !r.answering {
		r.inputs = make([]textinput.Model, len(check.Questions))
		for i, q := range check.Questions {
			in := textinput.New()
			in.Placeholder = "answer"
			in.CharLimit = 500
			in.SetValue(q.Answer)
			r.inputs[i] = in
		}
		if len(r.inputs) > 0 {
			r.inputs[0].Focus()
			r.focusIdx = 0
			r.answering = true
		}
	}
	return r
}

// update handles form navigation. It reports submit=true when every question
// has an answer and the user confirms.
func (r readyModel) update(msg tea.Msg) (readyModel, tea.Cmd, bool) {
	if !r.answering {
		return r, nil, false
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "tab", "down":
			if r.focusIdx < len(r.inputs)-1 {
				r.inputs[r.focusIdx].Blur()
				r.focusIdx++
				r.inputs[r.focusIdx].Focus()
				return r, nil, false
			}
			if key.String() == "enter" && r.complete() {
				r.answering = false
				return r, nil, true
			}
			return r, nil, false
		case "shift+tab", "up":
			if r.focusIdx > 0 {
				r.inputs[r.focusIdx].Blur()
				r.focusIdx--
				r.inputs[r.focusIdx].Focus()
			}
			return r, nil, false
		}
	}
	var cmd tea.Cmd
	r.inputs[r.focusIdx], cmd = r.inputs[r.focusIdx].Update(msg)
	return r, cmd, false
}

func (r readyModel) complete() bool {
	for _, in := range r.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return false
		}
	}
	return len(r.inputs) > 0
}

// answers returns the questions with answers filled in from the form.
func (r readyModel) answers() []model.ReadyQuestion {
	if r.check == nil {
		return nil
	}
	out := make([]model.ReadyQuestion, len(r.check.Questions))
	for i, q := range r.check.Questions {
		q.Answer = strings.TrimSpace(r.inputs[i].Value())
		out[i] = q
	}
	return out
}

func (r readyModel) view(width int) string {
	title := "Ready check: " + r.loopName

	if r.err != nil {
		body := lipgloss.NewStyle().Foreground(colorError).Render("error: "+r.err.Error()) +
			"\n\n" + styleMuted().Render("esc: close")
		return renderModalBox(width, title, body)
	}
	if r.check == nil {
		return renderModalBox(width, title, "submitting…")
	}

	var lines []string
	switch r.check.Status {
	case model.ReadyAnalyzing:
		lines = append(lines, "analyzing loop configuration…")
	case model.ReadyQuestions:
		lines = append(lines, "The backend needs a few answers:", "")
		for i, q := range r.check.Questions {
			marker := "  "
			if i == r.focusIdx {
				marker = "> "
			}
			lines = append(lines, marker+q.Text, "  "+r.inputs[i].View())
		}
		lines = append(lines, "", styleMuted().Render("enter: next/submit   esc: close"))
	case model.ReadyReady:
		ok := lipgloss.NewStyle().Foreground(colorRunning).Bold(true).Render("ready")
		lines = append(lines, ok)
		if r.check.Summary != "" {
			lines = append(lines, "", r.check.Summary)
		}
		lines = append(lines, "", styleMuted().Render("esc: close"))
	case model.ReadyFailed:
		bad := lipgloss.NewStyle().Foreground(colorError).Bold(true).Render("not ready")
		lines = append(lines, bad)
		if r.check.Summary != "" {
			lines = append(lines, "", r.check.Summary)
		}
		lines = append(lines, "", styleMuted().Render("esc: close"))
	default:
		lines = append(lines, string(r.check.Status))
	}
	return renderModalBox(width, title, strings.Join(lines, "\n"))
}

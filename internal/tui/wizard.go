package tui

import (
	"fmt"
	"strconv"
	"strings"

	"ralphx-cli/internal/api"
	"ralphx-cli/internal/model"
	"ralphx-cli/internal/template"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

type wizardStep int

const (
	wizStepName wizardStep = iota
	wizStepItemSource
	wizStepTemplate
	wizStepIterations
	wizStepConfirm
)

func (s wizardStep) title() string {
	switch s {
	case wizStepName:
		return "New loop: name"
	case wizStepItemSource:
		return "New loop: item source"
	case wizStepTemplate:
		return "New loop: prompt template"
	case wizStepIterations:
		return "New loop: max iterations"
	case wizStepConfirm:
		return "New loop: confirm"
	}
	return "New loop"
}

// wizardModel collects a loop definition one step at a time. Each step
// validates on advance; problems keep the user on the step.
type wizardModel struct {
	projectID string
	step      wizardStep

	name       textinput.Model
	itemSource model.ItemSource
	prompt     textarea.Model
	iterations textinput.Model

	problems []string
	done     bool
}

func newWizard(projectID string) wizardModel {
	name := textinput.New()
	name.Placeholder = "loop name"
	name.CharLimit = 120
	name.Focus()

	prompt := textarea.New()
	prompt.Placeholder = "Work on {task} for project {project}…"
	prompt.SetHeight(8)

	iters := textinput.New()
	iters.Placeholder = "10"
	iters.CharLimit = 5

	return wizardModel{
		projectID:  projectID,
		step:       wizStepName,
		name:       name,
		itemSource: model.ItemSourceNone,
		prompt:     prompt,
		iterations: iters,
	}
}

// validateWizardStep checks one step's raw values. Kept free of bubbletea
// state so it can be tested directly.
func validateWizardStep(step wizardStep, name, prompt string, itemDriven bool, iterations string) []string {
	switch step {
	case wizStepName:
		if strings.TrimSpace(name) == "" {
			return []string{"name is required"}
		}
	case wizStepTemplate:
		return template.Validate(prompt, itemDriven)
	case wizStepIterations:
		s := strings.TrimSpace(iterations)
		if s == "" {
			return nil // default applies
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return []string{"max iterations must be a positive number"}
		}
	}
	return nil
}

func (w wizardModel) update(msg tea.Msg) (wizardModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			// The textarea needs enter for newlines; advance with ctrl+d there.
			if w.step != wizStepTemplate {
				return w.advance(), nil
			}
		case "ctrl+d":
			if w.step == wizStepTemplate {
				return w.advance(), nil
			}
		case "left", "right", "tab":
			if w.step == wizStepItemSource {
				if w.itemSource == model.ItemSourceNone {
					w.itemSource = model.ItemSourceItems
				} else {
					w.itemSource = model.ItemSourceNone
				}
				return w, nil
			}
		}
	}

	var cmd tea.Cmd
	switch w.step {
	case wizStepName:
		w.name, cmd = w.name.Update(msg)
	case wizStepTemplate:
		w.prompt, cmd = w.prompt.Update(msg)
	case wizStepIterations:
		w.iterations, cmd = w.iterations.Update(msg)
	}
	return w, cmd
}

func (w wizardModel) advance() wizardModel {
	w.problems = validateWizardStep(w.step, w.name.Value(), w.prompt.Value(),
		w.itemSource == model.ItemSourceItems, w.iterations.Value())
	if len(w.problems) > 0 {
		return w
	}
	if w.step == wizStepConfirm {
		w.done = true
		return w
	}
	w.step++
	switch w.step {
	case wizStepTemplate:
		w.name.Blur()
		w.prompt.Focus()
	case wizStepIterations:
		w.prompt.Blur()
		w.iterations.Focus()
	case wizStepConfirm:
		w.iterations.Blur()
	}
	return w
}

func (w wizardModel) request() api.CreateLoopRequest {
	iters := 10
	if s := strings.TrimSpace(w.iterations.Value()); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			iters = n
		}
	}
	return api.CreateLoopRequest{
		ProjectID:      w.projectID,
		Name:           strings.TrimSpace(w.name.Value()),
		PromptTemplate: w.prompt.Value(),
		ItemSource:     w.itemSource,
		MaxIterations:  iters,
		IdempotencyKey: uuid.NewString(),
	}
}

func (w wizardModel) view(width int) string {
	var field string
	switch w.step {
	case wizStepName:
		field = w.name.View()
	case wizStepItemSource:
		field = renderItemSourceChoice(w.itemSource)
	case wizStepTemplate:
		hint := styleMuted().Render("placeholders: " + strings.Join(wrapBraces(template.KnownPlaceholders()), " "))
		field = w.prompt.View() + "\n" + hint
	case wizStepIterations:
		field = w.iterations.View()
	case wizStepConfirm:
		field = w.summary()
	}

	var lines []string
	lines = append(lines, field)
	for _, p := range w.problems {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorError).Render("! "+p))
	}
	help := "enter: next   esc: cancel"
	if w.step == wizStepTemplate {
		help = "ctrl+d: next   esc: cancel"
	}
	if w.step == wizStepConfirm {
		help = "enter: create   esc: cancel"
	}
	lines = append(lines, "", styleMuted().Render(help))
	return renderModalBox(width, w.step.title(), strings.Join(lines, "\n"))
}

func renderItemSourceChoice(src model.ItemSource) string {
	none := "( ) prompt only"
	items := "( ) work items"
	if src == model.ItemSourceNone {
		none = "(•) prompt only"
	} else {
		items = "(•) work items"
	}
	return none + "\n" + items + "\n" + styleMuted().Render("tab: toggle")
}

func (w wizardModel) summary() string {
	src := "prompt only"
	if w.itemSource == model.ItemSourceItems {
		src = "work items"
	}
	tmpl := strings.TrimSpace(w.prompt.Value())
	if len(tmpl) > 120 {
		tmpl = tmpl[:120] + "…"
	}
	iters := strings.TrimSpace(w.iterations.Value())
	if iters == "" {
		iters = "10"
	}
	return fmt.Sprintf("Name: %s\nSource: %s\nMax iterations: %s\nTemplate: %s",
		strings.TrimSpace(w.name.Value()), src, iters, tmpl)
}

func wrapBraces(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "{" + n + "}"
	}
	return out
}

package tui

import (
	"strings"
	"testing"
)

func TestValidateWizardStep(t *testing.T) {
	cases := []struct {
		name       string
		step       wizardStep
		loopName   string
		prompt     string
		itemDriven bool
		iterations string
		wantSubstr string // empty means no problems expected
	}{
		{
			name:       "empty name rejected",
			step:       wizStepName,
			loopName:   "   ",
			wantSubstr: "name is required",
		},
		{
			name:     "name accepted",
			step:     wizStepName,
			loopName: "refactor loop",
		},
		{
			name:       "unknown placeholder rejected",
			step:       wizStepTemplate,
			prompt:     "work on {tsak}",
			wantSubstr: "tsak",
		},
		{
			name:       "item-driven template must reference the item",
			step:       wizStepTemplate,
			prompt:     "improve the {project}",
			itemDriven: true,
			wantSubstr: "{item}",
		},
		{
			name:       "item-driven template with {task} accepted",
			step:       wizStepTemplate,
			prompt:     "complete {task}",
			itemDriven: true,
		},
		{
			name:       "unbalanced braces rejected",
			step:       wizStepTemplate,
			prompt:     "work on {task",
			wantSubstr: "unclosed",
		},
		{
			name:       "iterations must be a number",
			step:       wizStepIterations,
			iterations: "lots",
			wantSubstr: "positive number",
		},
		{
			name:       "zero iterations rejected",
			step:       wizStepIterations,
			iterations: "0",
			wantSubstr: "positive number",
		},
		{
			name:       "empty iterations uses the default",
			step:       wizStepIterations,
			iterations: "",
		},
		{
			name: "confirm step has nothing to validate",
			step: wizStepConfirm,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problems := validateWizardStep(tc.step, tc.loopName, tc.prompt, tc.itemDriven, tc.iterations)
			if tc.wantSubstr == "" {
				if len(problems) != 0 {
					t.Errorf("unexpected problems: %v", problems)
				}
				return
			}
			found := false
			for _, p := range problems {
				if strings.Contains(p, tc.wantSubstr) {
					found = true
				}
			}
			if !found {
				t.Errorf("problems %v missing %q", problems, tc.wantSubstr)
			}
		})
	}
}

func TestWizardAdvanceBlocksOnInvalidStep(t *testing.T) {
	w := newWizard("proj-1")

	w = w.advance()
	if w.step != wizStepName {
		t.Fatalf("advanced past empty name to step %d", w.step)
	}
	if len(w.problems) == 0 {
		t.Fatal("expected a validation problem for the empty name")
	}

	w.name.SetValue("nightly cleanup")
	w = w.advance()
	if w.step != wizStepItemSource {
		t.Fatalf("step = %d, want item source", w.step)
	}
	if len(w.problems) != 0 {
		t.Fatalf("unexpected problems: %v", w.problems)
	}
}

func TestWizardRequestDefaults(t *testing.T) {
	w := newWizard("proj-1")
	w.name.SetValue("  cleanup  ")
	w.prompt.SetValue("tidy {project}")

	req := w.request()
	if req.ProjectID != "proj-1" {
		t.Errorf("ProjectID = %q", req.ProjectID)
	}
	if req.Name != "cleanup" {
		t.Errorf("Name = %q, want trimmed", req.Name)
	}
	if req.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want default 10", req.MaxIterations)
	}
	if req.IdempotencyKey == "" {
		t.Error("IdempotencyKey not set")
	}

	w.iterations.SetValue("3")
	if got := w.request().MaxIterations; got != 3 {
		t.Errorf("MaxIterations = %d, want 3", got)
	}
}

package template

import (
	"reflect"
	"strings"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{"none", "fix the build", nil, false},
		{"single", "work on {task}", []string{"task"}, false},
		{"repeated", "{item} then {item} again", []string{"item", "item"}, false},
		{"mixed", "in {project}: do {task} (iteration {iteration})", []string{"project", "task", "iteration"}, false},
		{"unclosed", "do {task", nil, true},
		{"unmatched close", "do task}", nil, true},
		{"nested", "do {{task}}", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Placeholders(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		itemDriven bool
		wantCount  int
		wantSubstr string
	}{
		{"valid plain", "improve test coverage", false, 0, ""},
		{"valid with placeholders", "do {task} for {project}", true, 0, ""},
		{"unknown placeholder", "do {tsk}", false, 1, "unknown placeholder {tsk}"},
		{"unknown reported once", "{foo} and {foo}", false, 1, "{foo}"},
		{"empty placeholder", "do {}", false, 1, "empty placeholder"},
		{"item-driven missing item", "just iterate", true, 1, "must reference {item} or {task}"},
		{"item-driven with item ok", "handle {item}", true, 0, ""},
		{"multiple problems", "do {} and {wat}", true, 3, ""},
		{"unbalanced short-circuits", "do {task and {wat}", false, 1, "'{'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Validate(tc.text, tc.itemDriven)
			if len(got) != tc.wantCount {
				t.Fatalf("got %d problems %v, want %d", len(got), got, tc.wantCount)
			}
			if tc.wantSubstr == "" {
				return
			}
			found := false
			for _, p := range got {
				if strings.Contains(p, tc.wantSubstr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("problems %v missing %q", got, tc.wantSubstr)
			}
		})
	}
}

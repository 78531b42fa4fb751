package format

import (
	"strings"
	"testing"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestWriteJSONCompactAndPretty(t *testing.T) {
	var compact strings.Builder
	if err := WriteJSON(&compact, row{ID: "a", Name: "x"}, false); err != nil {
		t.Fatal(err)
	}
	if got := compact.String(); got != `{"id":"a","name":"x"}`+"\n" {
		t.Errorf("compact = %q", got)
	}

	var pretty strings.Builder
	if err := WriteJSON(&pretty, row{ID: "a", Name: "x"}, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), "\n  \"id\": \"a\"") {
		t.Errorf("pretty = %q", pretty.String())
	}
}

func TestWriteJSONLinesSplitsSlices(t *testing.T) {
	var b strings.Builder
	rows := []row{{ID: "a"}, {ID: "b"}}
	if err := WriteJSONLines(&b, rows); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.Contains(lines[0], `"a"`) || !strings.Contains(lines[1], `"b"`) {
		t.Errorf("lines = %v", lines)
	}
}

func TestWriteJSONLinesScalarFallback(t *testing.T) {
	var b strings.Builder
	if err := WriteJSONLines(&b, row{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if count := strings.Count(b.String(), "\n"); count != 1 {
		t.Errorf("output = %q, want one line", b.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var b strings.Builder
	if err := Write(&b, row{}, "yaml", false); err == nil {
		t.Fatal("expected an error for unknown format")
	}
}

package tui

import (
	"strings"
	"testing"
	"time"

	"ralphx-cli/internal/model"
	"ralphx-cli/internal/stream"
)

func testSession() model.IterationSession {
	return model.IterationSession{
		ID:                  "sess-1",
		LoopID:              "loop-1",
		RequestedIterations: 5,
		Status:              model.SessionRunning,
		StartedAt:           time.Now().Add(-time.Minute),
	}
}

func contentUpdate(id int64, text string) stream.Update {
	return stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: id, Type: model.EventContent, Text: text},
	}
}

func TestStreamPanelGluesContentFragments(t *testing.T) {
	p := newStreamPanel(testSession())
	p.apply(contentUpdate(1, "Hello, "))
	p.apply(contentUpdate(2, "world.\nSecond "))
	p.apply(contentUpdate(3, "line."))

	want := []string{"Hello, world.", "Second line."}
	if len(p.content) != len(want) {
		t.Fatalf("content lines = %v, want %v", p.content, want)
	}
	for i := range want {
		if p.content[i] != want[i] {
			t.Errorf("content[%d] = %q, want %q", i, p.content[i], want[i])
		}
	}
	if p.lastEventID != 3 {
		t.Errorf("lastEventID = %d, want 3", p.lastEventID)
	}
}

func TestStreamPanelTracksIterationProgress(t *testing.T) {
	p := newStreamPanel(testSession())
	p.apply(stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: 1, Type: model.EventIterationStart, Iteration: 2},
	})
	p.apply(stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: 2, Type: model.EventIterationComplete, Iteration: 2, CharsChanged: 120},
	})

	if p.iteration != 2 {
		t.Errorf("iteration = %d, want 2", p.iteration)
	}
	if p.charsChanged != 120 {
		t.Errorf("charsChanged = %d, want 120", p.charsChanged)
	}
	line := p.statusLine(time.Now())
	if !strings.Contains(line, "iteration 2/5") {
		t.Errorf("status line %q missing iteration progress", line)
	}
}

func TestStreamPanelToolLog(t *testing.T) {
	p := newStreamPanel(testSession())
	p.apply(stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: 1, Type: model.EventToolUse, ToolName: "edit_file", ToolInput: []byte(`{"path":"main.go"}`)},
	})
	p.apply(stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: 2, Type: model.EventToolResult, ToolResult: "ok\nmore detail"},
	})

	if len(p.toolLog) != 2 {
		t.Fatalf("toolLog = %v, want 2 entries", p.toolLog)
	}
	if !strings.Contains(p.toolLog[0], "edit_file") {
		t.Errorf("toolLog[0] = %q, want tool name", p.toolLog[0])
	}
	if strings.Contains(p.toolLog[1], "more detail") {
		t.Errorf("toolLog[1] = %q, want first line only", p.toolLog[1])
	}
}

func TestStreamPanelStatusLabels(t *testing.T) {
	cases := []struct {
		name   string
		update stream.Update
		want   string
	}{
		{
			"reconnecting shows attempt count",
			stream.Update{State: stream.StateReconnecting, Attempt: 3},
			"attempt 3",
		},
		{
			"lost offers manual retry",
			stream.Update{State: stream.StateLost, Reason: stream.ReasonConnectionLost},
			"press R to retry",
		},
		{
			"clean done",
			stream.Update{State: stream.StateDone, Reason: stream.ReasonDoneEvent},
			"done",
		},
		{
			"session gone is not a clean done",
			stream.Update{State: stream.StateDone, Reason: stream.ReasonSessionGone},
			"no final event",
		},
		{
			"cancelled",
			stream.Update{State: stream.StateCancelled, Reason: stream.ReasonCancelledEvent},
			"cancelled",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newStreamPanel(testSession())
			p.apply(tc.update)
			line := p.statusLine(time.Now())
			if !strings.Contains(line, tc.want) {
				t.Errorf("status line %q missing %q", line, tc.want)
			}
		})
	}
}

func TestStreamPanelNonFatalErrorBecomesNotice(t *testing.T) {
	p := newStreamPanel(testSession())
	p.apply(stream.Update{
		State: stream.StateStreaming,
		Event: &model.IterationEvent{ID: 1, Type: model.EventError, ErrorMessage: "transient tool failure"},
	})
	if len(p.notices) != 1 || p.notices[0] != "transient tool failure" {
		t.Errorf("notices = %v, want the error message", p.notices)
	}
	if p.state != stream.StateStreaming {
		t.Errorf("state = %v, want streaming", p.state)
	}
}

func TestRenderTailTruncatesAndLimitsRows(t *testing.T) {
	lines := []string{"one", "two", "a line that is far too wide", "four"}
	out := renderTail(lines, 10, 2)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if strings.Contains(out, "one") || strings.Contains(out, "two") {
		t.Errorf("renderTail kept rows beyond the tail: %q", out)
	}
	if strings.Contains(rows[0], "far too wide") {
		t.Errorf("row %q not truncated to width", rows[0])
	}
}

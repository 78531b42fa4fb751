package tui

import (
	"fmt"
	"strings"
	"time"

	"ralphx-cli/internal/model"
	"ralphx-cli/internal/stream"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	maxContentLines = 400
	maxToolLogLines = 100
)

// streamPanel accumulates reconnector updates for one session into renderable
// state. It is a plain value owned by the app model; all mutation happens on
// the bubbletea update goroutine.
type streamPanel struct {
	session model.IterationSession

	state   stream.State
	attempt int
	reason  stream.Reason
	err     error

	iteration    int
	iterations   int
	charsChanged int
	lastEventID  int64
	startedAt    time.Time

	content []string
	toolLog []string
	notices []string
}

func newStreamPanel(session model.IterationSession) streamPanel {
	return streamPanel{
		session:    session,
		state:      stream.StateIdle,
		iteration:  session.CurrentIteration,
		iterations: session.RequestedIterations,
		startedAt:  session.StartedAt,
	}
}

func (p *streamPanel) apply(u stream.Update) {
	p.state = u.State
	p.attempt = u.Attempt
	if u.Reason != stream.ReasonNone {
		p.reason = u.Reason
	}
	if u.Err != nil {
		p.err = u.Err
	}
	if u.Event != nil {
		p.applyEvent(*u.Event)
	}
}

func (p *streamPanel) applyEvent(ev model.IterationEvent) {
	if ev.ID > p.lastEventID {
		p.lastEventID = ev.ID
	}
	switch ev.Type {
	case model.EventContent:
		p.appendContent(ev.Text)
	case model.EventToolUse:
		line := "→ " + ev.ToolName
		if in := compactJSON(ev.ToolInput); in != "" {
			line += " " + in
		}
		p.appendToolLog(line)
	case model.EventToolResult:
		p.appendToolLog("← " + firstLine(ev.ToolResult))
	case model.EventIterationStart:
		p.iteration = ev.Iteration
		p.appendContent(fmt.Sprintf("\n--- iteration %d ---\n", ev.Iteration))
	case model.EventIterationComplete:
		p.charsChanged += ev.CharsChanged
		p.appendToolLog(fmt.Sprintf("iteration %d done (%+d chars)", ev.Iteration, ev.CharsChanged))
	case model.EventError:
		p.notices = append(p.notices, ev.ErrorMessage)
	case model.EventCancelled, model.EventDone:
		// Terminal; the state transition carries the outcome.
	default:
		// Unknown event types are forwarded for cursor bookkeeping only.
	}
}

func (p *streamPanel) appendContent(text string) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	// Content events may split mid-line, so glue the first fragment onto the
	// previous line. Split of "\n…" yields a leading "" which glues as a no-op.
	if len(p.content) > 0 {
		p.content[len(p.content)-1] += lines[0]
		lines = lines[1:]
	}
	p.content = append(p.content, lines...)
	if len(p.content) > maxContentLines {
		p.content = p.content[len(p.content)-maxContentLines:]
	}
}

func (p *streamPanel) appendToolLog(line string) {
	p.toolLog = append(p.toolLog, line)
	if len(p.toolLog) > maxToolLogLines {
		p.toolLog = p.toolLog[len(p.toolLog)-maxToolLogLines:]
	}
}

func (p *streamPanel) statusLine(now time.Time) string {
	var label string
	var color lipgloss.TerminalColor
	switch p.state {
	case stream.StateIdle, stream.StateConnecting:
		label, color = "connecting…", colorMuted
	case stream.StateStreaming:
		label, color = "streaming", colorRunning
	case stream.StateReconnecting:
		label, color = fmt.Sprintf("reconnecting (attempt %d)", p.attempt), colorWarn
	case stream.StateDone:
		if p.reason == stream.ReasonSessionGone {
			label, color = "session ended (no final event received)", colorWarn
		} else {
			label, color = "done", colorRunning
		}
	case stream.StateCancelled:
		label, color = "cancelled", colorWarn
	case stream.StateErrored:
		label, color = "failed", colorError
	case stream.StateLost:
		label, color = "connection lost - press R to retry", colorError
	default:
		label, color = p.state.String(), colorMuted
	}

	st := lipgloss.NewStyle().Foreground(color).Bold(true)
	parts := []string{st.Render(label)}
	if p.iterations > 0 {
		parts = append(parts, fmt.Sprintf("iteration %d/%d", p.iteration, p.iterations))
	}
	if p.charsChanged != 0 {
		parts = append(parts, fmt.Sprintf("%+d chars", p.charsChanged))
	}
	if !p.startedAt.IsZero() {
		parts = append(parts, formatDuration(now.Sub(p.startedAt)))
	}
	return strings.Join(parts, "  ")
}

// render lays out the panel top to bottom: status line, streamed content
// tail, then a short tool activity tail. Width and height are the space
// available to the panel.
func (p *streamPanel) render(width, height int) string {
	if width < 20 {
		width = 20
	}
	if height < 8 {
		height = 8
	}

	status := p.statusLine(time.Now())

	toolRows := 6
	contentRows := height - toolRows - 3
	if contentRows < 3 {
		contentRows = 3
		toolRows = height - contentRows - 3
	}

	content := lipgloss.NewStyle().Width(width).Height(contentRows).
		Render(renderTail(p.content, width, contentRows))
	divider := styleMuted().Render(strings.Repeat("─", width))
	tools := faintIfDark(lipgloss.NewStyle()).Width(width).Height(toolRows).
		Render(renderTail(p.toolLog, width, toolRows))

	out := []string{status, content, divider, tools}
	if len(p.notices) > 0 {
		note := lipgloss.NewStyle().Foreground(colorError).Render("! " + p.notices[len(p.notices)-1])
		out = append(out, xansi.Cut(note, 0, width))
	}
	return strings.Join(out, "\n")
}

// renderTail returns the last rows of lines that fit, each truncated to width.
func renderTail(lines []string, width, rows int) string {
	if rows < 1 {
		rows = 1
	}
	start := 0
	if len(lines) > rows {
		start = len(lines) - rows
	}
	var b strings.Builder
	for i, line := range lines[start:] {
		if i > 0 {
			b.WriteString("\n")
		}
		if xansi.StringWidth(line) > width {
			line = xansi.Cut(line, 0, width)
		}
		b.WriteString(line)
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "…"
	}
	return s
}

func compactJSON(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if len(s) > 60 {
		s = s[:60] + "…"
	}
	return s
}

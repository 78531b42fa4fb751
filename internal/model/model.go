package model

import (
	"encoding/json"
	"time"
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
}

type LoopStatus string

const (
	LoopIdle    LoopStatus = "idle"
	LoopRunning LoopStatus = "running"
	LoopStopped LoopStatus = "stopped"
	LoopError   LoopStatus = "error"
)

// ItemSource describes where a loop pulls its work items from.
type ItemSource string

const (
	ItemSourceNone  ItemSource = "none"  // pure prompt loop, no items
	ItemSourceItems ItemSource = "items" // backend work-item queue
)

type Loop struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	Name           string     `json:"name"`
	PromptTemplate string     `json:"promptTemplate"`
	ItemSource     ItemSource `json:"itemSource"`
	MaxIterations  int        `json:"maxIterations"`
	Status         LoopStatus `json:"status"`
	CompletedRuns  int        `json:"completedRuns"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Archived       bool       `json:"archived"`
}

type WorkflowStep struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	PromptTemplate string     `json:"promptTemplate"`
	ItemSource     ItemSource `json:"itemSource"`
}

type Workflow struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Name      string         `json:"name"`
	Steps     []WorkflowStep `json:"steps"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Archived  bool           `json:"archived"`
}

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemClaimed   ItemStatus = "claimed"
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
)

type WorkItem struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	LoopID     string     `json:"loopId,omitempty"`
	WorkflowID string     `json:"workflowId,omitempty"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	Status     ItemStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Resource struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionError     SessionStatus = "error"
)

// IterationSession is one run of N requested iterations against a prompt.
// The backend owns it; the client holds a read-only, possibly stale copy.
type IterationSession struct {
	ID                  string        `json:"id"`
	LoopID              string        `json:"loopId"`
	RequestedIterations int           `json:"requestedIterations"`
	CompletedIterations int           `json:"completedIterations"`
	CurrentIteration    int           `json:"currentIteration"`
	Status              SessionStatus `json:"status"`
	StartedAt           time.Time     `json:"startedAt"`
	FinishedAt          *time.Time    `json:"finishedAt,omitempty"`
}

type EventType string

const (
	EventHeartbeat         EventType = "heartbeat"
	EventContent           EventType = "content"
	EventToolUse           EventType = "tool_use"
	EventToolResult        EventType = "tool_result"
	EventIterationStart    EventType = "iteration_start"
	EventIterationComplete EventType = "iteration_complete"
	EventError             EventType = "error"
	EventCancelled         EventType = "cancelled"
	EventDone              EventType = "done"
)

// IterationEvent is one record from a session's append-only event stream.
// IDs increase monotonically per session and double as the resume cursor.
// Unknown Type values must be tolerated (ignored), not rejected.
type IterationEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Type      EventType `json:"type"`

	// Payload fields; which are set depends on Type.
	Iteration    int             `json:"iteration,omitempty"`
	Text         string          `json:"text,omitempty"`         // content
	ToolName     string          `json:"toolName,omitempty"`     // tool_use
	ToolInput    json.RawMessage `json:"toolInput,omitempty"`    // tool_use
	ToolResult   string          `json:"toolResult,omitempty"`   // tool_result
	CharsChanged int             `json:"charsChanged,omitempty"` // iteration_complete
	ErrorMessage string          `json:"errorMessage,omitempty"` // error
	Fatal        bool            `json:"fatal,omitempty"`        // error
}

// Terminal reports whether the event ends the session as observed by a client.
// A non-fatal error event is informational; the stream continues after it.
func (e IterationEvent) Terminal() bool {
	switch e.Type {
	case EventDone, EventCancelled:
		return true
	case EventError:
		return e.Fatal
	}
	return false
}

type ReadyCheckStatus string

const (
	ReadyAnalyzing ReadyCheckStatus = "analyzing"
	ReadyQuestions ReadyCheckStatus = "questions"
	ReadyReady     ReadyCheckStatus = "ready"
	ReadyFailed    ReadyCheckStatus = "failed"
)

type ReadyQuestion struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Answer string `json:"answer,omitempty"`
}

// ReadyCheck is the backend's pre-flight analysis of a loop configuration.
// The client submits, polls until the status leaves analyzing, and answers
// any questions the backend raises.
type ReadyCheck struct {
	ID        string           `json:"id"`
	LoopID    string           `json:"loopId"`
	Status    ReadyCheckStatus `json:"status"`
	Summary   string           `json:"summary,omitempty"`
	Questions []ReadyQuestion  `json:"questions,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type DesignDoc struct {
	ProjectID string    `json:"projectId"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DesignDocBackup struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
}

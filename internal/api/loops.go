package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

type CreateLoopRequest struct {
	ProjectID      string           `json:"projectId"`
	Name           string           `json:"name"`
	PromptTemplate string           `json:"promptTemplate"`
	ItemSource     model.ItemSource `json:"itemSource"`
	MaxIterations  int              `json:"maxIterations"`
	// IdempotencyKey lets the backend dedupe retried creates.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type UpdateLoopRequest struct {
	Name           *string `json:"name,omitempty"`
	PromptTemplate *string `json:"promptTemplate,omitempty"`
	MaxIterations  *int    `json:"maxIterations,omitempty"`
}

type StartLoopRequest struct {
	Iterations     int    `json:"iterations"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (c *Client) ListLoops(ctx context.Context, projectID string) ([]model.Loop, error) {
	path := "/api/loops"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}
	var out []model.Loop
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetLoop(ctx context.Context, id string) (*model.Loop, error) {
	var out model.Loop
	if err := c.get(ctx, "/api/loops/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLoop(ctx context.Context, req CreateLoopRequest) (*model.Loop, error) {
	var out model.Loop
	if err := c.post(ctx, "/api/loops", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLoop(ctx context.Context, id string, req UpdateLoopRequest) (*model.Loop, error) {
	var out model.Loop
	if err := c.put(ctx, "/api/loops/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartLoop asks the backend to begin a new iteration session for the loop.
func (c *Client) StartLoop(ctx context.Context, id string, req StartLoopRequest) (*model.IterationSession, error) {
	var out model.IterationSession
	if err := c.post(ctx, "/api/loops/"+url.PathEscape(id)+"/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StopLoop(ctx context.Context, id string) error {
	return c.post(ctx, "/api/loops/"+url.PathEscape(id)+"/stop", nil, nil)
}

func (c *Client) ArchiveLoop(ctx context.Context, id string) error {
	return c.post(ctx, "/api/loops/"+url.PathEscape(id)+"/archive", nil, nil)
}

func (c *Client) DeleteLoop(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/loops/"+url.PathEscape(id))
}

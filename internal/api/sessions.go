package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

func (c *Client) GetSession(ctx context.Context, id string) (*model.IterationSession, error) {
	var out model.IterationSession
	if err := c.get(ctx, "/api/sessions/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveSession returns the loop's running session, or nil if none is active.
func (c *Client) ActiveSession(ctx context.Context, loopID string) (*model.IterationSession, error) {
	var out model.IterationSession
	err := c.get(ctx, "/api/loops/"+url.PathEscape(loopID)+"/session", &out)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if out.Status != model.SessionRunning {
		return nil, nil
	}
	return &out, nil
}

// CancelSession requests backend cancellation. Fire-and-forget from the
// client's perspective; callers close their local stream regardless.
func (c *Client) CancelSession(ctx context.Context, id string) error {
	return c.post(ctx, "/api/sessions/"+url.PathEscape(id)+"/cancel", nil, nil)
}

package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

// SubmitReadyCheck kicks off a pre-flight analysis of the loop's
// configuration. The result starts in status "analyzing"; poll with
// GetReadyCheck until it leaves that state.
func (c *Client) SubmitReadyCheck(ctx context.Context, loopID string) (*model.ReadyCheck, error) {
	var out model.ReadyCheck
	if err := c.post(ctx, "/api/loops/"+url.PathEscape(loopID)+"/ready-check", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadyCheck(ctx context.Context, id string) (*model.ReadyCheck, error) {
	var out model.ReadyCheck
	if err := c.get(ctx, "/api/ready-checks/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnswerReadyCheck submits answers to the backend's questions; the check
// returns to "analyzing" and must be polled again.
func (c *Client) AnswerReadyCheck(ctx context.Context, id string, answers []model.ReadyQuestion) (*model.ReadyCheck, error) {
	req := struct {
		Answers []model.ReadyQuestion `json:"answers"`
	}{Answers: answers}
	var out model.ReadyCheck
	if err := c.post(ctx, "/api/ready-checks/"+url.PathEscape(id)+"/answers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

type CreateWorkflowRequest struct {
	ProjectID string               `json:"projectId"`
	Name      string               `json:"name"`
	Steps     []model.WorkflowStep `json:"steps"`
}

func (c *Client) ListWorkflows(ctx context.Context, projectID string) ([]model.Workflow, error) {
	path := "/api/workflows"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}
	var out []model.Workflow
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	var out model.Workflow
	if err := c.get(ctx, "/api/workflows/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (*model.Workflow, error) {
	var out model.Workflow
	if err := c.post(ctx, "/api/workflows", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/workflows/"+url.PathEscape(id))
}

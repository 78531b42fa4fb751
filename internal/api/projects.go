package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

type CreateProjectRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.get(ctx, "/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*model.Project, error) {
	var out model.Project
	if err := c.post(ctx, "/api/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ArchiveProject(ctx context.Context, id string) error {
	return c.post(ctx, "/api/projects/"+url.PathEscape(id)+"/archive", nil, nil)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/projects/"+url.PathEscape(id))
}

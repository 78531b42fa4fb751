package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

type CreateResourceRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Body      string `json:"body,omitempty"`
}

func (c *Client) ListResources(ctx context.Context, projectID string) ([]model.Resource, error) {
	path := "/api/resources"
	if projectID != "" {
		path += "?projectId=" + url.QueryEscape(projectID)
	}
	var out []model.Resource
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var out model.Resource
	if err := c.get(ctx, "/api/resources/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateResource(ctx context.Context, req CreateResourceRequest) (*model.Resource, error) {
	var out model.Resource
	if err := c.post(ctx, "/api/resources", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResource(ctx context.Context, id string, body string) (*model.Resource, error) {
	var out model.Resource
	req := struct {
		Body string `json:"body"`
	}{Body: body}
	if err := c.put(ctx, "/api/resources/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResource(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/resources/"+url.PathEscape(id))
}

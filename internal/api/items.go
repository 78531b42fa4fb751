package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

type CreateItemRequest struct {
	ProjectID string `json:"projectId"`
	LoopID    string `json:"loopId,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
}

func (c *Client) ListItems(ctx context.Context, projectID, loopID string) ([]model.WorkItem, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	if loopID != "" {
		q.Set("loopId", loopID)
	}
	path := "/api/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []model.WorkItem
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*model.WorkItem, error) {
	var out model.WorkItem
	if err := c.get(ctx, "/api/items/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*model.WorkItem, error) {
	var out model.WorkItem
	if err := c.post(ctx, "/api/items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/items/"+url.PathEscape(id))
}

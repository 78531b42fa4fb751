package api

import (
	"context"
	"net/url"

	"ralphx-cli/internal/model"
)

func (c *Client) GetDesignDoc(ctx context.Context, projectID string) (*model.DesignDoc, error) {
	var out model.DesignDoc
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(projectID)+"/design-doc", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WriteDesignDoc replaces the doc body. The backend snapshots the previous
// version as a backup before writing.
func (c *Client) WriteDesignDoc(ctx context.Context, projectID, body string) (*model.DesignDoc, error) {
	req := struct {
		Body string `json:"body"`
	}{Body: body}
	var out model.DesignDoc
	if err := c.put(ctx, "/api/projects/"+url.PathEscape(projectID)+"/design-doc", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDesignDocBackups(ctx context.Context, projectID string) ([]model.DesignDocBackup, error) {
	var out []model.DesignDocBackup
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(projectID)+"/design-doc/backups", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RestoreDesignDocBackup(ctx context.Context, projectID, backupID string) (*model.DesignDoc, error) {
	var out model.DesignDoc
	path := "/api/projects/" + url.PathEscape(projectID) + "/design-doc/backups/" + url.PathEscape(backupID) + "/restore"
	if err := c.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

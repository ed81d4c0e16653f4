package client

import "context"

// BackupInfo represents a freshly created backup
type BackupInfo struct {
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

// BackupObject represents a stored backup object
type BackupObject struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// CreateBackupResponse represents the backup creation API response
type CreateBackupResponse struct {
	Message string     `json:"message"`
	Backup  BackupInfo `json:"backup"`
}

// ListBackupsResponse represents the backup listing API response
type ListBackupsResponse struct {
	Backups []BackupObject `json:"backups"`
}

// CreateBackup triggers a database backup on the server
func (c *Client) CreateBackup(ctx context.Context) (*CreateBackupResponse, error) {
	var resp CreateBackupResponse
	if err := c.Post(ctx, "/api/admin/backup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBackups retrieves the stored backups from the server
func (c *Client) ListBackups(ctx context.Context) (*ListBackupsResponse, error) {
	var resp ListBackupsResponse
	if err := c.Get(ctx, "/api/admin/backups", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

package client

import "context"

// ListUsersResponse represents the user listing API response
type ListUsersResponse struct {
	Users   []UserInfo `json:"users"`
	Message string     `json:"message"`
}

// BulkUserRequest represents a bulk operation request body
type BulkUserRequest struct {
	UserIDs []int64 `json:"userIds"`
}

// BulkUserResponse represents a bulk operation API response. Only one of
// the user lists is populated, depending on the operation.
type BulkUserResponse struct {
	Message        string     `json:"message"`
	BlockedUsers   []UserInfo `json:"blockedUsers,omitempty"`
	UnblockedUsers []UserInfo `json:"unblockedUsers,omitempty"`
	DeletedUsers   []UserInfo `json:"deletedUsers,omitempty"`
}

// Users returns the user list from a bulk response regardless of the
// operation that produced it
func (r *BulkUserResponse) Users() []UserInfo {
	switch {
	case r.BlockedUsers != nil:
		return r.BlockedUsers
	case r.UnblockedUsers != nil:
		return r.UnblockedUsers
	default:
		return r.DeletedUsers
	}
}

// ListUsers retrieves all user accounts
func (c *Client) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	var resp ListUsersResponse
	if err := c.Get(ctx, "/api/users", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BlockUsers blocks the given user accounts
func (c *Client) BlockUsers(ctx context.Context, ids []int64) (*BulkUserResponse, error) {
	var resp BulkUserResponse
	if err := c.Patch(ctx, "/api/users/block", BulkUserRequest{UserIDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UnblockUsers unblocks the given user accounts
func (c *Client) UnblockUsers(ctx context.Context, ids []int64) (*BulkUserResponse, error) {
	var resp BulkUserResponse
	if err := c.Patch(ctx, "/api/users/unblock", BulkUserRequest{UserIDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUsers deletes the given user accounts
func (c *Client) DeleteUsers(ctx context.Context, ids []int64) (*BulkUserResponse, error) {
	var resp BulkUserResponse
	if err := c.Delete(ctx, "/api/users/delete", BulkUserRequest{UserIDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

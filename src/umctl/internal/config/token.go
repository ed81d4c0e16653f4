// Package config manages the locally stored umctl session.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nephophile/umt/src/common/paths"
)

const tokenFileName = "token.json"

// TokenData holds the stored session token and the server it belongs to
type TokenData struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at,omitempty"`
	ServerURL string `json:"server_url"`
	Email     string `json:"email"`
}

func tokenFilePath() string {
	return paths.Expand("~/.umctl/" + tokenFileName)
}

// SaveToken writes the token data to disk
func SaveToken(data *TokenData) error {
	path := tokenFilePath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// The token grants full API access, keep the file private
	if err := os.WriteFile(path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// LoadToken reads the token data from disk
func LoadToken() (*TokenData, error) {
	path := tokenFilePath()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	return &tokenData, nil
}

// ClearToken removes the token file from disk
func ClearToken() error {
	path := tokenFilePath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

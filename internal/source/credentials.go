package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/genricoloni/coverpanel/internal/domain"
	"go.uber.org/zap"
)

// ErrNoRefreshToken is returned when a refresh is attempted without refresh material
var ErrNoRefreshToken = errors.New("no refresh token stored")

// CredentialStore owns the music service token pair. Reads are cheap; refreshes
// are serialized so overlapping callers never write stale tokens.
type CredentialStore struct {
	logger *zap.Logger
	path   string

	mu      sync.Mutex
	current domain.Credentials
}

// LoadCredentials reads the credential record at path
func LoadCredentials(logger *zap.Logger, path string) (*CredentialStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("credentials %s: %w", path, ErrNoRefreshToken)
	}

	logger.Info("Credentials loaded", zap.String("path", path))
	return &CredentialStore{logger: logger, path: path, current: creds}, nil
}

// NewMemoryCredentials creates a store that is never persisted
func NewMemoryCredentials(logger *zap.Logger, creds domain.Credentials) *CredentialStore {
	return &CredentialStore{logger: logger, current: creds}
}

// AccessToken returns the access token currently in use
func (s *CredentialStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.AccessToken
}

// Refresh replaces the access token that was rejected. If stale no longer
// matches the stored token, another caller refreshed already and the current
// token is returned without contacting the service.
func (s *CredentialStore) Refresh(ctx context.Context, refresher domain.TokenRefresher, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.AccessToken != stale {
		return s.current.AccessToken, nil
	}
	if s.current.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	fresh, err := refresher.Refresh(ctx, s.current)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	if fresh.AccessToken == "" {
		return "", errors.New("token refresh returned no access token")
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.current.RefreshToken
	}
	s.current = fresh

	if err := s.persist(); err != nil {
		// the new token is still usable for this process
		s.logger.Error("Failed to persist refreshed credentials", zap.Error(err))
	}

	s.logger.Info("Access token refreshed")
	return fresh.AccessToken, nil
}

// persist rewrites the record atomically. Caller holds mu.
func (s *CredentialStore) persist() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.current, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}

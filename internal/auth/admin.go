// Package auth authenticates the studio admin: a single bcrypt-checked
// password exchanged for an opaque bearer token held in Redis.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong password. Callers map it to
// 401 without leaking which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenStore persists issued admin tokens.
type TokenStore interface {
	SaveAdminToken(ctx context.Context, token string) error
	CheckAdminToken(ctx context.Context, token string) (bool, error)
	RevokeAdminToken(ctx context.Context, token string) error
}

// Service checks the admin password and manages session tokens.
type Service struct {
	passwordHash []byte
	tokens       TokenStore
}

// NewService creates the admin auth service. passwordHash is a bcrypt hash
// from configuration; an empty hash disables admin login entirely.
func NewService(passwordHash string, tokens TokenStore) *Service {
	return &Service{passwordHash: []byte(passwordHash), tokens: tokens}
}

// Enabled reports whether an admin password is configured.
func (s *Service) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login verifies the password and issues a new session token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if !s.Enabled() {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generate admin token: %w", err)
	}
	if err := s.tokens.SaveAdminToken(ctx, token); err != nil {
		return "", fmt.Errorf("store admin token: %w", err)
	}
	return token, nil
}

// Authenticate reports whether a bearer token is a live admin session.
func (s *Service) Authenticate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.tokens.CheckAdminToken(ctx, token)
}

// Logout revokes a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.RevokeAdminToken(ctx, token)
}

// HashPassword produces a bcrypt hash for configuration bootstrap.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// generateToken creates a secure random token
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

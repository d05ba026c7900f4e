// Package admin implements the shared-password gate in front of catalog
// management. It is a placeholder for real authentication: the secret is a
// single plaintext value and the session is one persisted flag.
package admin

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"
)

// SessionKey is the key under which the authenticated flag is persisted.
const SessionKey = "restaurant_admin_auth"

// FlagStore persists the session flag.
type FlagStore interface {
	Get(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}

// Gate checks the admin password and tracks whether the session is logged in.
type Gate struct {
	password string
	store    FlagStore
	logger   zerolog.Logger
}

// NewGate creates a gate for the given shared password.
func NewGate(password string, store FlagStore, logger zerolog.Logger) *Gate {
	return &Gate{
		password: password,
		store:    store,
		logger:   logger.With().Str("component", "admin-gate").Logger(),
	}
}

// Login sets the session flag when password matches and reports whether it did.
func (g *Gate) Login(ctx context.Context, password string) (bool, error) {
	if g.password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.logger.Warn().Msg("admin login rejected")
		return false, nil
	}

	if err := g.store.Set(ctx, SessionKey); err != nil {
		return false, fmt.Errorf("failed to persist admin session: %w", err)
	}

	g.logger.Info().Msg("admin logged in")
	return true, nil
}

// Logout clears the session flag.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear admin session: %w", err)
	}

	g.logger.Info().Msg("admin logged out")
	return nil
}

// IsAuthenticated reports whether the session flag is set.
func (g *Gate) IsAuthenticated(ctx context.Context) (bool, error) {
	ok, err := g.store.Get(ctx, SessionKey)
	if err != nil {
		return false, fmt.Errorf("failed to read admin session: %w", err)
	}
	return ok, nil
}

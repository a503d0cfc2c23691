// Package session owns the rule for when a player's aggregator session token
// is (re)issued and which copy is authoritative after each call.
package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lucentplay/seamless-wallet/internal/account"
)

// Minter is the single upstream call the manager depends on.
type Minter interface {
	MintSession(ctx context.Context, username, gameCode string) (string, error)
}

// Session is the credential handed to callers. Upstream reports whether the
// token was issued by the aggregator; a placeholder-only token still launches
// the local fallback path, but upstream-dependent calls made with it will
// fail fast.
type Session struct {
	Token    string
	Upstream bool
}

// Manager keeps the local token cache in sync with the aggregator.
type Manager struct {
	store  account.Store
	minter Minter
	logger *slog.Logger
}

// NewManager builds a session manager.
func NewManager(store account.Store, minter Minter, logger *slog.Logger) *Manager {
	return &Manager{store: store, minter: minter, logger: logger}
}

// Ensure returns a usable session token for the player. A cached token is
// trusted as-is with no network call. When absent, a placeholder is persisted
// first, then a mint is attempted; whatever the aggregator returns overwrites
// the placeholder, since upstream is authoritative whenever it responds. Mint
// failure is non-fatal: the placeholder stands and downstream fallbacks take
// over.
func (m *Manager) Ensure(ctx context.Context, username, gameCode string) (Session, error) {
	acct, err := m.store.Get(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if acct.SessionToken != "" {
		return Session{Token: acct.SessionToken, Upstream: true}, nil
	}

	placeholder := uuid.NewString()
	if _, err := m.store.Update(ctx, username, func(a *account.Account) error {
		if a.SessionToken == "" {
			a.SessionToken = placeholder
		} else {
			// Lost a mint race; the other writer's token stands.
			placeholder = a.SessionToken
		}
		return nil
	}); err != nil {
		return Session{}, err
	}

	// The mint runs outside the account lock.
	minted, err := m.minter.MintSession(ctx, username, gameCode)
	if err != nil {
		m.logger.Warn("session mint failed, placeholder stands", "username", username, "error", err)
		return Session{Token: placeholder, Upstream: false}, nil
	}

	if _, err := m.store.Update(ctx, username, func(a *account.Account) error {
		a.SessionToken = minted
		return nil
	}); err != nil {
		return Session{}, err
	}
	m.logger.Info("session token minted", "username", username)
	return Session{Token: minted, Upstream: true}, nil
}

// Adopt overwrites the local token cache with a value the aggregator returned
// alongside another call. Last writer wins; a stale copy self-heals on the
// next resolver call that hits an authorization failure.
func (m *Manager) Adopt(ctx context.Context, username, token string) error {
	if token == "" {
		return nil
	}
	_, err := m.store.Update(ctx, username, func(a *account.Account) error {
		a.SessionToken = token
		return nil
	})
	return err
}

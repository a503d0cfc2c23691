// Package identity covers local registration and password verification. The
// aggregator never sees passwords; it knows players only by username.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lucentplay/seamless-wallet/internal/account"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service manages player accounts.
type Service struct {
	store           account.Store
	defaultBalance  decimal.Decimal
	defaultCurrency string
	logger          *slog.Logger
}

// NewService builds an identity service. New accounts start at the configured
// default balance.
func NewService(store account.Store, defaultBalance decimal.Decimal, defaultCurrency string, logger *slog.Logger) *Service {
	return &Service{store: store, defaultBalance: defaultBalance, defaultCurrency: defaultCurrency, logger: logger}
}

// Register creates a player account with a hashed password and the configured
// starting balance.
func (s *Service) Register(ctx context.Context, username, password string) (account.Account, error) {
	if username == "" {
		return account.Account{}, errors.New("username is required")
	}
	if len(password) < 6 {
		return account.Account{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return account.Account{}, err
	}

	acct := account.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Balance:      s.defaultBalance,
		Currency:     s.defaultCurrency,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return account.Account{}, err
	}
	s.logger.Info("player registered", "username", username)
	return acct, nil
}

// Authenticate verifies the player's password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (account.Account, error) {
	acct, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, ErrInvalidCredentials
		}
		return account.Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return account.Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

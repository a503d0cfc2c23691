// Package wallet exposes manual balance operations (deposit, withdraw) over
// the account store, outside the settlement path.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/notification"
)

// ErrInvalidAmount rejects zero or negative amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInsufficientBalance rejects a withdrawal exceeding the balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Service applies manual balance movements.
type Service struct {
	store    account.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a wallet service.
func NewService(store account.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Balance reports the current balance for a player.
func (s *Service) Balance(ctx context.Context, username string) (account.Account, error) {
	return s.store.Get(ctx, username)
}

// Deposit credits the player's balance.
func (s *Service) Deposit(ctx context.Context, username string, amount decimal.Decimal) (account.Account, error) {
	if !amount.IsPositive() {
		return account.Account{}, ErrInvalidAmount
	}
	acct, err := s.store.Update(ctx, username, func(a *account.Account) error {
		a.Balance = a.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	s.emit(ctx, username, fmt.Sprintf("deposit %s, balance %s", amount.StringFixed(2), acct.Balance.StringFixed(2)))
	return acct, nil
}

// Withdraw debits the player's balance, guarded against overdraft.
func (s *Service) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (account.Account, error) {
	if !amount.IsPositive() {
		return account.Account{}, ErrInvalidAmount
	}
	acct, err := s.store.Update(ctx, username, func(a *account.Account) error {
		if a.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		a.Balance = a.Balance.Sub(amount)
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	s.emit(ctx, username, fmt.Sprintf("withdraw %s, balance %s", amount.StringFixed(2), acct.Balance.StringFixed(2)))
	return acct, nil
}

func (s *Service) emit(ctx context.Context, username, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: notification.KindWallet, Destination: username, Body: body})
}

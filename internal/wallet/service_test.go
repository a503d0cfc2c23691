package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/logging"
)

func newService(t *testing.T) (*Service, account.Store) {
	t.Helper()
	store := account.NewMemoryStore()
	if err := store.Create(context.Background(), account.Account{
		ID:       "id-alice",
		Username: "alice",
		Balance:  decimal.NewFromInt(100),
		Currency: "THB",
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return NewService(store, nil, logging.Discard()), store
}

func TestDeposit(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	acct, err := svc.Deposit(ctx, "alice", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !acct.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 150, got %s", acct.Balance)
	}

	stored, _ := store.Get(ctx, "alice")
	if !stored.Balance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("deposit not persisted: %s", stored.Balance)
	}

	if _, err := svc.Deposit(ctx, "alice", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := svc.Deposit(ctx, "alice", decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if _, err := svc.Deposit(ctx, "ghost", decimal.NewFromInt(5)); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	acct, err := svc.Withdraw(ctx, "alice", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !acct.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected 60, got %s", acct.Balance)
	}

	if _, err := svc.Withdraw(ctx, "alice", decimal.NewFromInt(61)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	stored, _ := store.Get(ctx, "alice")
	if !stored.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("rejected withdrawal moved the balance: %s", stored.Balance)
	}

	// Draining to exactly zero is allowed.
	if acct, err = svc.Withdraw(ctx, "alice", decimal.NewFromInt(60)); err != nil {
		t.Fatalf("withdraw to zero: %v", err)
	}
	if !acct.Balance.IsZero() {
		t.Fatalf("expected zero, got %s", acct.Balance)
	}
}

func TestBalance(t *testing.T) {
	svc, _ := newService(t)

	acct, err := svc.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !acct.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", acct.Balance)
	}
}

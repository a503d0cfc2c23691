// Package settlement applies wager outcomes to the local balance ledger.
// The aggregator remains the durable ledger of wager history; this engine only
// guarantees the balance delta is correct, observable immediately, and applied
// exactly once per wager id.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/notification"
)

// ErrInsufficientBalance is a business rejection, not a system error: the
// wager is refused and the balance is left untouched.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Wager is a transient settlement instruction. It is not persisted after
// processing.
type Wager struct {
	Username     string
	WagerID      string
	BetAmount    decimal.Decimal
	PayoutAmount decimal.Decimal
}

// Net is the signed balance delta the wager applies.
func (w Wager) Net() decimal.Decimal {
	return w.PayoutAmount.Sub(w.BetAmount)
}

// Result reports the balance around a settlement. Replayed marks a wager id
// seen before; the stored outcome is returned and no ledger mutation happens.
type Result struct {
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Currency      string          `json:"currency"`
	Replayed      bool            `json:"-"`
}

// Engine settles wagers against the account store.
type Engine struct {
	store    account.Store
	registry Registry
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewEngine builds a settlement engine.
func NewEngine(store account.Store, registry Registry, notifier notification.Notifier, logger *slog.Logger) *Engine {
	return &Engine{store: store, registry: registry, notifier: notifier, logger: logger}
}

// Settle applies the wager's net delta atomically. Rules:
//   - net == 0: explicit no-op, balance read once, no lock-held mutation
//   - net > 0: credit
//   - net < 0: debit guarded by the current balance; on shortfall the wager is
//     rejected with ErrInsufficientBalance and before == after
//
// A wager id that already settled returns the stored result unchanged.
func (e *Engine) Settle(ctx context.Context, w Wager) (Result, error) {
	if w.BetAmount.IsNegative() || w.PayoutAmount.IsNegative() {
		return Result{}, fmt.Errorf("wager amounts must not be negative")
	}

	if w.WagerID != "" {
		if prior, ok, err := e.registry.Lookup(ctx, w.WagerID); err != nil {
			e.logger.Warn("wager registry lookup failed", "wager_id", w.WagerID, "error", err)
		} else if ok {
			prior.Replayed = true
			return prior, nil
		}
	}

	net := w.Net()

	if net.IsZero() {
		acct, err := e.store.Get(ctx, w.Username)
		if err != nil {
			return Result{}, err
		}
		result := Result{BalanceBefore: acct.Balance, BalanceAfter: acct.Balance, Currency: acct.Currency}
		e.record(ctx, w, result)
		return result, nil
	}

	var before decimal.Decimal
	after, err := e.store.Update(ctx, w.Username, func(a *account.Account) error {
		before = a.Balance
		next := a.Balance.Add(net)
		if next.IsNegative() {
			return ErrInsufficientBalance
		}
		a.Balance = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			acct, getErr := e.store.Get(ctx, w.Username)
			if getErr != nil {
				return Result{}, getErr
			}
			e.notify(ctx, w, "rejected", acct.Balance, acct.Balance)
			return Result{BalanceBefore: acct.Balance, BalanceAfter: acct.Balance, Currency: acct.Currency}, ErrInsufficientBalance
		}
		return Result{}, err
	}

	result := Result{BalanceBefore: before, BalanceAfter: after.Balance, Currency: after.Currency}
	e.record(ctx, w, result)
	e.notify(ctx, w, "accepted", result.BalanceBefore, result.BalanceAfter)
	return result, nil
}

func (e *Engine) record(ctx context.Context, w Wager, result Result) {
	if w.WagerID == "" {
		return
	}
	if err := e.registry.Store(ctx, w.WagerID, result); err != nil {
		e.logger.Warn("wager registry store failed", "wager_id", w.WagerID, "error", err)
	}
}

func (e *Engine) notify(ctx context.Context, w Wager, outcome string, before, after decimal.Decimal) {
	if e.notifier == nil {
		return
	}
	_ = e.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindSettlement,
		Destination: w.Username,
		Body: fmt.Sprintf("wager %s %s: %s -> %s",
			w.WagerID, outcome, before.StringFixed(2), after.StringFixed(2)),
	})
}

package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrExists indicates a registration collided with an existing username.
	ErrExists = errors.New("account already exists")
)

// Store persists accounts and serializes mutations per account.
type Store interface {
	Create(ctx context.Context, acct Account) error
	Get(ctx context.Context, username string) (Account, error)

	// Update runs fn under the account's critical section: fn receives the
	// current record, may mutate balance and session token, and the result is
	// written back atomically. If fn returns an error nothing is written and
	// the error is returned unchanged. The returned Account reflects the state
	// after the update.
	//
	// fn must not perform network calls; holding the account lock across a
	// round-trip would serialize unrelated requests for the same player.
	Update(ctx context.Context, username string, fn func(*Account) error) (Account, error)
}

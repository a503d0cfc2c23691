package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the locally held player record. Balance and SessionToken are
// mutated only through Store.Update so concurrent settlements cannot
// interleave their read and write.
type Account struct {
	ID           string
	Username     string
	PasswordHash []byte
	Balance      decimal.Decimal
	Currency     string
	// SessionToken caches the credential most recently issued by the
	// aggregator. Empty means a mint is required; no expiry is tracked.
	SessionToken string
	CreatedAt    time.Time
}

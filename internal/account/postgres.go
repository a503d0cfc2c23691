package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists accounts in PostgreSQL. Update takes a row lock so
// the read-modify-write cycle is atomic across processes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, acct Account) error {
	_, err := s.db.Exec(ctx, `INSERT INTO accounts (id, username, password_hash, balance, currency, session_token, created_at)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		acct.ID, acct.Username, acct.PasswordHash, acct.Balance, acct.Currency, acct.SessionToken, acct.CreatedAt.UTC())
	if err != nil && isUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, username string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT id, username, password_hash, balance, currency, COALESCE(session_token, ''), created_at
        FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

func (s *PostgresStore) Update(ctx context.Context, username string, fn func(*Account) error) (Account, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT id, username, password_hash, balance, currency, COALESCE(session_token, ''), created_at
        FROM accounts WHERE username = $1 FOR UPDATE`, username)
	acct, err := scanAccount(row)
	if err != nil {
		return Account{}, err
	}

	if err := fn(&acct); err != nil {
		return Account{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1, session_token = NULLIF($2, '') WHERE username = $3`,
		acct.Balance, acct.SessionToken, username); err != nil {
		return Account{}, fmt.Errorf("update account %s: %w", username, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Account{}, err
	}
	return acct, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var acct Account
	var balance decimal.Decimal
	if err := row.Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &balance, &acct.Currency, &acct.SessionToken, &acct.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acct.Balance = balance
	return acct, nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

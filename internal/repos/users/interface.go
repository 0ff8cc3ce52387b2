package users

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
)

// Users owns the player balance row. Balances are in minor units.
// Methods taking a *sql.Tx must run inside the caller's transaction.
type Users interface {
	GetBalance(ctx context.Context, userID uint64) (int64, error)
	LockAndGetBalance(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error)
	Settle(ctx context.Context, tx *sql.Tx, userID uint64, stake, payout int64) (int64, error)
	IncreaseBalance(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) (int64, error)
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/casino/internal/repos/users"
)

// Settle debits stake and credits payout in one statement and returns the new
// balance. The balance guard makes a stale funds check fail instead of going
// negative.
func (r *usersRepo) Settle(ctx context.Context, tx *sql.Tx, userID uint64, stake, payout int64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		UPDATE users
		SET balance = balance - $2 + $3
		WHERE id = $1
		  AND balance >= $2
		RETURNING balance
	`, userID, stake, payout).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("settle balance: %w", err)
	}

	return balance, nil
}

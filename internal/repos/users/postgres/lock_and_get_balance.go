package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/casino/internal/repos/users"
)

// LockAndGetBalance holds the player row until tx ends, so concurrent wagers
// for one player queue up behind each other.
func (r *usersRepo) LockAndGetBalance(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx, `
		SELECT balance
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

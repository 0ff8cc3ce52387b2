package wager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/casino/internal/infra/pgutils"
)

// GetBalance returns the player's balance without locking.
func (s *Service) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// Deposit credits amount minor units and returns the new balance.
func (s *Service) Deposit(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	var balance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error

		balance, err = s.users.IncreaseBalance(ctx, tx, userID, amount)
		if err != nil {
			return fmt.Errorf("increase balance: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}

	return balance, nil
}

// Stats aggregates every settled round of the player.
func (s *Service) Stats(ctx context.Context, userID uint64) (Stats, error) {
	_, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("get player: %w", err)
	}

	st, err := s.rounds.Stats(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}

	return Stats{
		GamesPlayed: st.GamesPlayed,
		Wins:        st.Wins,
		Losses:      st.Losses(),
		WinRate:     st.WinRate(),
		TotalBet:    st.TotalBet,
		TotalPayout: st.TotalPayout,
		Net:         st.Net(),
	}, nil
}

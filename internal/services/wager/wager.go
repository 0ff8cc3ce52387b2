// Package wager settles wagers: it checks funds, runs a game engine and
// commits the balance change together with the round record.
package wager

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/casino/internal/games/slots"
	"github.com/fastprodman/casino/internal/infra/pgutils"
	"github.com/fastprodman/casino/internal/metrics"
	"github.com/fastprodman/casino/internal/repos/rounds"
	pgrounds "github.com/fastprodman/casino/internal/repos/rounds/postgres"
	"github.com/fastprodman/casino/internal/repos/users"
	pgusers "github.com/fastprodman/casino/internal/repos/users/postgres"
	"github.com/fastprodman/casino/internal/rng"
)

type Service struct {
	db      *sql.DB
	users   users.Users
	rounds  rounds.Rounds
	rng     rng.Source
	machine *slots.Machine
	metrics *metrics.Wager
	log     *slog.Logger
}

func New(db *sql.DB, src rng.Source, machine *slots.Machine, m *metrics.Wager, log *slog.Logger) *Service {
	return &Service{
		db:      db,
		users:   pgusers.New(db),
		rounds:  pgrounds.New(db),
		rng:     src,
		machine: machine,
		metrics: m,
		log:     log,
	}
}

// resolver draws an outcome and returns the payout with the round metadata.
// It runs after the funds check, while the player row is locked.
type resolver func() (payout int64, meta any, err error)

type settlement struct {
	roundID uuid.UUID
	balance int64
	payout  int64
}

// settle runs one wager in a single transaction:
//
// 1) Lock the player row.
// 2) Refuse when the balance cannot cover the stake; nothing is drawn.
// 3) Draw and evaluate the outcome.
// 4) Apply balance - stake + payout in one statement.
// 5) Insert the round (duplicate request key -> rounds.ErrDuplicateRound).
//
// Any failure rolls back steps 4 and 5 together.
func (s *Service) settle(
	ctx context.Context,
	game rounds.Game,
	userID uint64,
	stake int64,
	requestKey string,
	resolve resolver,
) (settlement, error) {
	started := time.Now()
	reached := StageReceived

	round := rounds.Round{
		ID:         uuid.New(),
		UserID:     userID,
		Game:       game,
		RequestKey: requestKey,
		Stake:      stake,
	}
	if round.RequestKey == "" {
		round.RequestKey = round.ID.String()
	}

	var balance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := s.users.LockAndGetBalance(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		if current < stake {
			return fmt.Errorf("balance %d below stake %d: %w", current, stake, users.ErrInsufficientFunds)
		}
		reached = StageFundsChecked

		payout, meta, err := resolve()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRandomness, err)
		}
		reached = StageOutcomeDrawn

		round.Payout = payout
		round.Meta, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode round meta: %w", err)
		}

		balance, err = s.users.Settle(ctx, tx, userID, stake, payout)
		if err != nil {
			return fmt.Errorf("settle balance: %w", err)
		}
		reached = StageBalanceCommitted

		err = s.rounds.Insert(ctx, tx, round)
		if err != nil {
			return fmt.Errorf("insert round: %w", err)
		}
		reached = StageLogged

		return nil
	})
	if err != nil {
		serr := &StageError{Stage: StageFailedInternal, Reached: reached, Err: err}
		result := metrics.ResultFailed
		level := slog.LevelError

		switch {
		case errors.Is(err, users.ErrInsufficientFunds):
			serr.Stage = StageRejectedInsufficientFunds
			result = metrics.ResultRejected
			level = slog.LevelWarn
		case errors.Is(err, users.ErrUserNotFound):
			serr.Stage = StageRejectedUnknownPlayer
			result = metrics.ResultRejected
			level = slog.LevelWarn
		case errors.Is(err, rounds.ErrDuplicateRound):
			result = metrics.ResultDuplicate
			level = slog.LevelWarn
		}

		s.metrics.Observe(string(game), result, started)
		s.log.Log(ctx, level, "wager not settled",
			slog.String("game", string(game)),
			slog.Uint64("user_id", userID),
			slog.Int64("stake", stake),
			slog.String("stage", string(serr.Stage)),
			slog.String("reached", string(serr.Reached)),
			slog.Any("error", err),
		)

		return settlement{}, serr
	}

	result := metrics.ResultLost
	if round.Won() {
		result = metrics.ResultWon
	}

	s.metrics.Observe(string(game), result, started)
	s.metrics.Settled(string(game), stake, round.Payout)
	s.log.InfoContext(ctx, "wager settled",
		slog.String("game", string(game)),
		slog.String("round_id", round.ID.String()),
		slog.Uint64("user_id", userID),
		slog.Int64("stake", stake),
		slog.Int64("payout", round.Payout),
		slog.Int64("balance", balance),
	)

	return settlement{roundID: round.ID, balance: balance, payout: round.Payout}, nil
}

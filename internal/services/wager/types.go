package wager

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/casino/internal/games/roulette"
	"github.com/fastprodman/casino/internal/games/slots"
)

var (
	ErrInvalidStake  = errors.New("invalid stake")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoBets        = errors.New("no bets")
	ErrRandomness    = errors.New("randomness source failed")
)

// Stage is a step in the life of one wager.
type Stage string

const (
	StageReceived         Stage = "received"
	StageFundsChecked     Stage = "funds_checked"
	StageOutcomeDrawn     Stage = "outcome_drawn"
	StageBalanceCommitted Stage = "balance_committed"
	StageLogged           Stage = "logged"
	StageResponded        Stage = "responded"

	StageRejectedInsufficientFunds Stage = "rejected_insufficient_funds"
	StageRejectedUnknownPlayer     Stage = "rejected_unknown_player"
	StageFailedInternal            Stage = "failed_internal"
)

// StageError is returned for every wager that did not commit. Reached is the
// last stage completed before the failure, Stage the terminal one. Nothing
// the wager did is visible once a StageError is returned.
type StageError struct {
	Stage   Stage
	Reached Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("wager %s after %s: %v", e.Stage, e.Reached, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type SlotsRequest struct {
	UserID     uint64
	Stake      int64
	RequestKey string
}

type SlotsReceipt struct {
	RoundID uuid.UUID
	Balance int64
	Stake   slots.Stake
	Result  slots.Result
}

type RouletteRequest struct {
	UserID     uint64
	Bets       []roulette.Bet
	RequestKey string
}

type RouletteReceipt struct {
	RoundID uuid.UUID
	Balance int64
	Result  roulette.Result
}

type Stats struct {
	GamesPlayed int64
	Wins        int64
	Losses      int64
	WinRate     float64
	TotalBet    int64
	TotalPayout int64
	Net         int64
}

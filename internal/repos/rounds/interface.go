package rounds

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrDuplicateRound = errors.New("duplicate round")

type Game string

const (
	GameSlots    Game = "slots"
	GameRoulette Game = "roulette"
)

// Round is the audit record of one settled wager. Meta holds the JSON encoded
// outcome (grid and winning lines, or winning number and bets).
type Round struct {
	ID         uuid.UUID
	UserID     uint64
	Game       Game
	RequestKey string
	Stake      int64
	Payout     int64
	Meta       []byte
}

func (r Round) Net() int64 { return r.Payout - r.Stake }

func (r Round) Won() bool { return r.Payout > 0 }

// Stats aggregates all rounds of one player.
type Stats struct {
	GamesPlayed int64
	Wins        int64
	TotalBet    int64
	TotalPayout int64
}

func (s Stats) Losses() int64 { return s.GamesPlayed - s.Wins }

func (s Stats) Net() int64 { return s.TotalPayout - s.TotalBet }

// WinRate is the share of won rounds in percent, 0 when nothing was played.
func (s Stats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}

	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

type Rounds interface {
	Insert(ctx context.Context, tx *sql.Tx, r Round) error
	Stats(ctx context.Context, userID uint64) (Stats, error)
}

package rounds

import (
	"database/sql"

	"github.com/fastprodman/casino/internal/repos/rounds"
)

const (
	table = "game_rounds"

	colID         = "id"
	colUserID     = "user_id"
	colGame       = "game"
	colRequestKey = "request_key"
	colStake      = "stake"
	colPayout     = "payout"
	colNet        = "net"
	colWon        = "won"
	colMeta       = "meta"
)

var _ rounds.Rounds = (*roundsRepo)(nil)

type roundsRepo struct{ db *sql.DB }

func New(db *sql.DB) *roundsRepo {
	return &roundsRepo{db: db}
}

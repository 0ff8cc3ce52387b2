package rounds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/casino/internal/repos/rounds"
)

func (r *roundsRepo) Insert(ctx context.Context, tx *sql.Tx, round rounds.Round) error {
	query := sq.Insert(table).
		Columns(colID, colUserID, colGame, colRequestKey, colStake, colPayout, colNet, colWon, colMeta).
		Values(
			round.ID,
			round.UserID,
			string(round.Game),
			round.RequestKey,
			round.Stake,
			round.Payout,
			round.Net(),
			round.Won(),
			string(round.Meta),
		).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert round: %w", err)
	}

	_, err = tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return rounds.ErrDuplicateRound
			}
		}

		return fmt.Errorf("insert round: %w", err)
	}

	return nil
}

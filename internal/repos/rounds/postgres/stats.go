package rounds

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/fastprodman/casino/internal/repos/rounds"
)

func (r *roundsRepo) Stats(ctx context.Context, userID uint64) (rounds.Stats, error) {
	query := sq.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE "+colWon+")",
		"COALESCE(SUM("+colStake+"), 0)::bigint",
		"COALESCE(SUM("+colPayout+"), 0)::bigint",
	).
		From(table).
		Where(sq.Eq{colUserID: userID}).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return rounds.Stats{}, fmt.Errorf("build stats query: %w", err)
	}

	var s rounds.Stats

	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&s.GamesPlayed, &s.Wins, &s.TotalBet, &s.TotalPayout)
	if err != nil {
		return rounds.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	return s, nil
}

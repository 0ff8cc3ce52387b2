package wager

import (
	"context"
	"fmt"

	"github.com/fastprodman/casino/internal/games/roulette"
	"github.com/fastprodman/casino/internal/repos/rounds"
)

// PlayRoulette spins the wheel once and settles every bet against the same
// number. Bets on the same type and value are merged first.
func (s *Service) PlayRoulette(ctx context.Context, req RouletteRequest) (RouletteReceipt, error) {
	if len(req.Bets) == 0 {
		return RouletteReceipt{}, ErrNoBets
	}

	for i, b := range req.Bets {
		err := roulette.Validate(b)
		if err != nil {
			return RouletteReceipt{}, fmt.Errorf("bet %d: %w", i+1, err)
		}
	}

	bets, err := roulette.Merge(req.Bets)
	if err != nil {
		return RouletteReceipt{}, err
	}

	total, err := roulette.TotalStake(bets)
	if err != nil {
		return RouletteReceipt{}, err
	}

	var res roulette.Result

	st, err := s.settle(ctx, rounds.GameRoulette, req.UserID, total, req.RequestKey, func() (int64, any, error) {
		n, err := roulette.DrawNumber(s.rng)
		if err != nil {
			return 0, nil, err
		}

		res = roulette.Evaluate(bets, n)

		return res.TotalWin, res, nil
	})
	if err != nil {
		return RouletteReceipt{}, err
	}

	return RouletteReceipt{
		RoundID: st.roundID,
		Balance: st.balance,
		Result:  res,
	}, nil
}

package wager

import (
	"context"
	"fmt"

	"github.com/fastprodman/casino/internal/games/slots"
	"github.com/fastprodman/casino/internal/repos/rounds"
)

type slotsMeta struct {
	Stake  slots.Stake  `json:"stake"`
	Result slots.Result `json:"result"`
}

// PlaySlots spins the machine once for a total stake in minor units.
func (s *Service) PlaySlots(ctx context.Context, req SlotsRequest) (SlotsReceipt, error) {
	if req.Stake <= 0 {
		return SlotsReceipt{}, fmt.Errorf("%w: %d", ErrInvalidStake, req.Stake)
	}
	if req.Stake > s.machine.MaxStake() {
		return SlotsReceipt{}, fmt.Errorf("%w: %d above %d", ErrInvalidStake, req.Stake, s.machine.MaxStake())
	}

	stake := s.machine.SplitStake(req.Stake)

	var res slots.Result

	st, err := s.settle(ctx, rounds.GameSlots, req.UserID, req.Stake, req.RequestKey, func() (int64, any, error) {
		grid, err := s.machine.DrawGrid(s.rng)
		if err != nil {
			return 0, nil, err
		}

		res = s.machine.Evaluate(grid, stake)

		return res.TotalWin, slotsMeta{Stake: stake, Result: res}, nil
	})
	if err != nil {
		return SlotsReceipt{}, err
	}

	return SlotsReceipt{
		RoundID: st.roundID,
		Balance: st.balance,
		Stake:   stake,
		Result:  res,
	}, nil
}

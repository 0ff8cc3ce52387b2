package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fastprodman/casino/internal/games/roulette"
	"github.com/fastprodman/casino/internal/games/slots"
	"github.com/fastprodman/casino/internal/services/wager"
)

type slotsSpinRequest struct {
	Bet    json.Number `json:"bet"`
	UserID uint64      `json:"userId"`
}

type lineWinResponse struct {
	LineIndex  int           `json:"lineIndex"`
	Symbol     slots.Symbol  `json:"symbol"`
	Count      int           `json:"count"`
	Multiplier int64         `json:"multiplier"`
	Win        json.Number   `json:"win"`
	Positions  slots.Payline `json:"positions"`
}

type slotsBreakdown struct {
	LinesPlayed       int               `json:"linesPlayed"`
	BetPerLine        json.Number       `json:"betPerLine"`
	FirstLineExtra    json.Number       `json:"firstLineExtra"`
	LineWins          json.Number       `json:"lineWins"`
	WinningLines      []lineWinResponse `json:"winningLines"`
	ScatterCount      int               `json:"scatterCount"`
	ScatterWin        json.Number       `json:"scatterWin"`
	ScatterMultiplier int64             `json:"scatterMultiplier"`
}

type slotsSpinResponse struct {
	Reels      slots.Grid     `json:"reels"`
	WinAmount  json.Number    `json:"winAmount"`
	NewBalance json.Number    `json:"newBalance"`
	Breakdown  slotsBreakdown `json:"breakdown"`
	RoundID    string         `json:"roundId"`
}

// SlotsSpinHandler handles POST /api/slots/spin
func (h *HandlerProvider) SlotsSpinHandler(w http.ResponseWriter, r *http.Request) {
	key, err := idempotencyKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req slotsSpinRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stake, err := parseMinor(req.Bet)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bet: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	rc, err := h.svc.PlaySlots(r.Context(), wager.SlotsRequest{
		UserID:     req.UserID,
		Stake:      stake,
		RequestKey: key,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res := rc.Result
	lines := make([]lineWinResponse, 0, len(res.WinningLines))
	for _, lw := range res.WinningLines {
		lines = append(lines, lineWinResponse{
			LineIndex:  lw.LineIndex,
			Symbol:     lw.Symbol,
			Count:      lw.Count,
			Multiplier: lw.Multiplier,
			Win:        money(lw.Win),
			Positions:  lw.Positions,
		})
	}

	writeJSON(w, http.StatusOK, slotsSpinResponse{
		Reels:      res.Grid,
		WinAmount:  money(res.TotalWin),
		NewBalance: money(rc.Balance),
		Breakdown: slotsBreakdown{
			LinesPlayed:       res.LinesPlayed,
			BetPerLine:        money(rc.Stake.PerLine),
			FirstLineExtra:    money(rc.Stake.Remainder),
			LineWins:          money(res.LineWins),
			WinningLines:      lines,
			ScatterCount:      res.ScatterCount,
			ScatterWin:        money(res.ScatterWin),
			ScatterMultiplier: res.ScatterMultiplier,
		},
		RoundID: rc.RoundID.String(),
	})

	h.responded(r, rc.RoundID.String())
}

type rouletteBetRequest struct {
	Type   string          `json:"type"`
	Value  json.RawMessage `json:"value,omitempty"`
	Amount json.Number     `json:"amount"`
}

type rouletteSpinRequest struct {
	Bets   []rouletteBetRequest `json:"bets"`
	UserID uint64               `json:"userId"`
}

type rouletteBetResponse struct {
	Type   roulette.BetType `json:"type"`
	Value  *int             `json:"value,omitempty"`
	Amount json.Number      `json:"amount"`
	Won    bool             `json:"won"`
	Payout json.Number      `json:"payout"`
}

type rouletteSpinResponse struct {
	WinningNumber int                   `json:"winningNumber"`
	Color         roulette.Color        `json:"color"`
	TotalWin      json.Number           `json:"totalWin"`
	NewBalance    json.Number           `json:"newBalance"`
	TotalBet      json.Number           `json:"totalBet"`
	Bets          []rouletteBetResponse `json:"bets"`
	RoundID       string                `json:"roundId"`
}

// valueToken flattens a bet value that may arrive as a JSON string ("1st")
// or a number (17).
func valueToken(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string

	err := json.Unmarshal(raw, &s)
	if err == nil {
		return s, nil
	}

	var n json.Number

	err = json.Unmarshal(raw, &n)
	if err != nil {
		return "", fmt.Errorf("value must be a string or a number")
	}

	return n.String(), nil
}

func parseBets(in []rouletteBetRequest) ([]roulette.Bet, error) {
	bets := make([]roulette.Bet, 0, len(in))

	for i, b := range in {
		bt := roulette.BetType(strings.ToLower(strings.TrimSpace(b.Type)))

		tok, err := valueToken(b.Value)
		if err != nil {
			return nil, fmt.Errorf("bet %d: %w", i+1, err)
		}

		value, err := roulette.ParseValue(bt, tok)
		if err != nil {
			return nil, fmt.Errorf("bet %d: invalid value", i+1)
		}

		amount, err := parseMinor(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("bet %d: %w", i+1, err)
		}

		bets = append(bets, roulette.Bet{Type: bt, Value: value, Amount: amount})
	}

	return bets, nil
}

// RouletteSpinHandler handles POST /api/roulette/spin
func (h *HandlerProvider) RouletteSpinHandler(w http.ResponseWriter, r *http.Request) {
	key, err := idempotencyKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req rouletteSpinRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Bets) == 0 {
		writeError(w, http.StatusBadRequest, "bets are required")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	bets, err := parseBets(req.Bets)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc, err := h.svc.PlayRoulette(r.Context(), wager.RouletteRequest{
		UserID:     req.UserID,
		Bets:       bets,
		RequestKey: key,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res := rc.Result
	out := make([]rouletteBetResponse, 0, len(res.Bets))
	for _, b := range res.Bets {
		br := rouletteBetResponse{
			Type:   b.Type,
			Amount: money(b.Amount),
			Won:    b.Won,
			Payout: money(b.Payout),
		}
		if roulette.TakesValue(b.Type) {
			v := b.Value
			br.Value = &v
		}
		out = append(out, br)
	}

	writeJSON(w, http.StatusOK, rouletteSpinResponse{
		WinningNumber: res.WinningNumber,
		Color:         res.Color,
		TotalWin:      money(res.TotalWin),
		NewBalance:    money(rc.Balance),
		TotalBet:      money(res.TotalBet),
		Bets:          out,
		RoundID:       rc.RoundID.String(),
	})

	h.responded(r, rc.RoundID.String())
}

func (h *HandlerProvider) responded(r *http.Request, roundID string) {
	h.log.DebugContext(r.Context(), "wager responded",
		slog.String("round_id", roundID),
		slog.String("stage", string(wager.StageResponded)),
	)
}

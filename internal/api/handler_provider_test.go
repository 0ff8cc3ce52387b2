package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fastprodman/casino/internal/games/roulette"
	"github.com/fastprodman/casino/internal/games/slots"
	"github.com/fastprodman/casino/internal/metrics"
	"github.com/fastprodman/casino/internal/repos/rounds"
	"github.com/fastprodman/casino/internal/repos/users"
	"github.com/fastprodman/casino/internal/rng"
	"github.com/fastprodman/casino/internal/services/wager"
)

type stubService struct {
	playSlots    func(wager.SlotsRequest) (wager.SlotsReceipt, error)
	playRoulette func(wager.RouletteRequest) (wager.RouletteReceipt, error)
	balance      func(uint64) (int64, error)
	deposit      func(uint64, int64) (int64, error)
	stats        func(uint64) (wager.Stats, error)
}

func (s *stubService) PlaySlots(_ context.Context, req wager.SlotsRequest) (wager.SlotsReceipt, error) {
	return s.playSlots(req)
}

func (s *stubService) PlayRoulette(_ context.Context, req wager.RouletteRequest) (wager.RouletteReceipt, error) {
	return s.playRoulette(req)
}

func (s *stubService) GetBalance(_ context.Context, userID uint64) (int64, error) {
	return s.balance(userID)
}

func (s *stubService) Deposit(_ context.Context, userID uint64, amount int64) (int64, error) {
	return s.deposit(userID, amount)
}

func (s *stubService) Stats(_ context.Context, userID uint64) (wager.Stats, error) {
	return s.stats(userID)
}

var testRoundID = uuid.MustParse("6f1c2a9e-3b7d-4c55-9a10-0d5b8e7f4a21")

func newTestRouter(svc WagerService) http.Handler {
	reg := prometheus.NewRegistry()

	return NewRouter(Deps{
		Service:  svc,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.NewHTTP(reg),
		Gatherer: reg,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any

	if rec.Header().Get("Content-Type") == "application/json" {
		dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
		dec.UseNumber()

		err := dec.Decode(&out)
		if err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}

	return rec, out
}

func TestSlotsSpinHandler_Success(t *testing.T) {
	t.Parallel()

	machine, err := slots.Default()
	if err != nil {
		t.Fatalf("machine: %v", err)
	}

	var got wager.SlotsRequest

	svc := &stubService{
		playSlots: func(req wager.SlotsRequest) (wager.SlotsReceipt, error) {
			got = req

			stake := machine.SplitStake(req.Stake)

			var grid slots.Grid
			for row := range slots.Rows {
				for col := range slots.Columns {
					grid[row][col] = "🍒"
				}
			}

			res := machine.Evaluate(grid, stake)

			return wager.SlotsReceipt{
				RoundID: testRoundID,
				Balance: 100_000 - req.Stake + res.TotalWin,
				Stake:   stake,
				Result:  res,
			}, nil
		},
	}

	rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/slots/spin",
		`{"bet": 10.05, "userId": 7}`, http.Header{"Idempotency-Key": {"abc"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got.UserID != 7 || got.Stake != 1005 || got.RequestKey != "abc" {
		t.Fatalf("service request: %+v", got)
	}

	// 10 lines of five cherries, 40x: line 1 carries the 5 cent remainder
	if body["winAmount"] != json.Number("402.00") {
		t.Fatalf("winAmount: got %v", body["winAmount"])
	}
	if body["newBalance"] != json.Number("1391.95") {
		t.Fatalf("newBalance: got %v", body["newBalance"])
	}
	if body["roundId"] != testRoundID.String() {
		t.Fatalf("roundId: got %v", body["roundId"])
	}

	bd, ok := body["breakdown"].(map[string]any)
	if !ok {
		t.Fatalf("breakdown missing: %v", body)
	}
	if bd["betPerLine"] != json.Number("1.00") || bd["firstLineExtra"] != json.Number("0.05") {
		t.Fatalf("stake split: %v / %v", bd["betPerLine"], bd["firstLineExtra"])
	}
	if lines, _ := bd["winningLines"].([]any); len(lines) != 10 {
		t.Fatalf("winningLines: got %v", bd["winningLines"])
	}

	reels, _ := body["reels"].([]any)
	if len(reels) != slots.Rows {
		t.Fatalf("reels rows: got %d", len(reels))
	}
}

func TestSlotsSpinHandler_BadRequests(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		playSlots: func(wager.SlotsRequest) (wager.SlotsReceipt, error) {
			return wager.SlotsReceipt{}, errors.New("must not be called")
		},
	}
	h := newTestRouter(svc)

	tests := []struct {
		name   string
		body   string
		header http.Header
	}{
		{name: "empty_body", body: ``},
		{name: "invalid_json", body: `{"bet":`},
		{name: "unknown_field", body: `{"bet": 1, "userId": 1, "extra": true}`},
		{name: "zero_bet", body: `{"bet": 0, "userId": 1}`},
		{name: "negative_bet", body: `{"bet": -1, "userId": 1}`},
		{name: "three_decimals", body: `{"bet": 1.005, "userId": 1}`},
		{name: "missing_user", body: `{"bet": 1}`},
		{name: "long_key", body: `{"bet": 1, "userId": 1}`, header: http.Header{"Idempotency-Key": {strings.Repeat("k", 200)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, body := do(t, h, http.MethodPost, "/api/slots/spin", tt.body, tt.header)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: want 400, got %d (%s)", rec.Code, rec.Body.String())
			}
			if body["error"] == nil {
				t.Fatalf("error message missing: %v", body)
			}
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"insufficient", &wager.StageError{Stage: wager.StageRejectedInsufficientFunds, Err: users.ErrInsufficientFunds}, http.StatusBadRequest, "insufficient balance for this bet"},
		{"not_found", fmt.Errorf("lock: %w", users.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{"duplicate", &wager.StageError{Stage: wager.StageFailedInternal, Err: rounds.ErrDuplicateRound}, http.StatusConflict, "duplicate request"},
		{"invalid_bet", fmt.Errorf("bet 1: %w", roulette.ErrInvalidBet), http.StatusBadRequest, "invalid bet"},
		{"no_bets", wager.ErrNoBets, http.StatusBadRequest, "bets are required"},
		{"rng_down", fmt.Errorf("%w: %w", wager.ErrRandomness, rng.ErrUnavailable), http.StatusInternalServerError, "internal error"},
		{"db_down", errors.New("connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubService{
				playRoulette: func(wager.RouletteRequest) (wager.RouletteReceipt, error) {
					return wager.RouletteReceipt{}, tt.err
				},
			}

			rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/roulette/spin",
				`{"userId": 1, "bets": [{"type": "red", "amount": 1}]}`, nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: want %d, got %d", tt.wantStatus, rec.Code)
			}
			if body["error"] != tt.wantMsg {
				t.Fatalf("message: want %q, got %v", tt.wantMsg, body["error"])
			}
		})
	}
}

func TestRouletteSpinHandler_ParsesBetsAndRendersResult(t *testing.T) {
	t.Parallel()

	var got wager.RouletteRequest

	svc := &stubService{
		playRoulette: func(req wager.RouletteRequest) (wager.RouletteReceipt, error) {
			got = req

			bets, err := roulette.Merge(req.Bets)
			if err != nil {
				return wager.RouletteReceipt{}, err
			}

			res := roulette.Evaluate(bets, 17)

			return wager.RouletteReceipt{RoundID: testRoundID, Balance: 5_000, Result: res}, nil
		},
	}

	rec, body := do(t, newTestRouter(svc), http.MethodPost, "/api/roulette/spin", `{
		"userId": 3,
		"bets": [
			{"type": "black", "amount": 10},
			{"type": "straight", "value": 17, "amount": 5},
			{"type": "dozen", "value": "2nd", "amount": 2.5},
			{"type": "Column", "value": "2", "amount": 1}
		]
	}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	want := []roulette.Bet{
		{Type: roulette.Black, Amount: 1000},
		{Type: roulette.Straight, Value: 17, Amount: 500},
		{Type: roulette.Dozen, Value: 2, Amount: 250},
		{Type: roulette.Column, Value: 2, Amount: 100},
	}
	if fmt.Sprint(got.Bets) != fmt.Sprint(want) {
		t.Fatalf("parsed bets:\nwant %+v\ngot  %+v", want, got.Bets)
	}

	// black 10 -> 20, straight 5 -> 180, dozen 2 (13..24) 2.50 -> 7.50, column 2 (17) 1 -> 3
	if body["totalWin"] != json.Number("210.50") || body["totalBet"] != json.Number("18.50") {
		t.Fatalf("totals: win %v bet %v", body["totalWin"], body["totalBet"])
	}
	if body["winningNumber"] != json.Number("17") || body["color"] != "black" {
		t.Fatalf("outcome: %v %v", body["winningNumber"], body["color"])
	}

	bets, _ := body["bets"].([]any)
	if len(bets) != 4 {
		t.Fatalf("bets: %v", body["bets"])
	}
	first, _ := bets[0].(map[string]any)
	if _, ok := first["value"]; ok {
		t.Fatalf("color bets carry no value: %v", first)
	}
}

func TestRouletteSpinHandler_BadBets(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		playRoulette: func(wager.RouletteRequest) (wager.RouletteReceipt, error) {
			return wager.RouletteReceipt{}, errors.New("must not be called")
		},
	}
	h := newTestRouter(svc)

	tests := map[string]string{
		"no_bets":      `{"userId": 1, "bets": []}`,
		"missing_user": `{"bets": [{"type": "red", "amount": 1}]}`,
		"bad_value":    `{"userId": 1, "bets": [{"type": "straight", "value": "seventeen", "amount": 1}]}`,
		"bool_value":   `{"userId": 1, "bets": [{"type": "straight", "value": true, "amount": 1}]}`,
		"zero_amount":  `{"userId": 1, "bets": [{"type": "red", "amount": 0}]}`,
		"color_value":  `{"userId": 1, "bets": [{"type": "red", "value": "junk", "amount": 1}]}`,
		"huge_amount":  `{"userId": 1, "bets": [{"type": "red", "amount": 92233720368547757.58}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec, _ := do(t, h, http.MethodPost, "/api/roulette/spin", body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: want 400, got %d (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAccountHandlers(t *testing.T) {
	t.Parallel()

	svc := &stubService{
		balance: func(userID uint64) (int64, error) {
			if userID != 1 {
				return 0, users.ErrUserNotFound
			}

			return 12_345, nil
		},
		deposit: func(userID uint64, amount int64) (int64, error) {
			return 10_000 + amount, nil
		},
		stats: func(uint64) (wager.Stats, error) {
			return wager.Stats{
				GamesPlayed: 4, Wins: 1, Losses: 3, WinRate: 25,
				TotalBet: 400, TotalPayout: 150, Net: -250,
			}, nil
		},
	}
	h := newTestRouter(svc)

	rec, body := do(t, h, http.MethodGet, "/api/user/1/balance", "", nil)
	if rec.Code != http.StatusOK || body["balance"] != json.Number("123.45") || body["userId"] != json.Number("1") {
		t.Fatalf("balance: %d %v", rec.Code, body)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/user/2/balance", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: want 404, got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/user/abc/balance", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want 400, got %d", rec.Code)
	}

	rec, body = do(t, h, http.MethodPost, "/api/user/1/deposit", `{"amount": 25.5}`, nil)
	if rec.Code != http.StatusOK || body["balance"] != json.Number("125.50") {
		t.Fatalf("deposit: %d %v", rec.Code, body)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/user/1/deposit", `{"amount": -1}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative deposit: want 400, got %d", rec.Code)
	}

	rec, body = do(t, h, http.MethodGet, "/api/user/1/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d", rec.Code)
	}
	if body["gamesPlayed"] != json.Number("4") || body["net"] != json.Number("-2.50") || body["totalBet"] != json.Number("4.00") {
		t.Fatalf("stats body: %v", body)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubService{})

	rec, body := do(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", rec.Code, body)
	}

	rec, _ = do(t, h, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/healthz",status="200"} 1`) {
		t.Fatalf("healthz request not counted:\n%s", rec.Body.String())
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/casino/internal/games/roulette"
	"github.com/fastprodman/casino/internal/repos/rounds"
	"github.com/fastprodman/casino/internal/repos/users"
	"github.com/fastprodman/casino/internal/services/wager"
)

// WagerService is what the handlers need from the wager service.
type WagerService interface {
	PlaySlots(ctx context.Context, req wager.SlotsRequest) (wager.SlotsReceipt, error)
	PlayRoulette(ctx context.Context, req wager.RouletteRequest) (wager.RouletteReceipt, error)
	GetBalance(ctx context.Context, userID uint64) (int64, error)
	Deposit(ctx context.Context, userID uint64, amount int64) (int64, error)
	Stats(ctx context.Context, userID uint64) (wager.Stats, error)
}

// HandlerProvider wraps a WagerService and exposes HTTP handlers.
type HandlerProvider struct {
	svc WagerService
	log *slog.Logger
}

// NewHandler returns a new Handler provider.
func NewHandler(svc WagerService, log *slog.Logger) *HandlerProvider {
	if log == nil {
		log = slog.Default()
	}

	return &HandlerProvider{svc: svc, log: log}
}

const (
	maxBodyBytes         = 1 << 20
	maxIdempotencyKeyLen = 128
	idempotencyHeader    = "Idempotency-Key"
)

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// headers are already sent, all we can do is log
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to statuses. Internal details never
// reach the client.
func (h *HandlerProvider) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wager.ErrInvalidStake):
		writeError(w, http.StatusBadRequest, "bet must be a positive number")
	case errors.Is(err, wager.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
	case errors.Is(err, wager.ErrNoBets):
		writeError(w, http.StatusBadRequest, "bets are required")
	case errors.Is(err, roulette.ErrInvalidBet):
		writeError(w, http.StatusBadRequest, "invalid bet")
	case errors.Is(err, users.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "insufficient balance for this bet")
	case errors.Is(err, users.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, rounds.ErrDuplicateRound):
		writeError(w, http.StatusConflict, "duplicate request")
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a single JSON object, keeping numbers as json.Number.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

// parseUserIDFromPath reads `{userId}` from chi routes like:
//
//	GET  /api/user/{userId}/balance
//	POST /api/user/{userId}/deposit
func parseUserIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

func idempotencyKey(r *http.Request) (string, error) {
	key := r.Header.Get(idempotencyHeader)
	if len(key) > maxIdempotencyKeyLen {
		return "", fmt.Errorf("%s longer than %d bytes", idempotencyHeader, maxIdempotencyKeyLen)
	}

	return key, nil
}

// --- Account handlers ---

type balanceResponse struct {
	UserID  uint64      `json:"userId"`
	Balance json.Number `json:"balance"`
}

// GetBalanceHandler handles GET /api/user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bal, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: money(bal)})
}

type depositRequest struct {
	Amount json.Number `json:"amount"`
}

// DepositHandler handles POST /api/user/{userId}/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req depositRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseMinor(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bal, err := h.svc.Deposit(r.Context(), userID, amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Balance: money(bal)})
}

type statsResponse struct {
	GamesPlayed int64       `json:"gamesPlayed"`
	Wins        int64       `json:"wins"`
	Losses      int64       `json:"losses"`
	WinRate     float64     `json:"winRate"`
	TotalBet    json.Number `json:"totalBet"`
	TotalPayout json.Number `json:"totalPayout"`
	Net         json.Number `json:"net"`
}

// StatsHandler handles GET /api/user/{userId}/stats
func (h *HandlerProvider) StatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	st, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		GamesPlayed: st.GamesPlayed,
		Wins:        st.Wins,
		Losses:      st.Losses,
		WinRate:     st.WinRate,
		TotalBet:    money(st.TotalBet),
		TotalPayout: money(st.TotalPayout),
		Net:         money(st.Net),
	})
}

// Package roulette implements the single-zero wheel engine.
package roulette

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fastprodman/casino/internal/rng"
)

// Pockets is the number of outcomes, 0 through 36.
const Pockets = 37

var ErrInvalidBet = errors.New("invalid bet")

type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

var redNumbers = [Pockets]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf returns the pocket color of n.
func ColorOf(n int) Color {
	switch {
	case n == 0:
		return ColorGreen
	case redNumbers[n]:
		return ColorRed
	default:
		return ColorBlack
	}
}

type BetType string

const (
	Straight BetType = "straight"
	Red      BetType = "red"
	Black    BetType = "black"
	Odd      BetType = "odd"
	Even     BetType = "even"
	Low      BetType = "low"
	High     BetType = "high"
	Dozen    BetType = "dozen"
	Column   BetType = "column"
)

const straightMultiplier = 35

// MaxStake bounds a single bet and the total of one spin. A payout returns at
// most straightMultiplier+1 times the stake, so it always fits in an int64.
const MaxStake = math.MaxInt64 / (straightMultiplier + 1)

// payouts are winnings per unit staked; a winning bet also gets its stake back.
var payouts = map[BetType]int64{
	Straight: straightMultiplier,
	Red:      1,
	Black:    1,
	Odd:      1,
	Even:     1,
	Low:      1,
	High:     1,
	Dozen:    2,
	Column:   2,
}

// Multiplier returns the winnings multiplier of t and whether t is known.
func Multiplier(t BetType) (int64, bool) {
	m, ok := payouts[t]
	return m, ok
}

// Bet is one wager on the layout. Value selects the number for straight bets
// and the 1-based dozen or column; it is zero for every other type.
type Bet struct {
	Type   BetType `json:"type"`
	Value  int     `json:"value"`
	Amount int64   `json:"amount"`
}

// TakesValue reports whether bets of type t select a number, dozen or column.
func TakesValue(t BetType) bool {
	return t == Straight || t == Dozen || t == Column
}

// ParseValue turns the wire form of a bet value into its numeric form.
// Dozens accept "1st".."3rd" as well as 1..3. Types without a value only
// accept an empty raw value.
func ParseValue(t BetType, raw string) (int, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))

	switch t {
	case Straight, Column:
	case Dozen:
		switch raw {
		case "1st":
			return 1, nil
		case "2nd":
			return 2, nil
		case "3rd":
			return 3, nil
		}
	default:
		if raw != "" {
			return 0, fmt.Errorf("%w: %s takes no value, got %q", ErrInvalidBet, t, raw)
		}

		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s value %q", ErrInvalidBet, t, raw)
	}

	return v, nil
}

// Validate checks the type, value range and amount of b.
func Validate(b Bet) error {
	if _, ok := payouts[b.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBet, b.Type)
	}
	if b.Amount <= 0 {
		return fmt.Errorf("%w: %s amount must be positive", ErrInvalidBet, b.Type)
	}
	if b.Amount > MaxStake {
		return fmt.Errorf("%w: %s amount above %d", ErrInvalidBet, b.Type, MaxStake)
	}

	switch b.Type {
	case Straight:
		if b.Value < 0 || b.Value >= Pockets {
			return fmt.Errorf("%w: straight value %d out of range", ErrInvalidBet, b.Value)
		}
	case Dozen, Column:
		if b.Value < 1 || b.Value > 3 {
			return fmt.Errorf("%w: %s value %d out of range", ErrInvalidBet, b.Type, b.Value)
		}
	default:
		if b.Value != 0 {
			return fmt.Errorf("%w: %s takes no value", ErrInvalidBet, b.Type)
		}
	}

	return nil
}

// Merge sums the amounts of bets sharing a type and value. Order follows
// first appearance. A merged amount above MaxStake is an invalid bet.
func Merge(bets []Bet) ([]Bet, error) {
	type key struct {
		t BetType
		v int
	}

	idx := make(map[key]int, len(bets))
	out := make([]Bet, 0, len(bets))

	for _, b := range bets {
		k := key{b.Type, b.Value}

		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, b)

			continue
		}

		sum, ok := addStake(out[i].Amount, b.Amount)
		if !ok {
			return nil, fmt.Errorf("%w: %s bets add up to more than %d", ErrInvalidBet, b.Type, MaxStake)
		}
		out[i].Amount = sum
	}

	return out, nil
}

// TotalStake sums the amounts of bets. A total above MaxStake is an
// invalid bet.
func TotalStake(bets []Bet) (int64, error) {
	var total int64

	for _, b := range bets {
		sum, ok := addStake(total, b.Amount)
		if !ok {
			return 0, fmt.Errorf("%w: total stake above %d", ErrInvalidBet, MaxStake)
		}
		total = sum
	}

	return total, nil
}

// addStake adds two non-negative amounts, reporting false when the sum
// exceeds MaxStake.
func addStake(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || b > MaxStake-a {
		return 0, false
	}

	return a + b, true
}

// DrawNumber picks the winning pocket.
func DrawNumber(src rng.Source) (int, error) {
	n, err := src.UniformInt(Pockets)
	if err != nil {
		return 0, fmt.Errorf("draw number: %w", err)
	}

	return n, nil
}

// Wins reports whether b wins when the ball lands on n.
func Wins(b Bet, n int) bool {
	switch b.Type {
	case Straight:
		return b.Value == n
	case Red:
		return ColorOf(n) == ColorRed
	case Black:
		return ColorOf(n) == ColorBlack
	case Odd:
		return n != 0 && n%2 == 1
	case Even:
		return n != 0 && n%2 == 0
	case Low:
		return n >= 1 && n <= 18
	case High:
		return n >= 19 && n <= 36
	case Dozen:
		return n != 0 && (n-1)/12+1 == b.Value
	case Column:
		return n != 0 && (n-1)%3+1 == b.Value
	default:
		return false
	}
}

type BetResult struct {
	Bet
	Won    bool  `json:"won"`
	Payout int64 `json:"payout"`
}

type Result struct {
	WinningNumber int         `json:"winningNumber"`
	Color         Color       `json:"color"`
	Bets          []BetResult `json:"bets"`
	TotalBet      int64       `json:"totalBet"`
	TotalWin      int64       `json:"totalWin"`
}

// Evaluate settles every bet against the same winning number. It is a pure
// function of its arguments. Callers keep the total stake within MaxStake,
// which keeps every sum below an int64 overflow.
func Evaluate(bets []Bet, n int) Result {
	res := Result{
		WinningNumber: n,
		Color:         ColorOf(n),
		Bets:          make([]BetResult, 0, len(bets)),
	}

	for _, b := range bets {
		br := BetResult{Bet: b}
		if Wins(b, n) {
			br.Won = true
			br.Payout = b.Amount * (payouts[b.Type] + 1)
		}

		res.TotalBet += b.Amount
		res.TotalWin += br.Payout
		res.Bets = append(res.Bets, br)
	}

	return res
}

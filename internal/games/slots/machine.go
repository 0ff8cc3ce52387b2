// Package slots implements the reel engine: a 5x3 machine with weighted reel
// strips, fixed paylines and a scatter symbol.
package slots

import (
	"fmt"
	"math"
	"slices"

	"github.com/fastprodman/casino/internal/rng"
)

const (
	Columns = 5
	Rows    = 3

	minLineMatch = 3
)

type Symbol string

// Grid is the visible window after a spin, indexed [row][column].
type Grid [Rows][Columns]Symbol

// Payline holds one row index per column.
type Payline [Columns]int

// Stake is a total stake in minor units split across the paylines.
// The remainder of the split is staked on the first line, so line stakes
// always sum to Total.
type Stake struct {
	Total     int64 `json:"total"`
	PerLine   int64 `json:"perLine"`
	Remainder int64 `json:"remainder"`
}

// Line returns the stake on the line at zero-based index i.
func (s Stake) Line(i int) int64 {
	if i == 0 {
		return s.PerLine + s.Remainder
	}

	return s.PerLine
}

type LineWin struct {
	LineIndex  int     `json:"lineIndex"` // 1-based
	Symbol     Symbol  `json:"symbol"`
	Count      int     `json:"count"`
	Multiplier int64   `json:"multiplier"`
	Win        int64   `json:"win"`
	Positions  Payline `json:"positions"`
}

type Result struct {
	Grid              Grid      `json:"grid"`
	LinesPlayed       int       `json:"linesPlayed"`
	WinningLines      []LineWin `json:"winningLines"`
	LineWins          int64     `json:"lineWins"`
	ScatterCount      int       `json:"scatterCount"`
	ScatterMultiplier int64     `json:"scatterMultiplier"`
	ScatterWin        int64     `json:"scatterWin"`
	TotalWin          int64     `json:"totalWin"`
}

// Machine is immutable after construction and safe for concurrent use.
type Machine struct {
	reels       [Columns][]Symbol
	paylines    []Payline
	paytable    map[Symbol]map[int]int64
	scatter     Symbol
	scatterPays map[int]int64
	// scatter counts with a configured pay, ascending
	scatterSteps []int
	maxStake     int64
}

// NewMachine validates cfg and builds a machine from a copy of it.
func NewMachine(cfg Config) (*Machine, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	m := &Machine{
		paylines:    make([]Payline, len(cfg.Paylines)),
		paytable:    make(map[Symbol]map[int]int64, len(cfg.Paytable)),
		scatter:     cfg.Scatter,
		scatterPays: make(map[int]int64, len(cfg.ScatterPays)),
	}

	for col, strip := range cfg.Reels {
		m.reels[col] = slices.Clone(strip)
	}
	for i, line := range cfg.Paylines {
		copy(m.paylines[i][:], line)
	}
	for sym, pays := range cfg.Paytable {
		cp := make(map[int]int64, len(pays))
		for count, mult := range pays {
			cp[count] = mult
		}
		m.paytable[sym] = cp
	}
	for count, mult := range cfg.ScatterPays {
		m.scatterPays[count] = mult
		m.scatterSteps = append(m.scatterSteps, count)
	}
	slices.Sort(m.scatterSteps)

	m.maxStake, err = maxStakeFor(cfg)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// maxStakeFor bounds the total stake so that no spin can overflow its win.
// Line wins are at most the top line multiplier times the total stake, since
// line stakes sum to the total, and the scatter win adds the top scatter
// multiplier times the total.
func maxStakeFor(cfg Config) (int64, error) {
	var topLine, topScatter int64

	for _, pays := range cfg.Paytable {
		for _, mult := range pays {
			topLine = max(topLine, mult)
		}
	}
	for _, mult := range cfg.ScatterPays {
		topScatter = max(topScatter, mult)
	}

	if topLine > math.MaxInt64-topScatter {
		return 0, fmt.Errorf("%w: multipliers overflow", ErrInvalidConfig)
	}

	top := topLine + topScatter
	if top == 0 {
		return math.MaxInt64, nil
	}

	return math.MaxInt64 / top, nil
}

// LineCount is the number of paylines played on every spin.
func (m *Machine) LineCount() int {
	return len(m.paylines)
}

// Scatter returns the scatter symbol.
func (m *Machine) Scatter() Symbol {
	return m.scatter
}

// MaxStake is the largest total stake Evaluate can score without overflow.
func (m *Machine) MaxStake() int64 {
	return m.maxStake
}

// SplitStake divides a total stake in minor units across the paylines.
func (m *Machine) SplitStake(total int64) Stake {
	lines := int64(len(m.paylines))

	return Stake{
		Total:     total,
		PerLine:   total / lines,
		Remainder: total % lines,
	}
}

// DrawGrid picks an independent stop on every reel and reads three
// consecutive symbols from it, wrapping around the strip.
func (m *Machine) DrawGrid(src rng.Source) (Grid, error) {
	var grid Grid

	for col, strip := range m.reels {
		stop, err := src.UniformInt(len(strip))
		if err != nil {
			return Grid{}, fmt.Errorf("draw reel %d: %w", col+1, err)
		}

		for row := range Rows {
			grid[row][col] = strip[(stop+row)%len(strip)]
		}
	}

	return grid, nil
}

// Evaluate scores a grid. It is a pure function of its arguments. The total
// stake must not exceed MaxStake.
//
// A line pays for consecutive matches of its leftmost symbol, starting at the
// first column. Lines starting on a scatter never pay. Scatters pay on their
// count anywhere on the grid, times the total stake.
func (m *Machine) Evaluate(grid Grid, stake Stake) Result {
	res := Result{
		Grid:         grid,
		LinesPlayed:  len(m.paylines),
		WinningLines: []LineWin{},
	}

	for i, line := range m.paylines {
		first := grid[line[0]][0]
		if first == m.scatter {
			continue
		}

		count := 1
		for col := 1; col < Columns; col++ {
			if grid[line[col]][col] != first {
				break
			}
			count++
		}

		mult, ok := m.paytable[first][count]
		if !ok {
			continue
		}

		win := mult * stake.Line(i)
		res.LineWins += win
		res.WinningLines = append(res.WinningLines, LineWin{
			LineIndex:  i + 1,
			Symbol:     first,
			Count:      count,
			Multiplier: mult,
			Win:        win,
			Positions:  line,
		})
	}

	for row := range Rows {
		for col := range Columns {
			if grid[row][col] == m.scatter {
				res.ScatterCount++
			}
		}
	}

	res.ScatterMultiplier = m.scatterMultiplier(res.ScatterCount)
	res.ScatterWin = res.ScatterMultiplier * stake.Total
	res.TotalWin = res.LineWins + res.ScatterWin

	return res
}

// scatterMultiplier uses the largest configured count not above n, so the
// top entry also covers any higher count.
func (m *Machine) scatterMultiplier(n int) int64 {
	var mult int64
	for _, step := range m.scatterSteps {
		if step > n {
			break
		}
		mult = m.scatterPays[step]
	}

	return mult
}

package slots

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

var ErrInvalidConfig = errors.New("invalid machine config")

// Config is the declarative definition of a machine.
type Config struct {
	Rows        int                      `yaml:"rows"`
	Scatter     Symbol                   `yaml:"scatter"`
	Reels       [][]Symbol               `yaml:"reels"`
	Paylines    [][]int                  `yaml:"paylines"`
	Paytable    map[Symbol]map[int]int64 `yaml:"paytable"`
	ScatterPays map[int]int64            `yaml:"scatter_pays"`
}

// ParseConfig decodes a YAML machine definition.
func ParseConfig(raw []byte) (Config, error) {
	var cfg Config

	err := yaml.Unmarshal(raw, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode machine config: %w", err)
	}

	return cfg, nil
}

// Default builds the machine compiled into the binary.
func Default() (*Machine, error) {
	cfg, err := ParseConfig(defaultConfig)
	if err != nil {
		return nil, err
	}

	return NewMachine(cfg)
}

//nolint:cyclop
func (c Config) validate() error {
	if c.Rows != Rows {
		return fmt.Errorf("%w: rows must be %d, got %d", ErrInvalidConfig, Rows, c.Rows)
	}
	if len(c.Reels) != Columns {
		return fmt.Errorf("%w: need %d reels, got %d", ErrInvalidConfig, Columns, len(c.Reels))
	}
	for i, strip := range c.Reels {
		if len(strip) < Rows {
			return fmt.Errorf("%w: reel %d shorter than %d symbols", ErrInvalidConfig, i+1, Rows)
		}
	}

	if len(c.Paylines) == 0 {
		return fmt.Errorf("%w: no paylines", ErrInvalidConfig)
	}
	for i, line := range c.Paylines {
		if len(line) != Columns {
			return fmt.Errorf("%w: payline %d has %d cells", ErrInvalidConfig, i+1, len(line))
		}
		for _, row := range line {
			if row < 0 || row >= Rows {
				return fmt.Errorf("%w: payline %d row %d out of range", ErrInvalidConfig, i+1, row)
			}
		}
	}

	if c.Scatter == "" {
		return fmt.Errorf("%w: scatter symbol required", ErrInvalidConfig)
	}
	if _, ok := c.Paytable[c.Scatter]; ok {
		return fmt.Errorf("%w: scatter %q cannot pay on lines", ErrInvalidConfig, c.Scatter)
	}
	for sym, pays := range c.Paytable {
		for count, mult := range pays {
			if count < minLineMatch || count > Columns {
				return fmt.Errorf("%w: %q pays on %d matches", ErrInvalidConfig, sym, count)
			}
			if mult <= 0 {
				return fmt.Errorf("%w: %q multiplier must be positive", ErrInvalidConfig, sym)
			}
		}
	}

	for count, mult := range c.ScatterPays {
		if count < 1 || mult <= 0 {
			return fmt.Errorf("%w: scatter pays %d:%d", ErrInvalidConfig, count, mult)
		}
	}

	return nil
}

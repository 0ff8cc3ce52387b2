// Package rng provides the randomness source every game outcome is drawn from.
//
// Draws come from a cryptographically secure generator and cannot be seeded or
// replayed. When the secure source fails the draw fails; there is no fallback.
package rng

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	ErrUnavailable  = errors.New("secure random source unavailable")
	ErrInvalidBound = errors.New("upper bound must be positive")
)

// Source draws uniformly distributed integers.
type Source interface {
	// UniformInt returns an integer in [0, n).
	UniformInt(n int) (int, error)
}

// Crypto is a Source backed by a cryptographically secure byte stream.
type Crypto struct {
	r io.Reader
}

// NewCrypto returns a Source reading entropy from r.
func NewCrypto(r io.Reader) *Crypto {
	return &Crypto{r: r}
}

// Default returns a Source backed by crypto/rand.
func Default() *Crypto {
	return NewCrypto(rand.Reader)
}

// UniformInt uses rand.Int, which rejection-samples, so results carry no modulo bias.
func (c *Crypto) UniformInt(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("uniform int %d: %w", n, ErrInvalidBound)
	}

	v, err := rand.Int(c.r, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return int(v.Int64()), nil
}

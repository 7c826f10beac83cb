// Package rng implements the seedable random number facility consumed
// throughout trait, gene, genome, species, and population operations.
//
// Every evolutionary operator takes an *RNG by reference rather than
// drawing from a package-level generator, so that a single top-level seed
// makes an entire run reproducible.
package rng

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// RNG is an instance-based random source. The zero value has no source and
// is not usable: create one with NewRNG, or call Seed or TimeSeed before
// drawing from it.
type RNG struct {
	source *rand.Rand

	// haveNextGauss/nextGauss cache the second deviate produced by the
	// polar Box-Muller construction used by RandGaussSigned, mirroring the
	// paired-sample trick from the original C implementation.
	haveNextGauss bool
	nextGauss     float64
}

// NewRNG returns an RNG seeded deterministically with s.
func NewRNG(s int64) *RNG {
	r := &RNG{}
	r.Seed(s)
	return r
}

// Seed reseeds the generator deterministically.
func (r *RNG) Seed(s int64) {
	r.source = rand.New(rand.NewSource(s))
	r.haveNextGauss = false
}

// TimeSeed reseeds the generator from the wall clock.
func (r *RNG) TimeSeed() {
	r.Seed(time.Now().UnixNano())
}

// RandPosNeg returns -1 or +1 with equal probability.
func (r *RNG) RandPosNeg() int {
	if r.source.Intn(2) == 0 {
		return -1
	}
	return 1
}

// RandInt returns a uniform random integer in the inclusive range [x, y].
// x must not be greater than y.
func (r *RNG) RandInt(x, y int) (int, error) {
	if y < x {
		return 0, errors.Errorf("RandInt: invalid range [%d, %d]", x, y)
	}
	if x == y {
		return x, nil
	}
	if x == y-1 {
		if r.source.Intn(2) == 0 {
			return x, nil
		}
		return y, nil
	}
	return x + r.source.Intn(y-x+1), nil
}

// RandFloat returns a uniform random float in [0, 1).
func (r *RNG) RandFloat() float64 {
	return r.source.Float64()
}

// RandFloatSigned returns a triangularly-distributed random float in
// [-1, 1], built as the difference of two independent uniform draws.
func (r *RNG) RandFloatSigned() float64 {
	return r.RandFloat() - r.RandFloat()
}

// RandGaussSigned returns a standard-normal deviate clamped to [-1, 1],
// generated with the polar (Marsaglia) form of the Box-Muller transform.
// One of every pair of generated deviates is cached for the next call.
func (r *RNG) RandGaussSigned() float64 {
	if r.haveNextGauss {
		r.haveNextGauss = false
		return clampUnit(r.nextGauss)
	}

	var v1, v2, s float64
	for {
		v1 = 2.0*r.RandFloat() - 1.0
		v2 = 2.0*r.RandFloat() - 1.0
		s = v1*v1 + v2*v2
		if s > 0 && s < 1 {
			break
		}
	}
	mul := math.Sqrt(-2.0 * math.Log(s) / s)
	r.nextGauss = v2 * mul
	r.haveNextGauss = true
	return clampUnit(v1 * mul)
}

func clampUnit(v float64) float64 {
	if v < -1.0 {
		return -1.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Roulette spins a roulette wheel whose slices are sized by p and returns
// the winning index. When every probability is zero it deterministically
// returns 0 rather than failing, matching the original implementation's
// accumulator never clearing the first (zero-width) slice.
func (r *RNG) Roulette(p []float64) int {
	if len(p) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range p {
		total += v
	}
	marble := r.RandFloat() * total
	spin := 0.0
	for i, v := range p {
		spin += v
		if spin >= marble {
			return i
		}
	}
	return len(p) - 1
}

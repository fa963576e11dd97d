package rules

import "math/rand"

// Roller is the randomness seam for every probabilistic resolution.
// Tests install a deterministic implementation.
type Roller interface {
	// Roll100 draws a uniform roll in [1,100].
	Roll100() int
	// Between draws a uniform integer in [min,max] inclusive.
	Between(min, max int) int
}

// NewRoller returns the production roller backed by math/rand.
func NewRoller() Roller {
	return stdRoller{}
}

type stdRoller struct{}

func (stdRoller) Roll100() int {
	return rand.Intn(100) + 1
}

func (stdRoller) Between(min, max int) int {
	if max <= min {
		return min
	}
	return rand.Intn(max-min+1) + min
}

// Pick returns a uniformly chosen element, or the zero value for an
// empty slice.
func Pick[T any](r Roller, options []T) T {
	var zero T
	if len(options) == 0 {
		return zero
	}
	return options[r.Between(0, len(options)-1)]
}

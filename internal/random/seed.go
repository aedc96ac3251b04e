// Package random builds the pseudo-random sources the draw engine consumes.
//
// Draws need no cryptographic strength, only uniformity; crypto/rand is used
// solely to pick an unpredictable seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a PCG-backed generator. A zero seed asks for a fresh
// crypto-random seed; any other value gives a reproducible sequence.
func New(seed uint64) (*rand.Rand, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), nil
}

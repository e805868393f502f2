package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
)

// Source supplies uniform draws in [0,1). *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewRand seeds a generator; a zero seed asks crypto/rand for one.
func NewRand(seed int64) (*mathrand.Rand, error) {
	if seed == 0 {
		var err error
		seed, err = newSeed()
		if err != nil {
			return nil, err
		}
	}
	return mathrand.New(mathrand.NewSource(seed)), nil
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

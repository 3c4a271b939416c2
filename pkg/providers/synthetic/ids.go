package synthetic

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Identifier prefixes
const (
	PrefixMessage    = "msg"
	PrefixBatch      = "batch"
	PrefixCustom     = "custom"
	PrefixCompletion = "compl"
)

// IDLength is the number of random characters after the prefix
const IDLength = 24

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDGenerator produces "{prefix}_{24 random [a-z0-9]}" identifiers. It is not
// safe for concurrent use; the Generator serializes access to it.
type IDGenerator struct {
	rnd *rand.Rand
}

// NewIDGenerator creates an identifier source. Equal seeds produce equal sequences.
func NewIDGenerator(seed int64) *IDGenerator {
	return &IDGenerator{rnd: newRand(seed)}
}

// New returns the next identifier for prefix
func (g *IDGenerator) New(prefix string) string {
	buf := make([]byte, 0, len(prefix)+1+IDLength)
	buf = append(buf, prefix...)
	buf = append(buf, '_')
	for i := 0; i < IDLength; i++ {
		buf = append(buf, idAlphabet[g.rnd.IntN(len(idAlphabet))])
	}
	return string(buf)
}

func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// randomSeed returns a seed from the system's secure random source
func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 1
	}
	seed := int64(binary.BigEndian.Uint64(b[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

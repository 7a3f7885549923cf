package common

import (
	"crypto/rand"
	"math/big"
)

// RandomSuffixLimit bounds the values returned by RandomSuffix.
const RandomSuffixLimit = 1_000_000_000

// RandomSuffix returns a uniformly distributed number in [0, RandomSuffixLimit).
// It is used to keep generated storage names unique between uploads that land
// in the same millisecond.
func RandomSuffix() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(RandomSuffixLimit))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop plaintext passwords from memory once they have been hashed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

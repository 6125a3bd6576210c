package ir

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint fold constants. Fingerprints live only in a running watcher
// and are never persisted.
const (
	fingerprintSeed       uint64 = 17
	fingerprintMultiplier uint64 = 31
)

// Fingerprint computes an order-sensitive running hash over records.
//
// For each record it folds in, in order: time, name, int parameter, float
// parameter, string parameter, and the object reference's ID (0 if absent).
// Each fold is h = h*31 + x. Because the multiplier is odd, changing any one
// numeric field always changes the result; strings go through xxhash first.
func Fingerprint(records []Record) uint64 {
	h := fingerprintSeed
	fold := func(x uint64) {
		h = h*fingerprintMultiplier + x
	}
	for _, r := range records {
		fold(uint64(math.Float32bits(r.Time)))
		fold(xxhash.Sum64String(r.Name))
		fold(uint64(uint32(r.IntParam)))
		fold(uint64(math.Float32bits(r.FloatParam)))
		fold(xxhash.Sum64String(r.StringParam))
		fold(uint64(r.Object.ID))
	}
	return h
}

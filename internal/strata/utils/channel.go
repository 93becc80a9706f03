package utils

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/strata-zk/strata/internal/strata/core"
)

// Channel is the Fiat-Shamir transcript: a 32-byte rolling digest
// plus a monotone counter. Every byte the prover commits to passes through
// Write; every challenge the verifier re-derives comes from RandomXxx. The
// prover and verifier must call these in identical order — the channel
// itself enforces nothing beyond that discipline; parallel workers never
// touch it directly.
type Channel struct {
	digest [32]byte
	count  uint64
}

// NewChannel initializes a channel from a seed: digest = hash(seed),
// counter = 0.
func NewChannel(seed []byte) *Channel {
	c := &Channel{}
	c.digest = keccak(seed)
	return c
}

// Write folds data into the transcript: digest <- hash(digest || data);
// counter resets to 0 so that get_random draws are always relative to the
// most recent write.
func (c *Channel) Write(data []byte) {
	c.digest = keccak(c.digest[:], data)
	c.count = 0
}

// WriteDigest folds a 32-byte digest (a Merkle root, typically) into the
// transcript.
func (c *Channel) WriteDigest(d core.Digest) {
	c.Write(d[:])
}

// Digest returns the transcript's current rolling digest, the seed the
// proof-of-work puzzle is posed against.
func (c *Channel) Digest() [32]byte {
	return c.digest
}

// RandomBytes emits hash(digest || counter), raw, and advances the
// counter. Used for query-index draws, which consume raw entropy rather
// than a uniform field element.
func (c *Channel) RandomBytes() [32]byte {
	out := keccak(c.digest[:], counterBytes(c.count))
	c.count++
	return out
}

// RandomFieldElement emits a pseudorandom, uniformly distributed element of
// 𝔽ₚ: draw hash(digest || counter) as a 256-bit integer, reject draws
// that fall in the partial final bucket above the largest multiple of p
// below 2^256 (so the reduction mod p is exactly uniform, not merely
// close), and retry with the next counter value on rejection.
func (c *Channel) RandomFieldElement() core.FieldElement {
	for {
		raw := core.U256FromBytes(c.RandomBytes())
		if raw.Cmp(rejectionThreshold) >= 0 {
			continue
		}
		return core.NewFieldElement(raw)
	}
}

// rejectionThreshold = floor(2^256 / p) * p, the largest multiple of the
// field modulus not exceeding 2^256. Draws at or above this value are
// resampled so that reduction mod p never favours the low residues.
var rejectionThreshold = computeRejectionThreshold()

func computeRejectionThreshold() core.U256 {
	allOnes := core.NewU256FromLimbs(^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)) // 2^256 - 1
	qMax, rMax, _ := allOnes.DivMod(core.Modulus)
	pMinus1, _ := core.Modulus.Sub(core.U256One)
	k := qMax
	if rMax.Equal(pMinus1) {
		// 2^256 mod p == 0 exactly: the true quotient is one more than
		// floor((2^256-1)/p).
		k, _ = qMax.Add(core.U256One)
	}
	return k.Mul(core.Modulus)
}

func counterBytes(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

func keccak(chunks ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

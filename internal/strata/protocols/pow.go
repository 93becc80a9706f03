package protocols

import (
	"encoding/binary"
	"math/bits"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/strata-zk/strata/internal/strata/utils"
)

// powMagicPrefix is a fixed 8-byte domain-separation constant mixed into
// every PoW seed.
var powMagicPrefix = [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xed}

// powSeed derives the per-puzzle Keccak seed from the channel digest and the
// difficulty. pow_bits fits in a single byte (0-255), so only that low byte
// of its big-endian encoding is ever nonzero; pow_bits == 0 contributes no
// extra byte at all.
func powSeed(digest [32]byte, powBits int) [32]byte {
	seed := make([]byte, 0, len(powMagicPrefix)+len(digest)+1)
	seed = append(seed, powMagicPrefix[:]...)
	seed = append(seed, digest[:]...)
	if powBits > 0 {
		seed = append(seed, byte(powBits))
	}
	return powKeccak(seed)
}

// powThreshold returns 2^(256-powBits) as a big-endian 32-byte string, for
// powBits in (0, 255]. powBits == 0 has no finite threshold (2^256 exceeds
// 256 bits) and is handled as an always-true comparison by the caller.
func powThreshold(powBits int) [32]byte {
	var t [32]byte
	bitPos := 256 - powBits
	byteIndex := 31 - bitPos/8
	t[byteIndex] = 1 << uint(bitPos%8)
	return t
}

// powLeadingZeroBits counts the leading zero bits of d read as a big-endian
// 256-bit integer.
func powLeadingZeroBits(d [32]byte) int {
	count := 0
	for _, b := range d {
		if b == 0 {
			count += 8
			continue
		}
		count += bits.LeadingZeros8(b)
		break
	}
	return count
}

// powLess reports whether a, read as a big-endian 256-bit integer, is
// strictly less than b.
func powLess(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// powCandidateValid applies the proof-of-work predicate: leading_zeros >=
// pow_bits, and strictly less than 2^(256-pow_bits).
func powCandidateValid(hash [32]byte, powBits int) bool {
	if powLeadingZeroBits(hash) < powBits {
		return false
	}
	if powBits == 0 {
		return true
	}
	return powLess(hash, powThreshold(powBits))
}

// powHashNonce computes Keccak(seedRes || nonce_be8).
func powHashNonce(seedRes [32]byte, nonce uint64) [32]byte {
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	return powKeccak(seedRes[:], nonceBytes[:])
}

// FindNonce brute-forces the smallest 64-bit nonce satisfying
// powCandidateValid, sharding the search range across utils.Workers()
// goroutines. Workers' chunks partition the nonce space in increasing
// order; each worker stops at the first hit in its own chunk and never
// because another worker reported a hit, so the result does not depend on
// goroutine scheduling: the smallest nonce is always the first in-chunk
// hit of the lowest-indexed worker that found one. Returns
// ok=false only if the entire 64-bit space is exhausted without a hit,
// which never happens in practice.
func FindNonce(digest [32]byte, powBits int) (uint64, bool) {
	seedRes := powSeed(digest, powBits)

	const searchChunk = 1 << 20
	workers := utils.Workers()
	if workers < 1 {
		workers = 1
	}

	found := make([]bool, workers)
	result := make([]uint64, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		start := uint64(w) * searchChunk
		wg.Add(1)
		go func(w int, start uint64) {
			defer wg.Done()
			for n := start; n < start+searchChunk; n++ {
				if powCandidateValid(powHashNonce(seedRes, n), powBits) {
					found[w] = true
					result[w] = n
					return
				}
			}
		}(w, start)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		if found[w] {
			return result[w], true
		}
	}

	// No hit in the first pass across all workers' chunks: widen the
	// search serially from the end of the scanned region. Effectively
	// unreachable at any realistic pow_bits.
	base := uint64(workers) * searchChunk
	for n := base; n != 0; n++ {
		if powCandidateValid(powHashNonce(seedRes, n), powBits) {
			return n, true
		}
	}
	return 0, false
}

// VerifyNonce re-applies the PoW predicate; the verifier's half of the
// puzzle.
func VerifyNonce(digest [32]byte, powBits int, nonce uint64) bool {
	seedRes := powSeed(digest, powBits)
	return powCandidateValid(powHashNonce(seedRes, nonce), powBits)
}

func powKeccak(chunks ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

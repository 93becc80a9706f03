// Package core implements the algebraic substrate of the prover: fixed-width
// integers, the prime field, the number-theoretic transform, dense
// polynomials, and the vector commitment.
package core

import (
	"encoding/binary"
	"math/bits"
)

// U256 is an unsigned 256-bit integer stored as four 64-bit limbs,
// little-endian (Limbs[0] is the least significant word). All arithmetic
// methods take and return values (never pointers to mutable shared state) so
// a U256 never needs heap allocation to compute with.
type U256 struct {
	Limbs [4]uint64
}

// NewU256FromLimbs builds a U256 from little-endian limbs.
func NewU256FromLimbs(l0, l1, l2, l3 uint64) U256 {
	return U256{Limbs: [4]uint64{l0, l1, l2, l3}}
}

// NewU256FromUint64 builds a U256 equal to n.
func NewU256FromUint64(n uint64) U256 {
	return U256{Limbs: [4]uint64{n, 0, 0, 0}}
}

// Zero and One are the additive and multiplicative identities of the ring
// Z/2^256.
var (
	U256Zero = U256{}
	U256One  = NewU256FromUint64(1)
)

// IsZero reports whether x is the zero value.
func (x U256) IsZero() bool {
	return x.Limbs == [4]uint64{}
}

// Equal reports whether x and y denote the same 256-bit value.
func (x U256) Equal(y U256) bool {
	return x.Limbs == y.Limbs
}

// Cmp returns -1, 0, or +1 as x is less than, equal to, or greater than y,
// comparing as unsigned 256-bit integers.
func (x U256) Cmp(y U256) int {
	for i := 3; i >= 0; i-- {
		if x.Limbs[i] != y.Limbs[i] {
			if x.Limbs[i] < y.Limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Add returns (x+y) mod 2^256 and the carry out of the top limb.
func (x U256) Add(y U256) (U256, uint64) {
	var r U256
	var c uint64
	r.Limbs[0], c = bits.Add64(x.Limbs[0], y.Limbs[0], 0)
	r.Limbs[1], c = bits.Add64(x.Limbs[1], y.Limbs[1], c)
	r.Limbs[2], c = bits.Add64(x.Limbs[2], y.Limbs[2], c)
	r.Limbs[3], c = bits.Add64(x.Limbs[3], y.Limbs[3], c)
	return r, c
}

// Sub returns (x-y) mod 2^256 and the borrow out of the top limb (1 if
// x < y as unsigned integers).
func (x U256) Sub(y U256) (U256, uint64) {
	var r U256
	var b uint64
	r.Limbs[0], b = bits.Sub64(x.Limbs[0], y.Limbs[0], 0)
	r.Limbs[1], b = bits.Sub64(x.Limbs[1], y.Limbs[1], b)
	r.Limbs[2], b = bits.Sub64(x.Limbs[2], y.Limbs[2], b)
	r.Limbs[3], b = bits.Sub64(x.Limbs[3], y.Limbs[3], b)
	return r, b
}

// mac computes lo, hi such that a + b*c + carryIn = hi*2^64 + lo.
func mac(a, b, c, carryIn uint64) (lo, hi uint64) {
	hi, lo = bits.Mul64(b, c)
	var c0, c1 uint64
	lo, c0 = bits.Add64(lo, a, 0)
	lo, c1 = bits.Add64(lo, carryIn, 0)
	hi += c0 + c1
	return lo, hi
}

// MulFull computes the full 256x256 -> 512 bit product, returned as two
// U256 (low and high halves).
func (x U256) MulFull(y U256) (lo, hi U256) {
	var r [8]uint64
	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			var lo64, hi64 uint64
			lo64, hi64 = mac(r[i+j], x.Limbs[i], y.Limbs[j], carry)
			r[i+j] = lo64
			carry = hi64
		}
		r[i+4] = carry
	}
	return U256{Limbs: [4]uint64{r[0], r[1], r[2], r[3]}},
		U256{Limbs: [4]uint64{r[4], r[5], r[6], r[7]}}
}

// SqrFull computes the full 512-bit square of x.
func (x U256) SqrFull() (lo, hi U256) {
	return x.MulFull(x)
}

// Mul returns the low 256 bits of x*y (the ring product modulo 2^256).
func (x U256) Mul(y U256) U256 {
	lo, _ := x.MulFull(y)
	return lo
}

// Shl returns x << n (n in [0,256)); bits shifted out are discarded.
func (x U256) Shl(n uint) U256 {
	if n == 0 {
		return x
	}
	if n >= 256 {
		return U256{}
	}
	var r U256
	words := n / 64
	bitsN := n % 64
	for i := 3; i >= 0; i-- {
		srcIdx := i - int(words)
		if srcIdx < 0 {
			continue
		}
		v := x.Limbs[srcIdx] << bitsN
		if bitsN > 0 && srcIdx > 0 {
			v |= x.Limbs[srcIdx-1] >> (64 - bitsN)
		}
		r.Limbs[i] = v
	}
	return r
}

// Shr returns x >> n (n in [0,256)), logical (unsigned) shift.
func (x U256) Shr(n uint) U256 {
	if n == 0 {
		return x
	}
	if n >= 256 {
		return U256{}
	}
	var r U256
	words := n / 64
	bitsN := n % 64
	for i := 0; i < 4; i++ {
		srcIdx := i + int(words)
		if srcIdx > 3 {
			continue
		}
		v := x.Limbs[srcIdx] >> bitsN
		if bitsN > 0 && srcIdx < 3 {
			v |= x.Limbs[srcIdx+1] << (64 - bitsN)
		}
		r.Limbs[i] = v
	}
	return r
}

// Bit returns the value (0 or 1) of bit i (i in [0,256)).
func (x U256) Bit(i uint) uint {
	if i >= 256 {
		return 0
	}
	return uint((x.Limbs[i/64] >> (i % 64)) & 1)
}

// BitLen returns the number of bits required to represent x, i.e. the index
// of the highest set bit plus one. BitLen(0) == 0.
func (x U256) BitLen() int {
	for i := 3; i >= 0; i-- {
		if x.Limbs[i] != 0 {
			return i*64 + bits.Len64(x.Limbs[i])
		}
	}
	return 0
}

// TrailingZeros returns the number of trailing zero bits. TrailingZeros(0) == 256.
func (x U256) TrailingZeros() int {
	for i := 0; i < 4; i++ {
		if x.Limbs[i] != 0 {
			return i*64 + bits.TrailingZeros64(x.Limbs[i])
		}
	}
	return 256
}

// Bytes encodes x as 32 little-endian bytes, limb 0 first.
func (x U256) Bytes() [32]byte {
	var out [32]byte
	for i, limb := range x.Limbs {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], limb)
	}
	return out
}

// U256FromBytes decodes a U256 from 32 little-endian bytes, the inverse of Bytes.
func U256FromBytes(b [32]byte) U256 {
	var x U256
	for i := range x.Limbs {
		x.Limbs[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return x
}

// divModLimb divides the 256-bit numerator by a nonzero single-limb divisor,
// returning quotient and remainder.
func divModLimb(num U256, d uint64) (q U256, rem uint64) {
	rem = 0
	for i := 3; i >= 0; i-- {
		q.Limbs[i], rem = bits.Div64(rem, num.Limbs[i], d)
	}
	return q, rem
}

// DivMod computes x/y and x%y via binary long division. Returns ok == false
// if y is zero (caller error, no observable state change — treated as a
// pure error return, not a panic).
func (x U256) DivMod(y U256) (q, r U256, ok bool) {
	if y.IsZero() {
		return U256{}, U256{}, false
	}
	if y.Limbs[1] == 0 && y.Limbs[2] == 0 && y.Limbs[3] == 0 {
		qq, rr := divModLimb(x, y.Limbs[0])
		return qq, NewU256FromUint64(rr), true
	}
	if x.Cmp(y) < 0 {
		return U256{}, x, true
	}
	// Schoolbook binary long division: shift the divisor up to align with
	// the dividend's top bit, then subtract-and-shift one bit at a time.
	n := x.BitLen() - y.BitLen()
	divisor := y.Shl(uint(n))
	remainder := x
	var quotient U256
	for i := n; i >= 0; i-- {
		if remainder.Cmp(divisor) >= 0 {
			remainder, _ = remainder.Sub(divisor)
			quotient.Limbs[i/64] |= uint64(1) << uint(i%64)
		}
		divisor = divisor.Shr(1)
	}
	return quotient, remainder, true
}

// MulMod computes (x*y) mod m. Returns ok == false if m is zero.
func (x U256) MulMod(y, m U256) (U256, bool) {
	if m.IsZero() {
		return U256{}, false
	}
	lo, hi := x.MulFull(y)
	return mulFullMod(lo, hi, m), true
}

// mulFullMod reduces a 512-bit value (lo, hi) modulo m via repeated
// long division on the 512-bit numerator, most-significant-word first.
func mulFullMod(lo, hi, m U256) U256 {
	// Accumulate the 512-bit value into the remainder incrementally:
	// rem = ((hi mod m) * 2^256 + lo) mod m, computed by shifting the 512
	// numerator bits into rem one at a time from the top down (512
	// single-bit steps), matching the bit-at-a-time division used by DivMod
	// but over double width. The bit shifted out of rem's top limb is kept
	// in top, so moduli at or above 2^255 reduce correctly.
	rem := U256{}
	all := [8]uint64{lo.Limbs[0], lo.Limbs[1], lo.Limbs[2], lo.Limbs[3], hi.Limbs[0], hi.Limbs[1], hi.Limbs[2], hi.Limbs[3]}
	for i := 511; i >= 0; i-- {
		top := rem.Limbs[3] >> 63
		rem = rem.Shl(1)
		word := all[i/64]
		bit := (word >> uint(i%64)) & 1
		if bit == 1 {
			rem.Limbs[0] |= 1
		}
		if top == 1 || rem.Cmp(m) >= 0 {
			rem, _ = rem.Sub(m)
		}
	}
	return rem
}

// InvMod computes the modular inverse of x modulo m via the extended
// Euclidean algorithm. Returns ok == false when gcd(x, m) != 1 (no inverse
// exists) or when m is zero.
func (x U256) InvMod(m U256) (U256, bool) {
	if m.IsZero() {
		return U256{}, false
	}
	g, xInv := extGCD(x, m)
	if !g.Equal(U256One) {
		return U256{}, false
	}
	return xInv, true
}

// extGCD returns gcd(a, m) and a value t such that a*t ≡ gcd(a,m) (mod m),
// using signed extended Euclid carried out over plain big.Int-free 256-bit
// arithmetic with explicit sign bookkeeping (the values involved never
// exceed the input magnitudes, so no extra limb is needed).
func extGCD(a, m U256) (g, t U256) {
	// Reduce a modulo m first.
	if a.Cmp(m) >= 0 {
		_, a, _ = a.DivMod(m)
	}
	if a.IsZero() {
		return m, U256{}
	}
	oldR, r := m, a
	oldS, s := U256{}, U256One
	oldSNeg, sNeg := false, false
	for !r.IsZero() {
		q, rem, _ := oldR.DivMod(r)
		oldR, r = r, rem
		// newS = oldS - q*s (signed), with q*s reduced mod m via full
		// 512-bit multiplication since both q and s can each approach m
		// in magnitude (q*s can exceed 256 bits before reduction).
		qsLo, qsHi := q.MulFull(s)
		qs := mulFullMod(qsLo, qsHi, m)
		var newS U256
		var newSNeg bool
		if oldSNeg == sNeg {
			// oldS - q*s : same sign magnitudes subtract/add depending on compare
			if oldS.Cmp(qs) >= 0 {
				newS, _ = oldS.Sub(qs)
				newSNeg = oldSNeg
			} else {
				newS, _ = qs.Sub(oldS)
				newSNeg = !oldSNeg
			}
		} else {
			// qs, oldS < m, so the sum is below 2m; a carry out of 256
			// bits (possible when m >= 2^255) is folded back by one
			// subtraction of m.
			var carry uint64
			newS, carry = oldS.Add(qs)
			if carry != 0 {
				newS, _ = newS.Sub(m)
			}
			newSNeg = oldSNeg
		}
		if newS.Cmp(m) >= 0 {
			_, newS, _ = newS.DivMod(m)
		}
		oldS, oldSNeg = s, sNeg
		s, sNeg = newS, newSNeg
	}
	if oldSNeg {
		oldS, _ = m.Sub(oldS)
	}
	return oldR, oldS
}

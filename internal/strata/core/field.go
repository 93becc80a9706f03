package core

import "math/bits"

// Field element arithmetic over 𝔽ₚ, p = 2^251 + 17*2^192 + 1 — the 252-bit
// "StarkWare" prime. Elements are stored in Montgomery form: the limbs held
// by a FieldElement represent x*R mod p where R = 2^256. The arithmetic
// is not constant time: Inv runs a variable-time extended Euclid, Pow and
// PowU256 branch on the exponent's bits, and Add, Sub and REDC branch on
// their conditional correction steps.

// Modulus is p in plain (non-Montgomery) form.
var Modulus = NewU256FromLimbs(
	0x0000000000000001,
	0x0000000000000000,
	0x0000000000000000,
	0x0800000000000011,
)

// fieldModulus is used by tests in this package that need the modulus
// without exporting extra surface from the package under test.
func fieldModulus() U256 { return Modulus }

// M64 = -p^-1 mod 2^64, the Montgomery reduction multiplier.
const M64 uint64 = 0xffffffffffffffff

// R1 = 2^256 mod p — Montgomery's representation of 1.
var R1 = NewU256FromLimbs(
	0xffffffffffffffe1,
	0xffffffffffffffff,
	0xffffffffffffffff,
	0x07fffffffffffdf0,
)

// R2 = 2^512 mod p — multiplying a plain residue by R2 and reducing maps it
// into Montgomery form.
var R2 = NewU256FromLimbs(
	0xfffffd737e000401,
	0x00000001330fffff,
	0xffffffffff6f8000,
	0x07ffd4ab5e008810,
)

// R3 = 2^768 mod p — used by the modular-inverse path (inv_redc).
var R3 = NewU256FromLimbs(
	0xcc7177d1406df18e,
	0x7545706677ffcc06,
	0xf47d84f836300018,
	0x038e5f79873c0a6d,
)

// Generator is a fixed primitive root of the multiplicative group of 𝔽ₚ.
// The group has order p-1 = 2^192 * 5 * 7 * 98714381 * 166848103.
var generatorPlain = NewU256FromUint64(3)

// FieldElement is a residue in 𝔽ₚ, stored in Montgomery form. Values are
// immutable; every operation returns a new FieldElement.
type FieldElement struct {
	m U256 // x * R mod p
}

// Zero and One are the additive and multiplicative identities.
var (
	FieldZero = FieldElement{}
	FieldOne  = FieldElement{m: R1}
)

// Generator is GENERATOR in Montgomery form.
var Generator = toMontgomeryElement(generatorPlain)

// redc performs Montgomery reduction: given a 512-bit value (lo, hi),
// returns lo * R^-1 mod p, per Algorithm 14.32 (Handbook of Applied
// Cryptography), specialised to four 64-bit limbs.
func redc(lo, hi U256) U256 {
	a := [8]uint64{lo.Limbs[0], lo.Limbs[1], lo.Limbs[2], lo.Limbs[3], hi.Limbs[0], hi.Limbs[1], hi.Limbs[2], hi.Limbs[3]}
	carry2 := uint64(0)
	for i := 0; i < 4; i++ {
		ui := a[i] * M64
		_, carry := mac(a[i], ui, Modulus.Limbs[0], 0)
		for j := 1; j < 4; j++ {
			a[i+j], carry = mac(a[i+j], ui, Modulus.Limbs[j], carry)
		}
		sum, c0 := bits.Add64(a[i+4], carry2, 0)
		sum, c1 := bits.Add64(sum, carry, 0)
		a[i+4] = sum
		carry2 = c0 + c1
	}
	r := U256{Limbs: [4]uint64{a[4], a[5], a[6], a[7]}}
	if r.Cmp(Modulus) >= 0 {
		r, _ = r.Sub(Modulus)
	}
	return r
}

// mulRedc computes the Montgomery product of two plain U256 values already
// interpreted as Montgomery-form residues. It is not a fused multiply: it
// computes the full 512-bit product with MulFull and then reduces that wide
// intermediate with redc.
func mulRedc(x, y U256) U256 {
	lo, hi := x.MulFull(y)
	return redc(lo, hi)
}

func toMontgomeryElement(plain U256) FieldElement {
	return FieldElement{m: mulRedc(plain, R2)}
}

// NewFieldElement reduces n modulo p (n may be any U256, including values
// >= p) and converts it to Montgomery form.
func NewFieldElement(n U256) FieldElement {
	if n.Cmp(Modulus) >= 0 {
		_, n, _ = n.DivMod(Modulus)
	}
	return toMontgomeryElement(n)
}

// NewFieldElementFromUint64 builds a field element from a small integer.
func NewFieldElementFromUint64(n uint64) FieldElement {
	return NewFieldElement(NewU256FromUint64(n))
}

// Uint64 returns the plain (non-Montgomery) value as a U256.
func (a FieldElement) Uint64() U256 {
	return redc(a.m, U256{})
}

// Bytes encodes a as 32 little-endian bytes of its plain (non-Montgomery)
// representative, the canonical encoding used by the channel and the vector
// commitment.
func (a FieldElement) Bytes() [32]byte {
	return a.Uint64().Bytes()
}

// FieldElementFromBytes decodes 32 little-endian bytes as a plain residue
// and converts it to Montgomery form, reducing modulo p if necessary.
func FieldElementFromBytes(b [32]byte) FieldElement {
	return NewFieldElement(U256FromBytes(b))
}

// IsZero reports whether a is the additive identity.
func (a FieldElement) IsZero() bool {
	return a.m.IsZero()
}

// Equal reports whether a and b denote the same field element.
func (a FieldElement) Equal(b FieldElement) bool {
	return a.m.Equal(b.m)
}

// Add returns a+b.
func (a FieldElement) Add(b FieldElement) FieldElement {
	sum, carry := a.m.Add(b.m)
	if carry != 0 || sum.Cmp(Modulus) >= 0 {
		sum, _ = sum.Sub(Modulus)
	}
	return FieldElement{m: sum}
}

// Sub returns a-b.
func (a FieldElement) Sub(b FieldElement) FieldElement {
	diff, borrow := a.m.Sub(b.m)
	if borrow != 0 {
		diff, _ = diff.Add(Modulus)
	}
	return FieldElement{m: diff}
}

// Neg returns -a.
func (a FieldElement) Neg() FieldElement {
	return FieldZero.Sub(a)
}

// Mul returns a*b.
func (a FieldElement) Mul(b FieldElement) FieldElement {
	return FieldElement{m: mulRedc(a.m, b.m)}
}

// Sqr returns a*a.
func (a FieldElement) Sqr() FieldElement {
	return a.Mul(a)
}

// Inv returns the multiplicative inverse of a. ok is false iff a is zero.
func (a FieldElement) Inv() (FieldElement, bool) {
	if a.IsZero() {
		return FieldElement{}, false
	}
	inv, ok := a.m.InvMod(Modulus)
	if !ok {
		return FieldElement{}, false
	}
	// inv_redc(n) = mul_redc(invmod(n, p), R3): invmod of the Montgomery
	// value x*R gives x^-1*R^-1, and one extra Montgomery multiply by R3 both re-enters
	// Montgomery form and corrects for the missing R factor.
	return FieldElement{m: mulRedc(inv, R3)}, true
}

// Div returns a/b. ok is false iff b is zero.
func (a FieldElement) Div(b FieldElement) (FieldElement, bool) {
	bInv, ok := b.Inv()
	if !ok {
		return FieldElement{}, false
	}
	return a.Mul(bInv), true
}

// Pow returns a^exp. Pow(0, 0) returns ok == false (0^0 is undefined here);
// every other case returns ok == true.
func (a FieldElement) Pow(exp uint64) (FieldElement, bool) {
	if a.IsZero() && exp == 0 {
		return FieldElement{}, false
	}
	result := FieldOne
	base := a
	e := exp
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result, true
}

// PowU256 returns a^exp for an arbitrary-width exponent, used when deriving
// roots of unity and Legendre symbols where the exponent itself is a
// near-full-width field element (e.g. (p-1)/2).
func (a FieldElement) PowU256(exp U256) FieldElement {
	result := FieldOne
	base := a
	n := exp.BitLen()
	for i := 0; i < n; i++ {
		if exp.Bit(uint(i)) == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
	}
	return result
}

// RootOfUnity returns a primitive n-th root of unity in 𝔽ₚ. n must be a
// power of two dividing p-1, i.e. n <= 2^192; ok is false otherwise.
func RootOfUnity(n uint64) (FieldElement, bool) {
	if n == 0 || (n&(n-1)) != 0 {
		return FieldElement{}, false
	}
	const twoAdicity = 192
	log2n := 0
	for v := n; v > 1; v >>= 1 {
		log2n++
	}
	if log2n > twoAdicity {
		return FieldElement{}, false
	}
	// exponent = (p-1) / n
	pMinus1, _ := Modulus.Sub(U256One)
	exponent := pMinus1.Shr(uint(log2n))
	return Generator.PowU256(exponent), true
}

// nonResidue is a fixed quadratic nonresidue of 𝔽ₚ, used as the Tonelli-
// Shanks generator of the 2-Sylow subgroup. 3 (the field generator) is
// itself a nonresidue since the multiplicative group's 2-part has order
// 2^192 and GENERATOR generates the whole group.
var nonResidue = Generator

// legendre returns a^((p-1)/2): 1 if a is a nonzero quadratic residue, -1
// (i.e. p-1 in plain form) if a is a nonresidue, 0 if a is zero.
func (a FieldElement) legendre() FieldElement {
	pMinus1, _ := Modulus.Sub(U256One)
	exp := pMinus1.Shr(1)
	return a.PowU256(exp)
}

// Sqrt computes a square root of a via Tonelli-Shanks over the 192-bit
// 2-adic component of p-1. ok is false iff a is a nonresidue (Legendre
// symbol -1); when ok, exactly one of the two roots is returned (the other
// is its negation).
func (a FieldElement) Sqrt() (FieldElement, bool) {
	if a.IsZero() {
		return FieldElement{}, true
	}
	if !a.legendre().Equal(FieldOne) {
		return FieldElement{}, false
	}
	// Write p-1 = Q * 2^S, Q odd.
	pMinus1, _ := Modulus.Sub(U256One)
	s := uint(pMinus1.TrailingZeros())
	q := pMinus1.Shr(s)

	m := s
	c := nonResidue.PowU256(q)
	qPlus1Over2, _ := q.Add(U256One)
	qPlus1Over2 = qPlus1Over2.Shr(1)
	t := a.PowU256(q)
	r := a.PowU256(qPlus1Over2)

	for !t.Equal(FieldOne) {
		// find least i, 0 < i < m, such that t^(2^i) = 1
		i := uint(0)
		tt := t
		for !tt.Equal(FieldOne) {
			tt = tt.Mul(tt)
			i++
		}
		// b = c^(2^(m-i-1))
		b := c
		for j := uint(0); j < m-i-1; j++ {
			b = b.Mul(b)
		}
		m = i
		c = b.Mul(b)
		t = t.Mul(c)
		r = r.Mul(b)
	}
	return r, true
}

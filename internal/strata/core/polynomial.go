package core

// Polynomial-level operations over 𝔽ₚ, built on the NTT engine. A
// polynomial is represented simply as []FieldElement, coefficient i
// multiplying x^i — there is no wrapping struct, matching the
// value-oriented style of U256 and FieldElement.

// Evaluate computes p(x) via Horner's rule in O(deg p) field operations.
func Evaluate(coeffs []FieldElement, x FieldElement) FieldElement {
	acc := FieldZero
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}

// Interpolate recovers the coefficients of the unique degree-<n polynomial
// agreeing with values on the size-n subgroup generated by the canonical
// n-th root of unity, i.e. the inverse NTT of the evaluation form. values is
// consumed by value; the caller's slice is left untouched.
func Interpolate(values []FieldElement) ([]FieldElement, error) {
	coeffs := make([]FieldElement, len(values))
	copy(coeffs, values)
	if err := InverseNTT(coeffs); err != nil {
		return nil, err
	}
	return coeffs, nil
}

// CosetDomain returns the n domain points CosetEvaluate(coeffs, cofactor)
// evaluates a length-n polynomial on, in the same bit-reversed order: point
// i is cofactor*ω^bitrev(i, log2 n).
func CosetDomain(n int, cofactor FieldElement) ([]FieldElement, error) {
	log2n, ok := log2Exact(n)
	if !ok {
		return nil, errNotPowerOfTwo
	}
	omega, ok := RootOfUnity(uint64(n))
	if !ok {
		return nil, errRootUnavailable
	}
	out := make([]FieldElement, n)
	for i := 0; i < n; i++ {
		k := bitReverse(uint(i), log2n)
		p, _ := omega.Pow(uint64(k))
		out[i] = cofactor.Mul(p)
	}
	return out, nil
}

// Pad zero-extends coeffs to length n, the representation of the same
// polynomial with explicit zero coefficients for its unused higher-degree
// terms.
func Pad(coeffs []FieldElement, n int) []FieldElement {
	if len(coeffs) >= n {
		out := make([]FieldElement, n)
		copy(out, coeffs[:n])
		return out
	}
	out := make([]FieldElement, n)
	copy(out, coeffs)
	return out
}

// LowDegreeExtension evaluates a degree-<n polynomial on the larger domain
// of size n*blowup, offset by the field generator. The larger domain is
// partitioned into `blowup` cosets of size n, each a shift of the base
// domain by generator*ω_domain^k for k = 0..blowup-1; each coset is
// evaluated with one coset-NTT (values bit-reversed within the coset) and
// the results are concatenated in natural order of k. The coset order is
// not bit-reversed, so the whole output is not the bit-reversed order of
// the size n*blowup domain.
func LowDegreeExtension(coeffs []FieldElement, blowup int) ([]FieldElement, error) {
	n := len(coeffs)
	if blowup <= 0 {
		return nil, errNotPowerOfTwo
	}
	if _, ok := log2Exact(blowup); !ok {
		return nil, errNotPowerOfTwo
	}
	extended := make([]FieldElement, n*blowup)

	if blowup == 1 {
		values, err := CosetEvaluate(coeffs, Generator)
		if err != nil {
			return nil, err
		}
		copy(extended, values)
		return extended, nil
	}

	cosetGenerator, ok := RootOfUnity(uint64(n * blowup))
	if !ok {
		return nil, errRootUnavailable
	}

	for k := 0; k < blowup; k++ {
		shift, _ := cosetGenerator.Pow(uint64(k))
		cofactor := Generator.Mul(shift)
		values, err := CosetEvaluate(coeffs, cofactor)
		if err != nil {
			return nil, err
		}
		copy(extended[k*n:(k+1)*n], values)
	}
	return extended, nil
}

// DivideOutPointInto computes α·(P(x) − P(z))/(x − z) via synthetic
// division and adds the result, coefficient by coefficient, into
// accumulator, which is grown to len(coeffs)-1 if it is shorter; the
// possibly grown accumulator is returned. This is the out-of-domain divide-out: the
// quotient has degree one less than P, since x = z is by construction a
// root of the numerator.
func DivideOutPointInto(coeffs []FieldElement, z, alpha FieldElement, accumulator []FieldElement) []FieldElement {
	n := len(coeffs)
	if n == 0 {
		return accumulator
	}
	quotientLen := n - 1
	if quotientLen == 0 {
		return accumulator
	}
	if len(accumulator) < quotientLen {
		grown := make([]FieldElement, quotientLen)
		copy(grown, accumulator)
		accumulator = grown
	}

	// Synthetic division of P(x) by (x - z): P(x) = Q(x)*(x-z) + P(z), so
	// the quotient from dividing the raw coefficients by (x - z) already
	// equals (P(x) - P(z))/(x - z) with no separate P(z) subtraction step.
	quotient := make([]FieldElement, quotientLen)
	carry := coeffs[n-1]
	for i := quotientLen - 1; i >= 0; i-- {
		quotient[i] = carry
		carry = coeffs[i].Add(carry.Mul(z))
	}

	for i := range quotient {
		accumulator[i] = accumulator[i].Add(alpha.Mul(quotient[i]))
	}
	return accumulator
}

// Zeros returns a length-len zero polynomial.
func Zeros(length int) []FieldElement {
	return make([]FieldElement, length)
}

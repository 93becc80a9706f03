package core

import "fmt"

// BatchInvert inverts every element of in using Montgomery's trick: one
// accumulated-product inversion plus 3(n-1) multiplications, instead of n
// independent extended-GCD inversions.
func BatchInvert(in []FieldElement) ([]FieldElement, error) {
	n := len(in)
	if n == 0 {
		return nil, nil
	}

	acc := make([]FieldElement, n)
	acc[0] = in[0]
	for i := 1; i < n; i++ {
		if in[i].IsZero() {
			return nil, fmt.Errorf("core: cannot batch-invert a zero element at index %d", i)
		}
		acc[i] = acc[i-1].Mul(in[i])
	}
	if in[0].IsZero() {
		return nil, fmt.Errorf("core: cannot batch-invert a zero element at index 0")
	}

	accInv, ok := acc[n-1].Inv()
	if !ok {
		return nil, fmt.Errorf("core: cannot batch-invert a zero element")
	}

	out := make([]FieldElement, n)
	for i := n - 1; i > 0; i-- {
		out[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(in[i])
	}
	out[0] = accInv
	return out, nil
}

package protocols

import (
	"testing"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

func bitReversedDomain(n int, shift core.FieldElement) []core.FieldElement {
	omega, _ := core.RootOfUnity(uint64(n))
	log2n, _ := core.Log2Exact(n)
	out := make([]core.FieldElement, n)
	for i := 0; i < n; i++ {
		k := core.BitReverse(uint(i), log2n)
		p, _ := omega.Pow(uint64(k))
		out[i] = shift.Mul(p)
	}
	return out
}

func TestFoldHalvesDomainAndSquares(t *testing.T) {
	n := 16
	coeffs := make([]core.FieldElement, 4)
	for i := range coeffs {
		coeffs[i] = core.NewFieldElementFromUint64(uint64(i + 1))
	}
	values, err := core.LowDegreeExtension(coeffs, n/4)
	if err != nil {
		t.Fatal(err)
	}
	domain := bitReversedDomain(n, core.Generator)

	alpha := core.NewFieldElementFromUint64(7)
	newValues, newDomain, err := Fold(values, domain, alpha)
	if err != nil {
		t.Fatal(err)
	}
	if len(newValues) != n/2 || len(newDomain) != n/2 {
		t.Fatalf("expected half-length layer, got %d/%d", len(newValues), len(newDomain))
	}
	for i := range newDomain {
		want := domain[2*i].Mul(domain[2*i])
		if !newDomain[i].Equal(want) {
			t.Fatalf("domain[%d] not squared correctly", i)
		}
	}
}

func TestFoldRejectsMismatchedLengths(t *testing.T) {
	values := []core.FieldElement{core.FieldOne, core.FieldOne}
	domain := []core.FieldElement{core.FieldOne}
	if _, _, err := Fold(values, domain, core.FieldOne); err == nil {
		t.Fatal("expected a length-mismatch error")
	}
}

func TestRunFriProducesConsistentLayersAndFinalPolynomial(t *testing.T) {
	n := 64
	degree := 4
	coeffs := make([]core.FieldElement, degree)
	for i := range coeffs {
		coeffs[i] = core.NewFieldElementFromUint64(uint64(i + 3))
	}
	blowup := n / degree
	values, err := core.LowDegreeExtension(coeffs, blowup)
	if err != nil {
		t.Fatal(err)
	}
	domain := bitReversedDomain(n, core.Generator)

	ch := utils.NewChannel([]byte("fri-test"))
	layout := []int{2, 1}
	result, err := RunFri(values, domain, core.Generator, layout, ch)
	if err != nil {
		t.Fatal(err)
	}

	totalReduction := 0
	for _, r := range layout {
		totalReduction += r
	}
	if len(result.Layers) != totalReduction-1 {
		t.Fatalf("expected %d committed intermediate layers, got %d", totalReduction-1, len(result.Layers))
	}
	wantFinalLen := n >> totalReduction
	if len(result.FinalPolynomial) != wantFinalLen {
		t.Fatalf("expected final polynomial of length %d, got %d", wantFinalLen, len(result.FinalPolynomial))
	}

	// The final polynomial must evaluate on the final coset domain to a
	// layer of the expected length. The values themselves are not compared:
	// FriResult does not keep the last folded layer.
	finalValues, err := core.CosetEvaluate(result.FinalPolynomial, result.FinalShift)
	if err != nil {
		t.Fatal(err)
	}
	if len(finalValues) != wantFinalLen {
		t.Fatalf("unexpected coset-evaluate length: %d", len(finalValues))
	}
}

func TestVerifyFoldStepMatchesFold(t *testing.T) {
	n := 16
	coeffs := make([]core.FieldElement, 4)
	for i := range coeffs {
		coeffs[i] = core.NewFieldElementFromUint64(uint64(2*i + 1))
	}
	values, err := core.LowDegreeExtension(coeffs, n/4)
	if err != nil {
		t.Fatal(err)
	}
	domain := bitReversedDomain(n, core.Generator)
	alpha := core.NewFieldElementFromUint64(11)

	newValues, _, err := Fold(values, domain, alpha)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(newValues); i++ {
		got := VerifyFoldStep([2]core.FieldElement{values[2*i], values[2*i+1]}, domain[2*i], alpha)
		if !got.Equal(newValues[i]) {
			t.Fatalf("VerifyFoldStep mismatch at %d", i)
		}
	}
}

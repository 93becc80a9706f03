package protocols

import (
	"fmt"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// FriLayer is one committed layer of the folding phase (every single fold
// step except the last is committed, not only fri_layout's round
// boundaries): its
// bit-reversed evaluations and matching domain points, plus the Merkle tree
// over those evaluations (one field element per leaf).
type FriLayer struct {
	Values []core.FieldElement
	Domain []core.FieldElement
	Tree   *core.Tree
}

// FriResult is the complete output of RunFri: every committed layer in
// round order, plus the final layer written directly as coefficients
// rather than committed -- it is short enough that the verifier can
// recompute its evaluations itself.
type FriResult struct {
	Layers          []FriLayer
	FinalPolynomial []core.FieldElement
	FinalShift      core.FieldElement
}

// Fold performs one single-fold reduction: given a layer's bit-reversed
// evaluations and matching domain points, and a folding coefficient alpha,
// produces the half-length layer on the squared domain. Adjacent pairs
// (values[2i], values[2i+1]) are exactly the (x, -x) pairs under this
// storage convention: in a bit-reversed array of a size-n subgroup,
// doubling an index by n/2 in natural order is the same as flipping the
// pair bit (bit 0) of the pre-reversal index, so paired points always land
// at adjacent positions.
func Fold(values, domain []core.FieldElement, alpha core.FieldElement) ([]core.FieldElement, []core.FieldElement, error) {
	n := len(values)
	if n == 0 || n%2 != 0 {
		return nil, nil, fmt.Errorf("protocols: fold requires a nonzero even-length layer, got %d", n)
	}
	if len(domain) != n {
		return nil, nil, fmt.Errorf("protocols: domain length %d does not match layer length %d", len(domain), n)
	}

	half := n / 2
	evenX := make([]core.FieldElement, half)
	for i := 0; i < half; i++ {
		evenX[i] = domain[2*i]
	}
	xInv, err := core.BatchInvert(evenX)
	if err != nil {
		return nil, nil, fmt.Errorf("protocols: fold: %w", err)
	}

	newValues := make([]core.FieldElement, half)
	newDomain := make([]core.FieldElement, half)
	utils.ForEachIndex(half, func(i int) {
		u := values[2*i]
		v := values[2*i+1]
		sum := u.Add(v)
		diff := u.Sub(v)
		newValues[i] = sum.Add(alpha.Mul(xInv[i]).Mul(diff))
		newDomain[i] = evenX[i].Mul(evenX[i])
	})
	return newValues, newDomain, nil
}

// commitLayer wraps a layer's values in a Merkle tree, one field element
// per leaf -- FRI layers never group leaves, unlike the trace commitment.
func commitLayer(values []core.FieldElement) (*core.Tree, error) {
	return core.Commit(len(values), func(index int) []core.FieldElement {
		return []core.FieldElement{values[index]}
	})
}

// RunFri runs the folding phase over an initial bit-reversed LDE layer and
// its matching domain points. fri_layout entries are
// flattened into a single sequence of Σ fri_layout single-fold steps, one
// fresh challenge drawn per step; every resulting layer is committed except
// the very last, which is interpolated straight to coefficient form instead
// ("the final FRI layer", too short to need its own tree). Committing every
// single fold, rather than only at fri_layout's round boundaries, keeps
// each query's decommitment a single adjacent pair per layer -- no
// uncommitted intra-round fiber ever needs revealing. shift is the coset
// cofactor of initialDomain (Generator for the plain LDE domain), needed to
// undo the coset when interpolating the final layer.
func RunFri(initialValues, initialDomain []core.FieldElement, shift core.FieldElement, layout []int, ch *utils.Channel) (FriResult, error) {
	if len(layout) == 0 {
		return FriResult{}, fmt.Errorf("protocols: fri_layout must have at least one round")
	}
	total := 0
	for round, reduction := range layout {
		if reduction <= 0 {
			return FriResult{}, fmt.Errorf("protocols: fri_layout[%d] must be positive, got %d", round, reduction)
		}
		total += reduction
	}

	values, domain := initialValues, initialDomain
	currentShift := shift

	var result FriResult
	for step := 0; step < total; step++ {
		alpha := ch.RandomFieldElement()
		var err error
		values, domain, err = Fold(values, domain, alpha)
		if err != nil {
			return FriResult{}, fmt.Errorf("protocols: fri step %d: %w", step, err)
		}
		currentShift = currentShift.Mul(currentShift)

		if step == total-1 {
			break
		}
		tree, err := commitLayer(values)
		if err != nil {
			return FriResult{}, fmt.Errorf("protocols: fri step %d commit: %w", step, err)
		}
		ch.WriteDigest(tree.Root())
		result.Layers = append(result.Layers, FriLayer{Values: values, Domain: domain, Tree: tree})
	}

	finalPoly, err := core.InverseCosetEvaluate(values, currentShift)
	if err != nil {
		return FriResult{}, fmt.Errorf("protocols: final fri layer: %w", err)
	}
	result.FinalPolynomial = finalPoly
	result.FinalShift = currentShift
	return result, nil
}

// VerifyFoldStep recomputes one fold at a single queried position: given
// the revealed pair {values[2i], values[2i+1]}, the domain point pairX of
// values[2i], and the step's challenge alpha, it returns the folded value
// Fold would produce at index i of the next layer. It performs no
// comparison itself; the caller checks the result against the next
// layer's leaf or the final polynomial.
func VerifyFoldStep(pairValues [2]core.FieldElement, pairX core.FieldElement, alpha core.FieldElement) core.FieldElement {
	xInv, _ := pairX.Inv()
	sum := pairValues[0].Add(pairValues[1])
	diff := pairValues[0].Sub(pairValues[1])
	return sum.Add(alpha.Mul(xInv).Mul(diff))
}

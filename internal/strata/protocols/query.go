package protocols

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// drawQueryIndices draws numQueries distinct indices in [0, domainSize) from
// ch, four at a time: each RandomBytes draw yields four independent 64-bit
// words, each masked to the low log2(domainSize) bits, since domainSize is
// always a power of two. Indices are deduplicated and returned sorted,
// matching the deterministic order both prover and verifier iterate queries
// in.
func drawQueryIndices(ch *utils.Channel, numQueries, domainSize int) ([]int, error) {
	if !utils.IsPowerOfTwo(domainSize) {
		return nil, fmt.Errorf("protocols: query domain size %d is not a power of two", domainSize)
	}
	mask := uint64(domainSize - 1)
	seen := make(map[int]bool, numQueries)
	indices := make([]int, 0, numQueries)
	for len(indices) < numQueries {
		raw := ch.RandomBytes()
		for w := 0; w < 4 && len(indices) < numQueries; w++ {
			word := binary.BigEndian.Uint64(raw[w*8 : w*8+8])
			idx := int(word & mask)
			if !seen[idx] {
				seen[idx] = true
				indices = append(indices, idx)
			}
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// oodsClaims bundles every public value the verifier needs to recombine the
// first (uncommitted) FRI layer's value at an arbitrary domain point x from
// opened trace and split-constraint leaves alone, without ever
// reconstructing the accumulator polynomial's coefficients: per point x,
//
//	P(x) = Σᵢ traceAlpha[i]*(Tᵢ(x) - traceClaims[i]) / (x - z·g^offsetᵢ)
//	     + Σⱼ splitAlpha[j]*(Aⱼ(x) - splitClaims[j]) / (x - z^d)
//
// which is exactly core.DivideOutPointInto's synthetic-division identity,
// evaluated pointwise instead of built as a coefficient accumulator.
type oodsClaims struct {
	TraceArgs      []TraceArgument
	TraceClaims    []core.FieldElement
	TraceAlphas    []core.FieldElement
	TraceGenerator core.FieldElement
	Z              core.FieldElement
	ZD             core.FieldElement
	SplitClaims    []core.FieldElement
	SplitAlphas    []core.FieldElement
}

// pairClosure returns the sorted, deduplicated set of indices ∪ their
// adjacent-pair siblings (idx^1): exactly the leaf positions a batched
// Merkle opening must reveal to let the verifier redo one fold step per
// queried index.
func pairClosure(indices []int) []int {
	seen := make(map[int]bool, len(indices)*2)
	var out []int
	for _, idx := range indices {
		for _, v := range [2]int{idx, idx ^ 1} {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Ints(out)
	return out
}

// friPairIndices returns the pair-closure of queries' positions within FRI
// layer layerIdx: layer 0 is the result of one fold (index space halved
// once), so a query's position there is queries[i] >> 1; layer layerIdx in
// general holds queries[i] >> (layerIdx+1).
func friPairIndices(queries []int, layerIdx int) []int {
	shift := uint(layerIdx + 1)
	folded := make([]int, len(queries))
	for i, q := range queries {
		folded[i] = q >> shift
	}
	return pairClosure(folded)
}

// openingNodeCount mirrors core.Tree.Open's level-by-level index reduction
// to predict, without a tree, exactly how many sibling digests a batched
// opening over domain for indices will contain -- the verifier needs this
// count up front since Builder writes no length prefix.
func openingNodeCount(domain int, indices []int) int {
	cur := append([]int(nil), indices...)
	sort.Ints(cur)
	count := 0
	levelOffset := domain
	for len(cur) > 0 && levelOffset > 1 {
		activeSet := make(map[int]bool, len(cur))
		for _, i := range cur {
			activeSet[i] = true
		}
		parents := make(map[int]bool)
		for _, i := range cur {
			sibling := i ^ 1
			if !activeSet[sibling] {
				count++
			}
			parents[i/2] = true
		}
		next := make([]int, 0, len(parents))
		for p := range parents {
			next = append(next, p)
		}
		sort.Ints(next)
		cur = next
		levelOffset /= 2
	}
	return count
}

// recombineAt evaluates the first FRI layer's value at x given the already
// opened trace-column values and split-polynomial values at that same
// point, in the order of claims.TraceArgs and claims.SplitClaims
// respectively.
func recombineAt(x core.FieldElement, traceValsAtX, splitValsAtX []core.FieldElement, claims oodsClaims) (core.FieldElement, error) {
	acc := core.FieldZero
	for i, arg := range claims.TraceArgs {
		pole := shiftByOffset(claims.TraceGenerator, claims.Z, arg.Offset)
		denom := x.Sub(pole)
		denomInv, ok := denom.Inv()
		if !ok {
			return core.FieldElement{}, fmt.Errorf("protocols: query point coincides with trace argument %d's oods pole", i)
		}
		numerator := traceValsAtX[i].Sub(claims.TraceClaims[i])
		acc = acc.Add(claims.TraceAlphas[i].Mul(numerator).Mul(denomInv))
	}
	denom := x.Sub(claims.ZD)
	denomInv, ok := denom.Inv()
	if !ok {
		return core.FieldElement{}, fmt.Errorf("protocols: query point coincides with the split-polynomial oods pole")
	}
	for j, v := range splitValsAtX {
		numerator := v.Sub(claims.SplitClaims[j])
		acc = acc.Add(claims.SplitAlphas[j].Mul(numerator).Mul(denomInv))
	}
	return acc, nil
}

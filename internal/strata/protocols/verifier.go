package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// VerifierInput mirrors ProverInput, minus the trace itself: the verifier
// never sees the execution trace, only its claimed length and column
// count, the same AIR, the same parameters and seed, and the proof bytes
// to check.
type VerifierInput struct {
	Proof            []byte
	NumColumns       int
	TraceLength      int
	Constraints      []Constraint
	ClaimPolynomials [][]core.FieldElement
	Params           utils.Parameters
	Seed             []byte
}

// Verify replays the prover's six-phase transcript from the proof bytes
// and an independently-seeded channel, checking at every phase boundary
// that what the proof claims is consistent with what the channel would
// have produced for an honest prover:
//
//  1. trace/constraint Merkle roots fold into the transcript exactly as
//     written, with no separate check possible until query time;
//  2. the out-of-domain sample's constraint-combination value, recomputed
//     from the claimed trace values, must equal the split polynomials'
//     recombination Σⱼ z^j·Aⱼ(z^d) -- the core algebraic identity tying
//     the AIR to the committed split polynomials;
//  3. the proof-of-work nonce must satisfy the difficulty predicate
//     against the transcript digest at that point;
//  4. every query's revealed leaves authenticate against their Merkle
//     root, and folding them step by step through FRI reproduces either
//     the next committed layer's revealed value or, at the last step, the
//     final polynomial evaluated at the fully-folded domain point.
//
// Returns nil on success, or the first failing check as an error.
func Verify(input VerifierInput) error {
	if input.NumColumns <= 0 {
		return fmt.Errorf("protocols: verify requires at least one trace column")
	}
	if err := input.Params.ValidateForTraceLength(input.TraceLength); err != nil {
		return err
	}
	traceGenerator, ok := core.RootOfUnity(uint64(input.TraceLength))
	if !ok {
		return fmt.Errorf("protocols: trace length %d has no root of unity", input.TraceLength)
	}

	n := input.TraceLength * input.Params.Blowup
	d := input.Params.Blowup
	total := input.Params.TotalFriReduction()

	r := NewReader(input.Proof)
	ch := utils.NewChannel(input.Seed)

	// --- Phase 1: trace commit ---
	traceRoot, err := r.ReadDigest()
	if err != nil {
		return fmt.Errorf("protocols: reading trace root: %w", err)
	}
	ch.WriteDigest(traceRoot)

	roots := make([]*Expr, len(input.Constraints))
	for i, c := range input.Constraints {
		roots[i] = c.Expr
	}
	traceArgs := CollectTraceArguments(roots)

	// --- Phase 2: constraint commit ---
	combineCoeffs := make([]CombineCoefficients, len(input.Constraints))
	for i := range combineCoeffs {
		combineCoeffs[i] = CombineCoefficients{Alpha: ch.RandomFieldElement(), Beta: ch.RandomFieldElement()}
	}

	constraintRoot, err := r.ReadDigest()
	if err != nil {
		return fmt.Errorf("protocols: reading constraint root: %w", err)
	}
	ch.WriteDigest(constraintRoot)

	// --- Phase 3: out-of-domain sampling ---
	z := ch.RandomFieldElement()
	traceClaims := make([]core.FieldElement, len(traceArgs))
	for i := range traceArgs {
		v, err := r.ReadFieldElement()
		if err != nil {
			return fmt.Errorf("protocols: reading trace oods claim %d: %w", i, err)
		}
		traceClaims[i] = v
		vb := v.Bytes()
		ch.Write(vb[:])
	}

	zd, _ := z.Pow(uint64(d))
	splitClaims := make([]core.FieldElement, d)
	for j := 0; j < d; j++ {
		v, err := r.ReadFieldElement()
		if err != nil {
			return fmt.Errorf("protocols: reading split oods claim %d: %w", j, err)
		}
		splitClaims[j] = v
		vb := v.Bytes()
		ch.Write(vb[:])
	}

	if err := checkOodsConsistency(input.Constraints, combineCoeffs, traceArgs, traceClaims, splitClaims, traceGenerator, z, d, n-1, input.ClaimPolynomials); err != nil {
		return err
	}

	traceAlphas := make([]core.FieldElement, len(traceArgs))
	for i := range traceArgs {
		traceAlphas[i] = ch.RandomFieldElement()
	}
	splitAlphas := make([]core.FieldElement, d)
	for j := 0; j < d; j++ {
		splitAlphas[j] = ch.RandomFieldElement()
	}

	// --- Phase 4: FRI folding ---
	friAlphas := make([]core.FieldElement, total)
	friRoots := make([]core.Digest, total-1)
	for step := 0; step < total; step++ {
		friAlphas[step] = ch.RandomFieldElement()
		if step < total-1 {
			root, err := r.ReadDigest()
			if err != nil {
				return fmt.Errorf("protocols: reading fri layer %d root: %w", step, err)
			}
			ch.WriteDigest(root)
			friRoots[step] = root
		}
	}

	finalLen := n >> uint(total)
	finalPoly, err := r.ReadFieldElements(finalLen)
	if err != nil {
		return fmt.Errorf("protocols: reading final fri polynomial: %w", err)
	}

	// --- Phase 5: proof-of-work ---
	nonce, err := r.ReadNonce()
	if err != nil {
		return fmt.Errorf("protocols: reading proof-of-work nonce: %w", err)
	}
	if !VerifyNonce(ch.Digest(), input.Params.PowBits, nonce) {
		return fmt.Errorf("protocols: proof-of-work check failed")
	}
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	ch.Write(nonceBytes[:])

	// --- Phase 6: query decommitment ---
	queries, err := drawQueryIndices(ch, input.Params.NumQueries, n)
	if err != nil {
		return fmt.Errorf("protocols: query indices: %w", err)
	}

	revealIndices := pairClosure(queries)
	traceRows := make(map[int][]core.FieldElement, len(revealIndices))
	traceLeaves := make([]core.Digest, len(revealIndices))
	for i, idx := range revealIndices {
		row, err := r.ReadFieldElements(input.NumColumns)
		if err != nil {
			return fmt.Errorf("protocols: reading trace leaf %d: %w", idx, err)
		}
		traceRows[idx] = row
		traceLeaves[i] = core.LeafDigest(row)
	}
	traceNodes, err := r.ReadOpeningNodes(openingNodeCount(n, revealIndices))
	if err != nil {
		return fmt.Errorf("protocols: reading trace opening nodes: %w", err)
	}
	if !core.Verify(traceRoot, n, core.OpeningProof{Indices: revealIndices, Nodes: traceNodes}, traceLeaves) {
		return fmt.Errorf("protocols: trace merkle opening failed")
	}

	splitRows := make(map[int][]core.FieldElement, len(revealIndices))
	splitLeaves := make([]core.Digest, len(revealIndices))
	for i, idx := range revealIndices {
		row, err := r.ReadFieldElements(d)
		if err != nil {
			return fmt.Errorf("protocols: reading constraint leaf %d: %w", idx, err)
		}
		splitRows[idx] = row
		splitLeaves[i] = core.LeafDigest(row)
	}
	constraintNodes, err := r.ReadOpeningNodes(openingNodeCount(n, revealIndices))
	if err != nil {
		return fmt.Errorf("protocols: reading constraint opening nodes: %w", err)
	}
	if !core.Verify(constraintRoot, n, core.OpeningProof{Indices: revealIndices, Nodes: constraintNodes}, splitLeaves) {
		return fmt.Errorf("protocols: constraint merkle opening failed")
	}

	layerValues := make([]map[int]core.FieldElement, total-1)
	for s := 0; s < total-1; s++ {
		pairIndices := friPairIndices(queries, s)
		values := make(map[int]core.FieldElement, len(pairIndices))
		leaves := make([]core.Digest, len(pairIndices))
		for i, idx := range pairIndices {
			v, err := r.ReadFieldElement()
			if err != nil {
				return fmt.Errorf("protocols: reading fri layer %d value at %d: %w", s, idx, err)
			}
			values[idx] = v
			leaves[i] = core.LeafDigest([]core.FieldElement{v})
		}
		layerSize := n >> uint(s+1)
		nodes, err := r.ReadOpeningNodes(openingNodeCount(layerSize, pairIndices))
		if err != nil {
			return fmt.Errorf("protocols: reading fri layer %d opening nodes: %w", s, err)
		}
		if !core.Verify(friRoots[s], layerSize, core.OpeningProof{Indices: pairIndices, Nodes: nodes}, leaves) {
			return fmt.Errorf("protocols: fri layer %d merkle opening failed", s)
		}
		layerValues[s] = values
	}

	// stepDomains[s] is the bit-reversed domain FRI step s folds over,
	// recomputed the same way the prover's running `domain`/`currentShift`
	// evolved: shift squares every step, starting from the generator.
	stepDomains := make([][]core.FieldElement, total)
	shift := core.Generator
	for step := 0; step < total; step++ {
		dom, err := core.CosetDomain(n>>uint(step), shift)
		if err != nil {
			return fmt.Errorf("protocols: fri step %d domain: %w", step, err)
		}
		stepDomains[step] = dom
		shift = shift.Mul(shift)
	}
	finalDomain, err := core.CosetDomain(finalLen, shift)
	if err != nil {
		return fmt.Errorf("protocols: final fri domain: %w", err)
	}

	claims := oodsClaims{
		TraceArgs:      traceArgs,
		TraceClaims:    traceClaims,
		TraceAlphas:    traceAlphas,
		TraceGenerator: traceGenerator,
		Z:              z,
		ZD:             zd,
		SplitClaims:    splitClaims,
		SplitAlphas:    splitAlphas,
	}

	for _, q := range queries {
		for step := 0; step < total; step++ {
			idx := q >> uint(step)
			even := idx &^ 1
			odd := even | 1

			var valEven, valOdd core.FieldElement
			if step == 0 {
				traceValsAt := func(idx int) []core.FieldElement {
					row := traceRows[idx]
					vals := make([]core.FieldElement, len(traceArgs))
					for i, arg := range traceArgs {
						vals[i] = row[arg.Col]
					}
					return vals
				}
				ve, err := recombineAt(stepDomains[0][even], traceValsAt(even), splitRows[even], claims)
				if err != nil {
					return fmt.Errorf("protocols: query %d round 0 recombine: %w", q, err)
				}
				vo, err := recombineAt(stepDomains[0][odd], traceValsAt(odd), splitRows[odd], claims)
				if err != nil {
					return fmt.Errorf("protocols: query %d round 0 recombine: %w", q, err)
				}
				valEven, valOdd = ve, vo
			} else {
				valEven, valOdd = layerValues[step-1][even], layerValues[step-1][odd]
			}

			pairX := stepDomains[step][even]
			folded := VerifyFoldStep([2]core.FieldElement{valEven, valOdd}, pairX, friAlphas[step])

			if step < total-1 {
				want, ok := layerValues[step][idx>>1]
				if !ok {
					return fmt.Errorf("protocols: query %d: fri layer %d missing folded value at %d", q, step, idx>>1)
				}
				if !folded.Equal(want) {
					return fmt.Errorf("protocols: query %d: fri fold mismatch at layer %d", q, step)
				}
			} else {
				finalX := finalDomain[idx>>1]
				want := core.Evaluate(finalPoly, finalX)
				if !folded.Equal(want) {
					return fmt.Errorf("protocols: query %d: final fri layer mismatch", q)
				}
			}
		}
	}

	return nil
}

// checkOodsConsistency recomputes Σᵢ (αᵢ+βᵢ·x^dᵢ)·Cᵢ(z) from the claimed
// trace values and compares it against the split polynomials'
// recombination Σⱼ z^j·Aⱼ(z^d): the one algebraic check tying the
// constraint set to the committed split polynomials at the sampled point.
func checkOodsConsistency(constraints []Constraint, combineCoeffs []CombineCoefficients, traceArgs []TraceArgument, traceClaims, splitClaims []core.FieldElement, traceGenerator, z core.FieldElement, d, targetDegree int, claimPolynomials [][]core.FieldElement) error {
	claimByColPoint := make(map[int]map[[32]byte]core.FieldElement, len(traceArgs))
	for i, arg := range traceArgs {
		point := shiftByOffset(traceGenerator, z, arg.Offset)
		if claimByColPoint[arg.Col] == nil {
			claimByColPoint[arg.Col] = make(map[[32]byte]core.FieldElement)
		}
		claimByColPoint[arg.Col][point.Bytes()] = traceClaims[i]
	}
	ctx := EvalContext{
		X:              z,
		TraceGenerator: traceGenerator,
		TraceAt: func(col int, x core.FieldElement) core.FieldElement {
			return claimByColPoint[col][x.Bytes()]
		},
		ClaimPolynomials: claimPolynomials,
	}

	combined := core.FieldZero
	for k, c := range constraints {
		v, ok := c.Expr.Evaluate(ctx)
		if !ok {
			return fmt.Errorf("protocols: constraint %d failed to evaluate at the oods point", k)
		}
		degreeGap := targetDegree - c.Degree
		xPowGap := core.FieldOne
		if degreeGap > 0 {
			xPowGap, _ = z.Pow(uint64(degreeGap))
		}
		weight := combineCoeffs[k].Alpha.Add(combineCoeffs[k].Beta.Mul(xPowGap))
		combined = combined.Add(weight.Mul(v))
	}

	recombined := core.FieldZero
	zPow := core.FieldOne
	for j := 0; j < d; j++ {
		recombined = recombined.Add(zPow.Mul(splitClaims[j]))
		zPow = zPow.Mul(z)
	}

	if !combined.Equal(recombined) {
		return fmt.Errorf("protocols: oods consistency check failed")
	}
	return nil
}

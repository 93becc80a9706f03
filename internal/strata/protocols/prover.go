package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// ProverInput is everything a proof run needs: the execution trace (one
// slice per column, all the same power-of-two length), the AIR's
// constraint set, any claim polynomials the constraints reference, the
// proof parameters, and the transcript's initial seed.
type ProverInput struct {
	TraceColumns     [][]core.FieldElement
	Constraints      []Constraint
	ClaimPolynomials [][]core.FieldElement
	Params           utils.Parameters
	Seed             []byte

	// SelfVerify runs Verify against the freshly built proof before
	// returning it, catching a malformed constraint set or a prover bug
	// before it ever leaves the process, at the cost of one extra
	// verification pass.
	SelfVerify bool
}

// Prove runs the six-phase prover state machine over a single
// shared bit-reversed coset domain of size n = trace_length*blowup: trace
// commit, constraint commit, out-of-domain sampling, FRI folding,
// proof-of-work, and query decommitment. Every object the protocol
// commits to -- the trace LDE, the split constraint LDE, and the FRI
// engine's initial layer -- is evaluated over the exact same
// core.CosetEvaluate(..., core.Generator) domain, so a query index means
// the same domain point everywhere it is used; this sidesteps reconciling
// bit-reversed ordering across independently-chunked domains.
func Prove(input ProverInput) ([]byte, error) {
	numCols := len(input.TraceColumns)
	if numCols == 0 {
		return nil, fmt.Errorf("protocols: prove requires at least one trace column")
	}
	traceLength := len(input.TraceColumns[0])
	for c, col := range input.TraceColumns {
		if len(col) != traceLength {
			return nil, fmt.Errorf("protocols: trace column %d has length %d, want %d", c, len(col), traceLength)
		}
	}
	if err := input.Params.ValidateForTraceLength(traceLength); err != nil {
		return nil, err
	}
	traceGenerator, ok := core.RootOfUnity(uint64(traceLength))
	if !ok {
		return nil, fmt.Errorf("protocols: trace length %d has no root of unity", traceLength)
	}

	n := traceLength * input.Params.Blowup
	d := input.Params.Blowup

	ch := utils.NewChannel(input.Seed)
	builder := NewBuilder()

	// --- Phase 1: trace commit ---
	traceCoeffs := make([][]core.FieldElement, numCols)
	traceLDE := make([][]core.FieldElement, numCols)
	traceErrs := make([]error, numCols)
	logTrace, _ := core.Log2Exact(traceLength)
	utils.ForEachIndex(numCols, func(c int) {
		// Interpolate reads its input in bit-reversed order; permute so that
		// row i lands on g^i.
		col := input.TraceColumns[c]
		permuted := make([]core.FieldElement, len(col))
		for i := range col {
			permuted[i] = col[core.BitReverse(uint(i), logTrace)]
		}
		coeffs, err := core.Interpolate(permuted)
		if err != nil {
			traceErrs[c] = err
			return
		}
		values, err := core.CosetEvaluate(core.Pad(coeffs, n), core.Generator)
		if err != nil {
			traceErrs[c] = err
			return
		}
		traceCoeffs[c] = coeffs
		traceLDE[c] = values
	})
	for c, err := range traceErrs {
		if err != nil {
			return nil, fmt.Errorf("protocols: trace column %d: %w", c, err)
		}
	}

	traceTree, err := core.Commit(n, func(index int) []core.FieldElement {
		row := make([]core.FieldElement, numCols)
		for c := 0; c < numCols; c++ {
			row[c] = traceLDE[c][index]
		}
		return row
	})
	if err != nil {
		return nil, fmt.Errorf("protocols: trace commit: %w", err)
	}
	traceRoot := traceTree.Root()
	ch.WriteDigest(traceRoot)
	builder.WriteDigest(traceRoot)

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

	evalDomain, err := core.CosetDomain(n, core.Generator)
	if err != nil {
		return nil, fmt.Errorf("protocols: eval domain: %w", err)
	}
	domainIndex := make(map[[32]byte]int, n)
	for i, x := range evalDomain {
		domainIndex[x.Bytes()] = i
	}
	traceAtPoint := func(col int, x core.FieldElement) core.FieldElement {
		idx, ok := domainIndex[x.Bytes()]
		if !ok {
			panic("protocols: trace argument point fell outside the evaluation domain")
		}
		return traceLDE[col][idx]
	}
	traceAtRow := func(int) func(int, core.FieldElement) core.FieldElement { return traceAtPoint }

	targetDegree := n - 1
	combinedValues := Combine(input.Constraints, combineCoeffs, evalDomain, traceGenerator, traceAtRow, input.ClaimPolynomials, targetDegree)
	combinedCoeffs, err := core.InverseCosetEvaluate(combinedValues, core.Generator)
	if err != nil {
		return nil, fmt.Errorf("protocols: interpolate combined constraint polynomial: %w", err)
	}

	splitPolys := Split(combinedCoeffs, d)
	splitLDE := make([][]core.FieldElement, d)
	splitErrs := make([]error, d)
	utils.ForEachIndex(d, func(j int) {
		values, err := core.CosetEvaluate(core.Pad(splitPolys[j], n), core.Generator)
		if err != nil {
			splitErrs[j] = err
			return
		}
		splitLDE[j] = values
	})
	for j, err := range splitErrs {
		if err != nil {
			return nil, fmt.Errorf("protocols: split polynomial %d lde: %w", j, err)
		}
	}

	constraintTree, err := core.Commit(n, func(index int) []core.FieldElement {
		row := make([]core.FieldElement, d)
		for j := 0; j < d; j++ {
			row[j] = splitLDE[j][index]
		}
		return row
	})
	if err != nil {
		return nil, fmt.Errorf("protocols: constraint commit: %w", err)
	}
	constraintRoot := constraintTree.Root()
	ch.WriteDigest(constraintRoot)
	builder.WriteDigest(constraintRoot)

	// --- Phase 3: out-of-domain sampling ---
	z := ch.RandomFieldElement()
	for _, arg := range traceArgs {
		point := shiftByOffset(traceGenerator, z, arg.Offset)
		v := core.Evaluate(traceCoeffs[arg.Col], point)
		builder.WriteFieldElement(v)
		vb := v.Bytes()
		ch.Write(vb[:])
	}

	zd, _ := z.Pow(uint64(d))
	for j := 0; j < d; j++ {
		v := core.Evaluate(splitPolys[j], zd)
		builder.WriteFieldElement(v)
		vb := v.Bytes()
		ch.Write(vb[:])
	}

	accumulator := core.Zeros(traceLength - 1)
	for _, arg := range traceArgs {
		alpha := ch.RandomFieldElement()
		point := shiftByOffset(traceGenerator, z, arg.Offset)
		accumulator = core.DivideOutPointInto(traceCoeffs[arg.Col], point, alpha, accumulator)
	}
	for j := 0; j < d; j++ {
		alpha := ch.RandomFieldElement()
		accumulator = core.DivideOutPointInto(splitPolys[j], zd, alpha, accumulator)
	}

	// --- Phase 4: FRI folding ---
	pLDE, err := core.CosetEvaluate(core.Pad(accumulator, n), core.Generator)
	if err != nil {
		return nil, fmt.Errorf("protocols: accumulator lde: %w", err)
	}
	friResult, err := RunFri(pLDE, evalDomain, core.Generator, input.Params.FriLayout, ch)
	if err != nil {
		return nil, fmt.Errorf("protocols: fri: %w", err)
	}
	for _, layer := range friResult.Layers {
		builder.WriteDigest(layer.Tree.Root())
	}
	builder.WriteFieldElements(friResult.FinalPolynomial)

	// --- Phase 5: proof-of-work ---
	nonce, ok := FindNonce(ch.Digest(), input.Params.PowBits)
	if !ok {
		return nil, fmt.Errorf("protocols: proof-of-work nonce search exhausted the 64-bit nonce space")
	}
	builder.WriteNonce(nonce)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	ch.Write(nonceBytes[:])

	// --- Phase 6: query decommitment ---
	queries, err := drawQueryIndices(ch, input.Params.NumQueries, n)
	if err != nil {
		return nil, fmt.Errorf("protocols: query indices: %w", err)
	}

	revealIndices := pairClosure(queries)
	for _, idx := range revealIndices {
		row := make([]core.FieldElement, numCols)
		for c := 0; c < numCols; c++ {
			row[c] = traceLDE[c][idx]
		}
		builder.WriteFieldElements(row)
	}
	builder.WriteOpeningNodes(traceTree.Open(revealIndices))

	for _, idx := range revealIndices {
		row := make([]core.FieldElement, d)
		for j := 0; j < d; j++ {
			row[j] = splitLDE[j][idx]
		}
		builder.WriteFieldElements(row)
	}
	builder.WriteOpeningNodes(constraintTree.Open(revealIndices))

	for layerIdx, layer := range friResult.Layers {
		pairIndices := friPairIndices(queries, layerIdx)
		for _, idx := range pairIndices {
			builder.WriteFieldElement(layer.Values[idx])
		}
		builder.WriteOpeningNodes(layer.Tree.Open(pairIndices))
	}

	proof := builder.Bytes()
	if input.SelfVerify {
		if err := Verify(VerifierInput{
			Proof:            proof,
			NumColumns:       numCols,
			TraceLength:      traceLength,
			Constraints:      input.Constraints,
			ClaimPolynomials: input.ClaimPolynomials,
			Params:           input.Params,
			Seed:             input.Seed,
		}); err != nil {
			return nil, fmt.Errorf("protocols: self-verify failed: %w", err)
		}
	}
	return proof, nil
}

package protocols

import (
	"testing"

	"github.com/strata-zk/strata/internal/strata/core"
)

func traceAtDirect(traceCoeffs [][]core.FieldElement) func(row int) func(col int, x core.FieldElement) core.FieldElement {
	return func(row int) func(col int, x core.FieldElement) core.FieldElement {
		return func(col int, x core.FieldElement) core.FieldElement {
			return core.Evaluate(traceCoeffs[col], x)
		}
	}
}

// TestFibonacciTransitionConstraint builds the Fibonacci AIR (T1_next -
// T1 - T0 = 0, i.e. next.col1 = col0 + col1) as a DAG and checks it
// evaluates to zero at every row of the trace domain that has a next row.
func TestFibonacciTransitionConstraint(t *testing.T) {
	n := 8
	omega, _ := core.RootOfUnity(uint64(n))

	col0 := make([]core.FieldElement, n) // T0
	col1 := make([]core.FieldElement, n) // T1
	col0[0] = core.NewFieldElementFromUint64(1)
	col1[0] = core.NewFieldElementFromUint64(1)
	for i := 1; i < n; i++ {
		col0[i] = col1[i-1]
		col1[i] = col0[i-1].Add(col1[i-1])
	}

	// Interpolate reads its input in bit-reversed order; permute each column
	// so that row i lands on omega^i.
	log2n, _ := core.Log2Exact(n)
	col0BR := make([]core.FieldElement, n)
	col1BR := make([]core.FieldElement, n)
	for i := 0; i < n; i++ {
		col0BR[i] = col0[core.BitReverse(uint(i), log2n)]
		col1BR[i] = col1[core.BitReverse(uint(i), log2n)]
	}

	t0Coeffs, err := core.Interpolate(col0BR)
	if err != nil {
		t.Fatal(err)
	}
	t1Coeffs, err := core.Interpolate(col1BR)
	if err != nil {
		t.Fatal(err)
	}

	// constraint: Trace(1, 1) - Trace(0, 0) - Trace(1, 0) = 0
	expr := Sub(Trace(1, 1), Add(Trace(0, 0), Trace(1, 0)))

	traceAt := traceAtDirect([][]core.FieldElement{t0Coeffs, t1Coeffs})

	for i := 0; i < n-1; i++ {
		point, _ := omega.Pow(uint64(i))
		ctx := EvalContext{
			X:              point,
			TraceGenerator: omega,
			TraceAt:        traceAt(i),
		}
		v, ok := expr.Evaluate(ctx)
		if !ok {
			t.Fatalf("evaluate failed at row %d", i)
		}
		if !v.IsZero() {
			t.Fatalf("transition constraint should vanish on the trace domain at row %d, got %v", i, v)
		}
	}
}

func TestTreeShakeDedup(t *testing.T) {
	leaf := Trace(0, 0)
	shared := Add(leaf, Constant(core.FieldOne))
	root := Mul(shared, shared)

	order := TreeShake([]*Expr{root})
	count := 0
	for _, n := range order {
		if n == shared {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("shared sub-DAG should appear once in tree-shaken order, got %d", count)
	}
}

func TestCollectTraceArguments(t *testing.T) {
	root := Add(Trace(1, 1), Mul(Trace(0, 0), Trace(1, 0)))
	args := CollectTraceArguments([]*Expr{root})
	want := []TraceArgument{{Col: 0, Offset: 0}, {Col: 1, Offset: 0}, {Col: 1, Offset: 1}}
	if len(args) != len(want) {
		t.Fatalf("expected %d distinct arguments, got %d", len(want), len(args))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("argument %d: got %+v want %+v", i, args[i], want[i])
		}
	}
}

func TestSplitRecombines(t *testing.T) {
	n := 16
	d := 4
	combined := make([]core.FieldElement, n)
	for i := range combined {
		combined[i] = core.NewFieldElementFromUint64(uint64(i + 1))
	}
	split := Split(combined, d)
	if len(split) != d {
		t.Fatalf("expected %d split polynomials, got %d", d, len(split))
	}

	x := core.NewFieldElementFromUint64(3)
	xd, _ := x.Pow(uint64(d))
	want := core.Evaluate(combined, x)

	got := core.FieldZero
	for j, aj := range split {
		xj, _ := x.Pow(uint64(j))
		got = got.Add(xj.Mul(core.Evaluate(aj, xd)))
	}
	if !got.Equal(want) {
		t.Fatalf("split/recombine mismatch: got %v want %v", got, want)
	}
}

func TestExpInvConstant(t *testing.T) {
	ctx := EvalContext{X: core.NewFieldElementFromUint64(5), TraceGenerator: core.FieldOne}
	expr := Inv(Exp(Constant(core.NewFieldElementFromUint64(2)), 3))
	v, ok := expr.Evaluate(ctx)
	if !ok {
		t.Fatal("expected ok")
	}
	want, _ := core.NewFieldElementFromUint64(8).Inv()
	if !v.Equal(want) {
		t.Fatalf("got %v want %v", v, want)
	}
}

func TestInvZeroFails(t *testing.T) {
	ctx := EvalContext{X: core.FieldZero, TraceGenerator: core.FieldOne}
	expr := Inv(X())
	if _, ok := expr.Evaluate(ctx); ok {
		t.Fatalf("expected Inv(0) to fail")
	}
}

// Package protocols implements the STARK protocol layer: the constraint
// evaluator, the FRI engine, proof-of-work, the byte-exact proof layout,
// and the prover/verifier state machines built on top of internal/strata/core.
package protocols

import (
	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// ExprKind tags the variant of a constraint DAG node: a tagged union of
// {X, Constant, Trace(col, offset), Add, Mul, Neg, Inv, Exp, Polynomial,
// ClaimPolynomial}. Evaluation is via explicit pattern matching over
// variants, not through dynamic dispatch.
type ExprKind int

const (
	ExprX ExprKind = iota
	ExprConstant
	ExprTrace
	ExprAdd
	ExprMul
	ExprNeg
	ExprInv
	ExprExp
	ExprPolynomial
	ExprClaimPolynomial
)

// Expr is one node of a constraint DAG. Only the fields relevant to Kind
// are populated; evaluation switches on Kind exactly once per node.
type Expr struct {
	Kind ExprKind

	Constant core.FieldElement // ExprConstant
	Col      int               // ExprTrace
	Offset   int               // ExprTrace: row offset, in units of the trace generator g

	Left, Right *Expr // ExprAdd, ExprMul
	Operand     *Expr // ExprNeg, ExprInv, ExprExp, ExprPolynomial

	Exponent int64 // ExprExp

	Coefficients []core.FieldElement // ExprPolynomial: outer poly, applied to Operand's value
	ClaimIndex   int                 // ExprClaimPolynomial: index into EvalContext.ClaimPolynomials
}

// Convenience constructors, matching the variant names 1:1.
func X() *Expr                  { return &Expr{Kind: ExprX} }
func Constant(c core.FieldElement) *Expr { return &Expr{Kind: ExprConstant, Constant: c} }
func Trace(col, offset int) *Expr        { return &Expr{Kind: ExprTrace, Col: col, Offset: offset} }
func Add(a, b *Expr) *Expr               { return &Expr{Kind: ExprAdd, Left: a, Right: b} }
func Mul(a, b *Expr) *Expr               { return &Expr{Kind: ExprMul, Left: a, Right: b} }
func Neg(a *Expr) *Expr                  { return &Expr{Kind: ExprNeg, Operand: a} }
func Inv(a *Expr) *Expr                  { return &Expr{Kind: ExprInv, Operand: a} }
func Exp(a *Expr, e int64) *Expr         { return &Expr{Kind: ExprExp, Operand: a, Exponent: e} }
func Poly(coeffs []core.FieldElement, inner *Expr) *Expr {
	return &Expr{Kind: ExprPolynomial, Coefficients: coeffs, Operand: inner}
}
func ClaimPoly(index int) *Expr { return &Expr{Kind: ExprClaimPolynomial, ClaimIndex: index} }

// Sub is sugar for Add(a, Neg(b)); the DAG itself has no subtraction
// variant.
func Sub(a, b *Expr) *Expr { return Add(a, Neg(b)) }

// EvalContext supplies the free variables a constraint DAG may reference:
// the evaluation point x, the trace columns (indexed by Trace(col,
// offset)'s col, sampled offset steps of the trace generator ahead), and
// any externally supplied claim polynomials.
type EvalContext struct {
	X                core.FieldElement
	TraceGenerator   core.FieldElement // g, the trace domain's generator
	TraceAt          func(col int, x core.FieldElement) core.FieldElement
	ClaimPolynomials [][]core.FieldElement
}

// Evaluate walks the DAG once, evaluating e at ctx.X (or at the shifted
// point x*g^offset for Trace nodes). ok is false only if an Inv node's
// operand evaluates to zero (ModularInverseUndefined, a caller error — the
// constraint set is malformed).
func (e *Expr) Evaluate(ctx EvalContext) (core.FieldElement, bool) {
	switch e.Kind {
	case ExprX:
		return ctx.X, true
	case ExprConstant:
		return e.Constant, true
	case ExprTrace:
		point := shiftByOffset(ctx.TraceGenerator, ctx.X, e.Offset)
		return ctx.TraceAt(e.Col, point), true
	case ExprAdd:
		l, ok := e.Left.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		r, ok := e.Right.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		return l.Add(r), true
	case ExprMul:
		l, ok := e.Left.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		r, ok := e.Right.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		return l.Mul(r), true
	case ExprNeg:
		v, ok := e.Operand.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		return v.Neg(), true
	case ExprInv:
		v, ok := e.Operand.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		inv, invOk := v.Inv()
		if !invOk {
			return core.FieldElement{}, false
		}
		return inv, true
	case ExprExp:
		v, ok := e.Operand.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		if e.Exponent < 0 {
			v, ok = v.Inv()
			if !ok {
				return core.FieldElement{}, false
			}
			result, _ := v.Pow(uint64(-e.Exponent))
			return result, true
		}
		result, _ := v.Pow(uint64(e.Exponent))
		return result, true
	case ExprPolynomial:
		v, ok := e.Operand.Evaluate(ctx)
		if !ok {
			return core.FieldElement{}, false
		}
		return core.Evaluate(e.Coefficients, v), true
	case ExprClaimPolynomial:
		return core.Evaluate(ctx.ClaimPolynomials[e.ClaimIndex], ctx.X), true
	default:
		return core.FieldElement{}, false
	}
}

// shiftByOffset returns x*g^offset, handling negative offsets via g's
// inverse.
func shiftByOffset(g, x core.FieldElement, offset int) core.FieldElement {
	if offset == 0 {
		return x
	}
	if offset > 0 {
		shift, _ := g.Pow(uint64(offset))
		return x.Mul(shift)
	}
	gInv, _ := g.Inv()
	shift, _ := gInv.Pow(uint64(-offset))
	return x.Mul(shift)
}

// TreeShake returns the set of distinct nodes reachable from roots,
// discarding unreachable sub-DAGs shared by unused constraints. Since Go
// garbage-collects unreachable *Expr nodes automatically, tree-shaking
// here only matters for building the deduplicated evaluation order used
// by CollectTraceArguments below.
func TreeShake(roots []*Expr) []*Expr {
	seen := make(map[*Expr]bool)
	var order []*Expr
	var visit func(e *Expr)
	visit = func(e *Expr) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		switch e.Kind {
		case ExprAdd, ExprMul:
			visit(e.Left)
			visit(e.Right)
		case ExprNeg, ExprInv, ExprExp, ExprPolynomial:
			visit(e.Operand)
		}
		order = append(order, e)
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

// TraceArgument identifies one (column, row_offset) pair a constraint set
// references; the out-of-domain sampling phase writes one field element
// per distinct argument.
type TraceArgument struct {
	Col    int
	Offset int
}

// CollectTraceArguments returns the distinct (col, offset) pairs referenced
// anywhere in roots, sorted for determinism.
func CollectTraceArguments(roots []*Expr) []TraceArgument {
	seen := make(map[TraceArgument]bool)
	var args []TraceArgument
	for _, node := range TreeShake(roots) {
		if node.Kind == ExprTrace {
			arg := TraceArgument{Col: node.Col, Offset: node.Offset}
			if !seen[arg] {
				seen[arg] = true
				args = append(args, arg)
			}
		}
	}
	sortTraceArguments(args)
	return args
}

func sortTraceArguments(args []TraceArgument) {
	for i := 1; i < len(args); i++ {
		for j := i; j > 0; j-- {
			a, b := args[j-1], args[j]
			if a.Col > b.Col || (a.Col == b.Col && a.Offset > b.Offset) {
				args[j-1], args[j] = args[j], args[j-1]
			} else {
				break
			}
		}
	}
}

// Constraint pairs a DAG with the degree bound it is known to respect.
type Constraint struct {
	Expr   *Expr
	Degree int
}

// CombineCoefficients is one {α, β} pair drawn per constraint in the
// constraint-commit phase.
type CombineCoefficients struct {
	Alpha, Beta core.FieldElement
}

// Combine evaluates C(x) = Σᵢ (αᵢ + βᵢ·x^dᵢ)·Cᵢ(x) over evalDomain (values
// of x, one per evaluation-domain row in the same order as the rows'
// TraceAt data), where dᵢ = targetDegree − deg(Cᵢ) is the adjustment
// degree forcing every term to targetDegree. traceAt supplies the i-th
// row's trace-column accessor (already specialized for row i, since the
// shift by the trace generator is row-index-independent in the underlying
// Expr but the *data* behind TraceAt must change per row of the LDE).
func Combine(constraints []Constraint, coeffs []CombineCoefficients, evalDomain []core.FieldElement, traceGenerator core.FieldElement, traceAtRow func(row int) func(col int, x core.FieldElement) core.FieldElement, claimPolynomials [][]core.FieldElement, targetDegree int) []core.FieldElement {
	out := make([]core.FieldElement, len(evalDomain))
	utils.ForEachIndex(len(evalDomain), func(i int) {
		ctx := EvalContext{
			X:                evalDomain[i],
			TraceGenerator:   traceGenerator,
			TraceAt:          traceAtRow(i),
			ClaimPolynomials: claimPolynomials,
		}
		acc := core.FieldZero
		for k, c := range constraints {
			v, ok := c.Expr.Evaluate(ctx)
			if !ok {
				continue // malformed constraint at this point; caller validates separately
			}
			d := targetDegree - c.Degree
			var xPowD core.FieldElement
			if d <= 0 {
				xPowD = core.FieldOne
			} else {
				xPowD, _ = ctx.X.Pow(uint64(d))
			}
			weight := coeffs[k].Alpha.Add(coeffs[k].Beta.Mul(xPowD))
			acc = acc.Add(weight.Mul(v))
		}
		out[i] = acc
	})
	return out
}

// Split divides the combined constraint polynomial's coefficients into
// d = next-power-of-two(constraint_degree) polynomials A0..A(d-1) such
// that C(x) = Σⱼ x^j · Aⱼ(x^d).
func Split(combined []core.FieldElement, d int) [][]core.FieldElement {
	split := make([][]core.FieldElement, d)
	lengths := make([]int, d)
	for i := range combined {
		lengths[i%d]++
	}
	for j := range split {
		split[j] = make([]core.FieldElement, lengths[j])
	}
	for i, c := range combined {
		j := i % d
		split[j][i/d] = c
	}
	return split
}

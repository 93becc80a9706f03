package strata

import (
	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/protocols"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// FieldElement is an element of the 252-bit StarkWare prime field strata
// operates over.
type FieldElement = core.FieldElement

// Trace is an execution trace: one slice per column, all the same
// power-of-two length.
type Trace = [][]FieldElement

// Expr is one node of a constraint DAG: the algebraic building block an AIR
// is expressed in terms of.
type Expr = protocols.Expr

// Constraint pairs a constraint DAG with the raw-polynomial degree bound it
// is known to respect.
type Constraint = protocols.Constraint

// TraceArgument identifies one (column, row offset) pair a constraint set
// references.
type TraceArgument = protocols.TraceArgument

// Parameters is the caller-visible proof configuration: blowup, PoW bits,
// query count, and FRI layout.
type Parameters = utils.Parameters

// DefaultParameters returns a reasonable starting configuration for
// examples and small test traces.
func DefaultParameters() Parameters {
	return utils.DefaultParameters()
}

// Constraint DAG constructors, re-exported so callers never need to import
// internal/strata/protocols directly.
var (
	X         = protocols.X
	Const     = protocols.Constant
	TraceCell = protocols.Trace
	Add       = protocols.Add
	Sub       = protocols.Sub
	Mul       = protocols.Mul
	Neg       = protocols.Neg
	Inv       = protocols.Inv
	Exp       = protocols.Exp
	Poly      = protocols.Poly
	ClaimPoly = protocols.ClaimPoly
)

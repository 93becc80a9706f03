package strata

import (
	"bytes"
	"errors"
	"testing"

	"github.com/strata-zk/strata/internal/strata/core"
)

func fibonacciTrace(length int) Trace {
	a := make([]FieldElement, length)
	b := make([]FieldElement, length)
	a[0] = core.NewFieldElementFromUint64(1)
	b[0] = core.NewFieldElementFromUint64(1)
	for i := 1; i < length; i++ {
		a[i] = b[i-1]
		b[i] = a[i-1].Add(b[i-1])
	}
	return Trace{a, b}
}

func fibonacciConstraints(traceLength int) []Constraint {
	transition := Sub(TraceCell(1, 1), Add(TraceCell(0, 0), TraceCell(1, 0)))
	return []Constraint{{Expr: transition, Degree: traceLength - 1}}
}

func fibonacciParameters() Parameters {
	return Parameters{Blowup: 4, PowBits: 0, NumQueries: 4, FriLayout: []int{1, 1}}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	req := ProofRequest{
		Trace:       trace,
		Constraints: fibonacciConstraints(traceLength),
		Params:      fibonacciParameters(),
		Seed:        []byte("pkg-strata-e2e"),
	}

	proof, err := Prove(req)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	err = Verify(VerifyRequest{
		Proof:       proof,
		NumColumns:  len(trace),
		TraceLength: traceLength,
		Constraints: fibonacciConstraints(traceLength),
		Params:      fibonacciParameters(),
		Seed:        []byte("pkg-strata-e2e"),
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestProveIsDeterministic(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	req := ProofRequest{
		Trace:       trace,
		Constraints: fibonacciConstraints(traceLength),
		Params:      fibonacciParameters(),
		Seed:        []byte("pkg-strata-determinism"),
	}

	first, err := Prove(req)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	second, err := Prove(req)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical trace/seed/params to produce byte-identical proofs")
	}
}

func TestVerifyRejectsProofUnderDifferentSeed(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	proof, err := Prove(ProofRequest{
		Trace:       trace,
		Constraints: fibonacciConstraints(traceLength),
		Params:      fibonacciParameters(),
		Seed:        []byte("seed-a"),
	})
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	err = Verify(VerifyRequest{
		Proof:       proof,
		NumColumns:  len(trace),
		TraceLength: traceLength,
		Constraints: fibonacciConstraints(traceLength),
		Params:      fibonacciParameters(),
		Seed:        []byte("seed-b"),
	})
	if err == nil {
		t.Fatal("expected verification under a different seed to fail")
	}
	var strataErr *Error
	if !errors.As(err, &strataErr) {
		t.Fatalf("expected a *Error, got %T", err)
	}
	if strataErr.Code != ErrVerificationFailed {
		t.Fatalf("Code = %v, want ErrVerificationFailed", strataErr.Code)
	}
}

package protocols

import (
	"testing"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/internal/strata/utils"
)

// fibonacciTrace builds the two-column trace a[i+1]=b[i], b[i+1]=a[i]+b[i]
// for length rows, seeded a[0]=b[0]=1.
func fibonacciTrace(length int) [][]core.FieldElement {
	a := make([]core.FieldElement, length)
	b := make([]core.FieldElement, length)
	a[0] = core.NewFieldElementFromUint64(1)
	b[0] = core.NewFieldElementFromUint64(1)
	for i := 1; i < length; i++ {
		a[i] = b[i-1]
		b[i] = a[i-1].Add(b[i-1])
	}
	return [][]core.FieldElement{a, b}
}

func fibonacciConstraints(traceLength int) []Constraint {
	transition := Sub(Trace(1, 1), Add(Trace(0, 0), Trace(1, 0)))
	return []Constraint{{Expr: transition, Degree: traceLength - 1}}
}

func testParameters() utils.Parameters {
	return utils.Parameters{
		Blowup:     4,
		PowBits:    0,
		NumQueries: 4,
		FriLayout:  []int{1, 1},
	}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	input := ProverInput{
		TraceColumns: trace,
		Constraints:  fibonacciConstraints(traceLength),
		Params:       testParameters(),
		Seed:         []byte("fib-e2e-test"),
	}

	proof, err := Prove(input)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	err = Verify(VerifierInput{
		Proof:       proof,
		NumColumns:  len(trace),
		TraceLength: traceLength,
		Constraints: fibonacciConstraints(traceLength),
		Params:      testParameters(),
		Seed:        []byte("fib-e2e-test"),
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestProveSelfVerifySucceeds(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	input := ProverInput{
		TraceColumns: trace,
		Constraints:  fibonacciConstraints(traceLength),
		Params:       testParameters(),
		Seed:         []byte("fib-self-verify"),
		SelfVerify:   true,
	}
	if _, err := Prove(input); err != nil {
		t.Fatalf("prove with self-verify: %v", err)
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	input := ProverInput{
		TraceColumns: trace,
		Constraints:  fibonacciConstraints(traceLength),
		Params:       testParameters(),
		Seed:         []byte("fib-tamper-test"),
	}
	proof, err := Prove(input)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	tampered := make([]byte, len(proof))
	copy(tampered, proof)
	tampered[0] ^= 0xff

	err = Verify(VerifierInput{
		Proof:       tampered,
		NumColumns:  len(trace),
		TraceLength: traceLength,
		Constraints: fibonacciConstraints(traceLength),
		Params:      testParameters(),
		Seed:        []byte("fib-tamper-test"),
	})
	if err == nil {
		t.Fatal("expected verification to fail on a tampered trace root")
	}
}

func TestVerifyRejectsWrongTraceLength(t *testing.T) {
	traceLength := 8
	trace := fibonacciTrace(traceLength)
	input := ProverInput{
		TraceColumns: trace,
		Constraints:  fibonacciConstraints(traceLength),
		Params:       testParameters(),
		Seed:         []byte("fib-wrong-length"),
	}
	proof, err := Prove(input)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	err = Verify(VerifierInput{
		Proof:       proof,
		NumColumns:  len(trace),
		TraceLength: 16,
		Constraints: fibonacciConstraints(16),
		Params:      testParameters(),
		Seed:        []byte("fib-wrong-length"),
	})
	if err == nil {
		t.Fatal("expected verification to fail against a mismatched trace length")
	}
}

func TestProveRejectsMismatchedColumnLengths(t *testing.T) {
	trace := [][]core.FieldElement{
		{core.NewFieldElementFromUint64(1), core.NewFieldElementFromUint64(2)},
		{core.NewFieldElementFromUint64(1)},
	}
	_, err := Prove(ProverInput{
		TraceColumns: trace,
		Constraints:  fibonacciConstraints(2),
		Params:       testParameters(),
		Seed:         []byte("mismatch"),
	})
	if err == nil {
		t.Fatal("expected an error for mismatched column lengths")
	}
}

// Command strata-prover proves and verifies a Fibonacci transition AIR, the
// same generic two-column computation used in tests/integration,
// parameterized over flags instead of hardcoded constants.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/strata-zk/strata/internal/strata/core"
	"github.com/strata-zk/strata/pkg/strata"
)

func main() {
	traceLength := flag.Int("trace-length", 1024, "Fibonacci trace length, must be a power of two")
	blowup := flag.Int("blowup", 16, "low-degree extension blowup factor, must be a power of two")
	powBits := flag.Int("pow-bits", 0, "proof-of-work difficulty in leading zero bits")
	numQueries := flag.Int("num-queries", 20, "number of FRI query points")
	seed := flag.String("seed", "strata-prover-cli", "Fiat-Shamir transcript seed")
	mode := flag.String("mode", "prove", "prove | roundtrip")
	outPath := flag.String("out", "", "proof output file path; defaults to stdout")
	flag.Parse()

	trace := fibonacciTrace(*traceLength)
	constraints := fibonacciConstraints(*traceLength)
	params := strata.Parameters{
		Blowup:     *blowup,
		PowBits:    *powBits,
		NumQueries: *numQueries,
		FriLayout:  defaultFriLayout(*blowup),
	}

	logStderr(fmt.Sprintf("proving a %d-row, %d-column Fibonacci trace (blowup=%d, queries=%d)...",
		*traceLength, len(trace), *blowup, *numQueries))

	proof, err := strata.Prove(strata.ProofRequest{
		Trace:       trace,
		Constraints: constraints,
		Params:      params,
		Seed:        []byte(*seed),
	})
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr(fmt.Sprintf("proof generated: %d bytes", len(proof)))

	if *mode == "roundtrip" {
		logStderr("verifying proof...")
		err := strata.Verify(strata.VerifyRequest{
			Proof:       proof,
			NumColumns:  len(trace),
			TraceLength: *traceLength,
			Constraints: constraints,
			Params:      params,
			Seed:        []byte(*seed),
		})
		if err != nil {
			fatal(fmt.Sprintf("verification failed: %v", err))
		}
		logStderr("proof verified successfully")
	}

	if *outPath == "" {
		os.Stdout.Write(proof)
		return
	}
	if err := os.WriteFile(*outPath, proof, 0o644); err != nil {
		fatal(fmt.Sprintf("failed to write proof to %s: %v", *outPath, err))
	}
	logStderr(fmt.Sprintf("proof written to %s", *outPath))
}

// fibonacciTrace builds the two-column trace a[i+1]=b[i], b[i+1]=a[i]+b[i].
func fibonacciTrace(length int) strata.Trace {
	a := make([]strata.FieldElement, length)
	b := make([]strata.FieldElement, length)
	a[0] = core.NewFieldElementFromUint64(1)
	b[0] = core.NewFieldElementFromUint64(1)
	for i := 1; i < length; i++ {
		a[i] = b[i-1]
		b[i] = a[i-1].Add(b[i-1])
	}
	return strata.Trace{a, b}
}

func fibonacciConstraints(traceLength int) []strata.Constraint {
	transition := strata.Sub(strata.TraceCell(1, 1), strata.Add(strata.TraceCell(0, 0), strata.TraceCell(1, 0)))
	return []strata.Constraint{{Expr: transition, Degree: traceLength - 1}}
}

// defaultFriLayout picks a fri_layout summing to log2(blowup), satisfying
// the requirement that Σ fri_layout's reduction not exceed blowup.
func defaultFriLayout(blowup int) []int {
	total := 0
	for b := blowup; b > 1; b >>= 1 {
		total++
	}
	if total <= 4 {
		return []int{total}
	}
	return []int{total - 2, 2}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "strata-prover:", msg)
}

func fatal(msg string) {
	log.SetOutput(os.Stderr)
	log.Fatal("strata-prover: ERROR: " + msg)
}

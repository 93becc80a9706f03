// Package strata provides a production-ready STARK prover and verifier.
//
// Strata is a transparent, hash-based (FRI) proof system: callers supply an
// execution trace and an algebraic constraint set (an AIR) and get back a
// succinct, non-interactive proof that the trace satisfies the constraints.
// The proof is not zero-knowledge: it opens trace values at the queried
// rows and at the out-of-domain point.
//
// # Quick Start
//
// Proving a computation:
//
//	params := strata.DefaultParameters()
//	proof, err := strata.Prove(strata.ProofRequest{
//		Trace:       trace,
//		Constraints: constraints,
//		Params:      params,
//		Seed:        []byte("my-application-v1"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Verifying it back:
//
//	err = strata.Verify(strata.VerifyRequest{
//		Proof:       proof,
//		NumColumns:  len(trace),
//		TraceLength: len(trace[0]),
//		Constraints: constraints,
//		Params:      params,
//		Seed:        []byte("my-application-v1"),
//	})
//	if err != nil {
//		log.Fatal("invalid proof:", err)
//	}
//
// # Architecture
//
// Strata uses a hybrid public/private architecture:
//
//   - pkg/strata/: public API (this package)
//   - internal/strata/: private implementation (not importable)
//
// The public API is stable; internal/strata's core (field arithmetic, NTT,
// polynomials, Merkle commitments) and protocols (constraint DAG, FRI,
// proof-of-work, the prover/verifier state machines) layers can change
// without breaking callers.
//
// # References
//
//   - STARK paper: https://eprint.iacr.org/2018/046
//   - FRI paper: https://eccc.weizmann.ac.il/report/2017/134/
package strata

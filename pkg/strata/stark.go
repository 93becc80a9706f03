package strata

import (
	"github.com/strata-zk/strata/internal/strata/protocols"
)

// ProofRequest is everything Prove needs: the trace, the AIR it must
// satisfy, any claim polynomials the constraints reference, the proof
// parameters, and a domain-separating seed for the Fiat-Shamir transcript.
type ProofRequest struct {
	Trace            Trace
	Constraints      []Constraint
	ClaimPolynomials [][]FieldElement
	Params           Parameters
	Seed             []byte

	// SkipSelfVerify disables the default self-verification pass. Leave
	// false unless proving latency is on the hot path and the caller
	// verifies independently downstream.
	SkipSelfVerify bool
}

// VerifyRequest mirrors ProofRequest, minus the trace itself: a verifier
// only ever sees its claimed shape, never its contents.
type VerifyRequest struct {
	Proof            []byte
	NumColumns       int
	TraceLength      int
	Constraints      []Constraint
	ClaimPolynomials [][]FieldElement
	Params           Parameters
	Seed             []byte
}

// Prove builds a STARK proof that req.Trace satisfies req.Constraints.
// Unless req.SkipSelfVerify is set, the freshly built proof is verified
// before being returned, so a malformed constraint set or prover bug is
// caught here rather than surfacing downstream as an unverifiable proof.
func Prove(req ProofRequest) ([]byte, error) {
	proof, err := protocols.Prove(protocols.ProverInput{
		TraceColumns:     req.Trace,
		Constraints:      req.Constraints,
		ClaimPolynomials: req.ClaimPolynomials,
		Params:           req.Params,
		Seed:             req.Seed,
		SelfVerify:       !req.SkipSelfVerify,
	})
	if err != nil {
		return nil, &Error{Code: ErrProofGeneration, Message: "failed to build proof", Cause: err}
	}
	return proof, nil
}

// Verify checks req.Proof against req.Constraints and the claimed trace
// shape, returning nil only if every phase of the transcript — Merkle
// roots, out-of-domain consistency, proof-of-work, and every query's FRI
// fold chain — checks out.
func Verify(req VerifyRequest) error {
	err := protocols.Verify(protocols.VerifierInput{
		Proof:            req.Proof,
		NumColumns:       req.NumColumns,
		TraceLength:      req.TraceLength,
		Constraints:      req.Constraints,
		ClaimPolynomials: req.ClaimPolynomials,
		Params:           req.Params,
		Seed:             req.Seed,
	})
	if err != nil {
		return &Error{Code: ErrVerificationFailed, Message: "proof failed verification", Cause: err}
	}
	return nil
}

package strata

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Run("ErrorMessage", func(t *testing.T) {
		err := &Error{Code: ErrInvalidTrace, Message: "trace is empty"}
		if got := err.Error(); got != "strata: trace is empty" {
			t.Fatalf("Error() = %q", got)
		}
	})

	t.Run("ErrorMessageWithCause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &Error{Code: ErrProofGeneration, Message: "failed to build proof", Cause: cause}
		got := err.Error()
		if got != "strata: failed to build proof: boom" {
			t.Fatalf("Error() = %q", got)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("boom")
		err := &Error{Code: ErrVerificationFailed, Message: "bad proof", Cause: cause}
		if !errors.Is(err, cause) {
			t.Fatal("expected errors.Is to find the wrapped cause")
		}
	})

	t.Run("IsMatchesByCode", func(t *testing.T) {
		a := &Error{Code: ErrInvalidParameters, Message: "a"}
		b := &Error{Code: ErrInvalidParameters, Message: "b"}
		c := &Error{Code: ErrInvalidTrace, Message: "c"}
		if !errors.Is(a, b) {
			t.Fatal("expected same-code errors to match")
		}
		if errors.Is(a, c) {
			t.Fatal("expected different-code errors not to match")
		}
	})
}

package core

import "testing"

func TestBatchInvertMatchesIndividualInverses(t *testing.T) {
	in := []FieldElement{
		NewFieldElementFromUint64(2),
		NewFieldElementFromUint64(3),
		NewFieldElementFromUint64(5),
		NewFieldElementFromUint64(123456789),
	}
	out, err := BatchInvert(in)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range in {
		want, ok := v.Inv()
		if !ok {
			t.Fatalf("expected invertible element at %d", i)
		}
		if !out[i].Equal(want) {
			t.Fatalf("index %d: batch invert mismatch", i)
		}
	}
}

func TestBatchInvertRejectsZero(t *testing.T) {
	in := []FieldElement{NewFieldElementFromUint64(2), FieldZero, NewFieldElementFromUint64(5)}
	if _, err := BatchInvert(in); err == nil {
		t.Fatal("expected an error for a zero element")
	}
}

func TestBatchInvertEmpty(t *testing.T) {
	out, err := BatchInvert(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d elements", len(out))
	}
}

package utils

import "fmt"

// Parameters is the caller-visible proof configuration: blowup, pow_bits,
// num_queries, fri_layout.
type Parameters struct {
	// Blowup is the power-of-two size ratio between the trace domain and
	// the low-degree-extended evaluation domain.
	Blowup int

	// PowBits is the proof-of-work difficulty in leading zero bits, 0-255.
	PowBits int

	// NumQueries is the number of query points drawn for decommitment.
	NumQueries int

	// FriLayout is the ordered sequence of per-round FRI reduction
	// exponents; round i folds the current layer by a factor of
	// 2^FriLayout[i].
	FriLayout []int
}

// DefaultParameters returns a reasonable starting point for examples and
// tests: a 1024-row-scale trace with blowup 16. fri_layout is chosen to
// satisfy ValidateForTraceLength's Σfri_layout <= log2(blowup) bound
// (blowup=16 allows a total reduction of at most 2^4).
func DefaultParameters() Parameters {
	return Parameters{
		Blowup:     16,
		PowBits:    0,
		NumQueries: 20,
		FriLayout:  []int{2, 2},
	}
}

// Validate checks the self-contained invariants of p: those that do not
// depend on a specific trace length.
func (p Parameters) Validate() error {
	if !IsPowerOfTwo(p.Blowup) {
		return fmt.Errorf("utils: blowup must be a power of two, got %d", p.Blowup)
	}
	if p.PowBits < 0 || p.PowBits > 255 {
		return fmt.Errorf("utils: pow_bits must be in [0,255], got %d", p.PowBits)
	}
	if p.NumQueries <= 0 {
		return fmt.Errorf("utils: num_queries must be positive, got %d", p.NumQueries)
	}
	if len(p.FriLayout) == 0 {
		return fmt.Errorf("utils: fri_layout must have at least one round")
	}
	for i, r := range p.FriLayout {
		if r <= 0 {
			return fmt.Errorf("utils: fri_layout[%d] must be positive, got %d", i, r)
		}
	}
	return nil
}

// TotalFriReduction returns Σ fri_layout, the total log2 folding factor
// applied across all FRI rounds.
func (p Parameters) TotalFriReduction() int {
	total := 0
	for _, r := range p.FriLayout {
		total += r
	}
	return total
}

// ValidateForTraceLength checks the invariant that ties fri_layout to a
// specific trace length: FRI starts on the trace_length * blowup LDE
// values, so the final FRI layer's length, trace_length * blowup /
// 2^(Σ fri_layout), must be at least trace_length, i.e.
// 2^(Σ fri_layout) <= blowup.
func (p Parameters) ValidateForTraceLength(traceLength int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !IsPowerOfTwo(traceLength) {
		return fmt.Errorf("utils: trace length must be a power of two, got %d", traceLength)
	}
	total := p.TotalFriReduction()
	if 1<<uint(total) > p.Blowup {
		return fmt.Errorf("utils: fri_layout reduces by 2^%d, exceeding blowup %d", total, p.Blowup)
	}
	return nil
}

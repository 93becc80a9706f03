package protocols

import (
	"encoding/binary"
	"fmt"

	"github.com/strata-zk/strata/internal/strata/core"
)

// Builder accumulates the append-only proof byte sequence. Every
// Write call mirrors one write to the Fiat-Shamir channel, in the same
// order the prover's state machine performs them; Reader below consumes
// the identical sequence in lock-step on the verifier side. Query indices
// are never written: both sides re-derive them independently from the
// channel, so only the leaves and sibling-hash openings are serialized.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty proof builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Bytes returns the accumulated proof, in the order it was written.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// WriteDigest appends a single 32-byte Merkle root.
func (b *Builder) WriteDigest(d core.Digest) {
	b.buf = append(b.buf, d[:]...)
}

// WriteDigests appends a sequence of 32-byte digests with no length
// prefix -- the count must be known to the reader from the proof
// parameters, as with every other variable-length section here.
func (b *Builder) WriteDigests(ds []core.Digest) {
	for _, d := range ds {
		b.WriteDigest(d)
	}
}

// WriteFieldElement appends one field element's canonical 32-byte
// encoding.
func (b *Builder) WriteFieldElement(e core.FieldElement) {
	bytes := e.Bytes()
	b.buf = append(b.buf, bytes[:]...)
}

// WriteFieldElements appends a sequence of field elements.
func (b *Builder) WriteFieldElements(es []core.FieldElement) {
	for _, e := range es {
		b.WriteFieldElement(e)
	}
}

// WriteNonce appends the 8-byte big-endian PoW nonce.
func (b *Builder) WriteNonce(nonce uint64) {
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], nonce)
	b.buf = append(b.buf, nb[:]...)
}

// WriteOpeningNodes appends a batched Merkle opening's sibling-hash nodes,
// in the order core.Tree.Open produced them.
func (b *Builder) WriteOpeningNodes(proof core.OpeningProof) {
	b.WriteDigests(proof.Nodes)
}

// Reader parses a proof byte sequence written by Builder, section by
// section, in the same fixed order the prover wrote them.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps proof for sequential reading.
func NewReader(proof []byte) *Reader {
	return &Reader{buf: proof}
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("protocols: proof truncated: need %d bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// ReadDigest reads one 32-byte digest.
func (r *Reader) ReadDigest() (core.Digest, error) {
	chunk, err := r.take(32)
	if err != nil {
		return core.Digest{}, err
	}
	var d core.Digest
	copy(d[:], chunk)
	return d, nil
}

// ReadDigests reads n 32-byte digests.
func (r *Reader) ReadDigests(n int) ([]core.Digest, error) {
	out := make([]core.Digest, n)
	for i := range out {
		d, err := r.ReadDigest()
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// ReadFieldElement reads one 32-byte field element.
func (r *Reader) ReadFieldElement() (core.FieldElement, error) {
	chunk, err := r.take(32)
	if err != nil {
		return core.FieldElement{}, err
	}
	var raw [32]byte
	copy(raw[:], chunk)
	return core.FieldElementFromBytes(raw), nil
}

// ReadFieldElements reads n field elements.
func (r *Reader) ReadFieldElements(n int) ([]core.FieldElement, error) {
	out := make([]core.FieldElement, n)
	for i := range out {
		e, err := r.ReadFieldElement()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ReadNonce reads the 8-byte big-endian PoW nonce.
func (r *Reader) ReadNonce() (uint64, error) {
	chunk, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(chunk), nil
}

// ReadOpeningNodes reads n sibling-hash digests for a batched opening; the
// caller pairs them with independently re-derived indices to reconstruct
// a core.OpeningProof.
func (r *Reader) ReadOpeningNodes(n int) ([]core.Digest, error) {
	return r.ReadDigests(n)
}

// Remaining reports how many unread bytes remain.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

package protocols

import "testing"

func TestFindNonceVerifies(t *testing.T) {
	digest := powKeccak([]byte("fibonacci-1024-a-channel"))
	const bits = 8
	nonce, ok := FindNonce(digest, bits)
	if !ok {
		t.Fatal("expected to find a nonce")
	}
	if !VerifyNonce(digest, bits, nonce) {
		t.Fatalf("nonce %d failed verification", nonce)
	}
}

func TestFindNonceZeroBitsAlwaysSucceedsImmediately(t *testing.T) {
	digest := powKeccak([]byte("seed"))
	nonce, ok := FindNonce(digest, 0)
	if !ok {
		t.Fatal("expected success with pow_bits=0")
	}
	if !VerifyNonce(digest, 0, nonce) {
		t.Fatal("expected verification to succeed with pow_bits=0")
	}
}

func TestVerifyNonceRejectsWrongNonce(t *testing.T) {
	digest := powKeccak([]byte("seed-for-rejection"))
	const bits = 10
	nonce, ok := FindNonce(digest, bits)
	if !ok {
		t.Fatal("expected to find a nonce")
	}
	if VerifyNonce(digest, bits, nonce+1) {
		t.Fatal("adjacent nonce should not generally also satisfy the puzzle")
	}
}

func TestPowThresholdMatchesBitPosition(t *testing.T) {
	// 2^(256-1) is a single set bit at the top of byte 0.
	th := powThreshold(1)
	if th[0] != 0x80 {
		t.Fatalf("expected 0x80 in byte 0, got %x", th[0])
	}
	for i := 1; i < 32; i++ {
		if th[i] != 0 {
			t.Fatalf("expected zero byte at %d, got %x", i, th[i])
		}
	}

	// 2^(256-255) = 2^1 = 2, a single set bit in the last byte.
	th255 := powThreshold(255)
	if th255[31] != 0x02 {
		t.Fatalf("expected 0x02 in byte 31, got %x", th255[31])
	}
}

func TestPowLeadingZeroBits(t *testing.T) {
	var d [32]byte
	if powLeadingZeroBits(d) != 256 {
		t.Fatalf("all-zero digest should report 256 leading zero bits")
	}
	d[0] = 0x01
	if powLeadingZeroBits(d) != 7 {
		t.Fatalf("expected 7 leading zero bits, got %d", powLeadingZeroBits(d))
	}
	d[0] = 0x80
	if powLeadingZeroBits(d) != 0 {
		t.Fatalf("expected 0 leading zero bits, got %d", powLeadingZeroBits(d))
	}
}

package crypto

import "testing"

func TestKeccak256_MatchesKnownVector(t *testing.T) {
	// Keccak-256 of the empty input, a well-known test vector.
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	got := Keccak256Hash().Hex()
	if got != "0x"+want {
		t.Fatalf("got %s, want 0x%s", got, want)
	}
}

func TestKeccak256_ConcatenatesInputs(t *testing.T) {
	whole := Keccak256([]byte("hello world"))
	split := Keccak256([]byte("hello "), []byte("world"))
	if string(whole) != string(split) {
		t.Fatal("expected concatenated inputs to hash identically to one combined input")
	}
}

func TestKeccak256_DifferentInputsDifferentHashes(t *testing.T) {
	a := Keccak256Hash([]byte("a"))
	b := Keccak256Hash([]byte("b"))
	if a == b {
		t.Fatal("expected different inputs to produce different hashes")
	}
}

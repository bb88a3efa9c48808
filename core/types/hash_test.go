package types

import "testing"

func TestHash_HexRoundTrip(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02, 0x03})
	back := HexToHash(h.Hex())
	if back != h {
		t.Fatal("expected hex round trip to recover the same hash")
	}
}

func TestHash_IsZero(t *testing.T) {
	if !(Hash{}).IsZero() {
		t.Fatal("expected the zero value to be zero")
	}
	if BytesToHash([]byte{1}).IsZero() {
		t.Fatal("expected a nonzero byte to make the hash nonzero")
	}
}

func TestHash_SetBytesLeftPads(t *testing.T) {
	h := BytesToHash([]byte{0xAB})
	if h[31] != 0xAB {
		t.Fatalf("expected the single byte to land at the end, got %x", h[31])
	}
	for i := 0; i < 31; i++ {
		if h[i] != 0 {
			t.Fatalf("expected left-padding with zeros, byte %d = %x", i, h[i])
		}
	}
}

func TestHash_SetBytesTruncatesOverlong(t *testing.T) {
	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	h := BytesToHash(long)
	// Only the last 32 bytes are kept.
	if h[0] != long[8] {
		t.Fatalf("expected truncation to keep the trailing 32 bytes, got %x want %x", h[0], long[8])
	}
}

func TestHash_Nibble(t *testing.T) {
	var h Hash
	h[0] = 0xAB
	if h.Nibble(0) != 0xA {
		t.Fatalf("expected nibble 0 to be 0xA, got %x", h.Nibble(0))
	}
	if h.Nibble(1) != 0xB {
		t.Fatalf("expected nibble 1 to be 0xB, got %x", h.Nibble(1))
	}
}

func TestHash_WithNibble(t *testing.T) {
	var h Hash
	h2 := h.WithNibble(0, 0xC)
	if h2.Nibble(0) != 0xC {
		t.Fatal("expected WithNibble to set the target nibble")
	}
	if h != (Hash{}) {
		t.Fatal("expected WithNibble to not mutate the receiver")
	}
	h3 := h2.WithNibble(1, 0x5)
	if h3.Nibble(0) != 0xC || h3.Nibble(1) != 0x5 {
		t.Fatal("expected WithNibble to preserve the other nibble")
	}
}

func TestCommonPrefixNibbles(t *testing.T) {
	a := BytesToHash([]byte{0xAB, 0xCD})
	b := BytesToHash([]byte{0xAB, 0xCE})
	// Bytes agree through index 30 (31 bytes, including leading zero
	// padding), then the last byte (0xCD vs 0xCE) shares its high
	// nibble (0xC) but not the low.
	got := CommonPrefixNibbles(a, b)
	want := 63 // 31 bytes * 2 nibbles + 1 matching nibble in the differing byte
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestCommonPrefixNibbles_Identical(t *testing.T) {
	a := BytesToHash([]byte{0x12, 0x34})
	if got := CommonPrefixNibbles(a, a); got != 64 {
		t.Fatalf("expected identical hashes to share all 64 nibbles, got %d", got)
	}
}

func TestHash_String(t *testing.T) {
	h := BytesToHash([]byte{0xFF})
	if h.String() != h.Hex() {
		t.Fatal("expected String to match Hex")
	}
}

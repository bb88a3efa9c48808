package trie

import "testing"

func TestRLPSerializer_LeafRoundTripWire(t *testing.T) {
	s := NewRLPSerializer()
	l := leaf(1, "hello")
	raw, err := s.Encode(l, FormatWire)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := s.Decode(raw, 0, FormatWire, l.Hash(), true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Hash() != l.Hash() || !decoded.IsLeaf() {
		t.Fatal("expected round-tripped leaf to match original")
	}
}

func TestRLPSerializer_InnerRoundTripWire(t *testing.T) {
	s := NewRLPSerializer()
	n := inner(map[int]Node{1: leaf(1, "a"), 9: leaf(9, "b")})
	raw, err := s.Encode(n, FormatWire)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := s.Decode(raw, 0, FormatWire, n.Hash(), true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Hash() != n.Hash() {
		t.Fatal("expected round-tripped inner node to match original")
	}
	di := decoded.(*InnerNode)
	if di.BranchCount() != 2 {
		t.Fatalf("expected 2 populated branches, got %d", di.BranchCount())
	}
}

func TestRLPSerializer_VersionedInnerRoundTrip(t *testing.T) {
	s := NewRLPSerializer()
	var key Hash
	key[0] = 0xAB
	n := NewVersionedInnerNode(NewNodeID(4, key))
	n.SetBranch(3, leaf(3, "x").Hash(), nil)
	n.RecomputeHash()

	raw, err := s.Encode(n, FormatWire)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := s.Decode(raw, 4, FormatWire, n.Hash(), true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	di := decoded.(*InnerNode)
	if !di.Versioned() {
		t.Fatal("expected decoded node to remain versioned")
	}
	if di.OwnID().Depth() != 4 || di.OwnID().Key() != key {
		t.Fatal("expected decoded node to recover its own claimed position")
	}
	if di.Hash() != n.Hash() {
		t.Fatal("expected identical hash after round trip")
	}
}

func TestRLPSerializer_FormatPrefixEmbedsHash(t *testing.T) {
	s := NewRLPSerializer()
	l := leaf(1, "hello")
	raw, err := s.Encode(l, FormatPrefix)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := s.Decode(raw, 0, FormatPrefix, Hash{}, false); err != nil {
		t.Fatalf("expected embedded-hash decode to succeed, got %v", err)
	}
}

func TestRLPSerializer_FormatPrefixRejectsTamperedHash(t *testing.T) {
	s := NewRLPSerializer()
	l := leaf(1, "hello")
	raw, err := s.Encode(l, FormatPrefix)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Flip the last encoded byte -- the final byte of the embedded hash,
	// which wireNode encodes last -- so the embedded hash disagrees with
	// the one recomputed from the node's contents.
	raw[len(raw)-1] ^= 0xFF
	if _, err := s.Decode(raw, 0, FormatPrefix, Hash{}, false); err == nil {
		t.Fatal("expected a tampered prefix-format encoding to be rejected")
	}
}

func TestRLPSerializer_StrictRejectsUnexpectedHash(t *testing.T) {
	s := NewRLPSerializer()
	l := leaf(1, "hello")
	raw, _ := s.Encode(l, FormatWire)
	wrong := leaf(2, "other").Hash()
	if _, err := s.Decode(raw, 0, FormatWire, wrong, true); err != ErrHashMismatch {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
}

func TestRLPSerializer_NonStrictIgnoresHashMismatch(t *testing.T) {
	s := NewRLPSerializer()
	l := leaf(1, "hello")
	raw, _ := s.Encode(l, FormatWire)
	wrong := leaf(2, "other").Hash()
	decoded, err := s.Decode(raw, 0, FormatWire, wrong, false)
	if err != nil {
		t.Fatalf("expected non-strict decode to succeed despite hash mismatch, got %v", err)
	}
	if decoded.Hash() == wrong {
		t.Fatal("expected the decoded node to keep its own true hash")
	}
}

func TestRLPSerializer_RejectsGarbage(t *testing.T) {
	s := NewRLPSerializer()
	if _, err := s.Decode([]byte{0xFF, 0xFF, 0xFF}, 0, FormatWire, Hash{}, false); err == nil {
		t.Fatal("expected garbage bytes to fail decode")
	}
}

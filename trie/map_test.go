package trie

import "testing"

func TestMap_InitialState(t *testing.T) {
	m, _ := newSynchingMap()
	if m.State() != Synching {
		t.Fatalf("expected a fresh Map to start Synching, got %v", m.State())
	}
	if m.Root() != nil {
		t.Fatal("expected a fresh Map to have no root")
	}
	if m.RootHash() != (Hash{}) {
		t.Fatal("expected RootHash to be zero with no root installed")
	}
	if m.Seq() != 0 {
		t.Fatalf("expected a fresh sequence number of 0, got %d", m.Seq())
	}
}

func TestMap_SetStateInvalidIsSticky(t *testing.T) {
	m, _ := newSynchingMap()
	m.setState(Valid)
	if m.State() != Valid {
		t.Fatal("expected setState(Valid) to apply")
	}
	m.setState(StateInvalid)
	if m.State() != StateInvalid {
		t.Fatal("expected setState(Invalid) to apply")
	}
	m.setState(Synching)
	if m.State() != StateInvalid {
		t.Fatal("expected Invalid to never be downgraded")
	}
	m.setState(Valid)
	if m.State() != StateInvalid {
		t.Fatal("expected Invalid to never be downgraded")
	}
}

func TestMap_ResolveFetchesAndCanonicalizes(t *testing.T) {
	db := NewMemoryDatabase(NewRLPSerializer(), nil)
	cache := NewMemoryFullBelowCache()
	m := newTestMap(db, cache)

	l := leaf(1, "x")
	db.Put(l.Hash(), l)

	got := m.resolve(l.Hash())
	if got == nil || got.Hash() != l.Hash() {
		t.Fatal("expected resolve to fetch the stored leaf")
	}
	if m.resolve(Hash{}) != nil {
		t.Fatal("expected resolve of the zero hash to return nil")
	}
}

func TestMap_VisitNodesAndLeaves(t *testing.T) {
	l0 := leaf(0, "a")
	l1 := leaf(1, "b")
	root := inner(map[int]Node{0: l0, 1: l1})
	m, _ := newSynchingMap()
	setRoot(m, root)

	count := 0
	m.VisitNodes(func(Node) bool { count++; return false })
	if count != 3 {
		t.Fatalf("expected root + 2 leaves visited, got %d", count)
	}

	var payloads []string
	m.VisitLeaves(func(item *Item) bool {
		payloads = append(payloads, string(item.Payload))
		return false
	})
	if len(payloads) != 2 {
		t.Fatalf("expected 2 leaf payloads, got %d", len(payloads))
	}
}

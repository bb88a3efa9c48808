package trie

import "testing"

func TestMemoryFullBelowCache_GenerationStartsAtOne(t *testing.T) {
	c := NewMemoryFullBelowCache()
	if c.GetGeneration() != 1 {
		t.Fatalf("expected initial generation 1 (0 is reserved for \"not proven\"), got %d", c.GetGeneration())
	}
}

func TestMemoryFullBelowCache_InsertAndTouch(t *testing.T) {
	c := NewMemoryFullBelowCache()
	h := leaf(1, "x").Hash()
	if c.TouchIfExists(h) {
		t.Fatal("expected a fresh cache to have no members")
	}
	c.Insert(h)
	if !c.TouchIfExists(h) {
		t.Fatal("expected an inserted hash to be found at the current generation")
	}
}

func TestMemoryFullBelowCache_BumpInvalidatesPriorMembers(t *testing.T) {
	c := NewMemoryFullBelowCache()
	h := leaf(1, "x").Hash()
	c.Insert(h)
	c.BumpGeneration()
	if c.TouchIfExists(h) {
		t.Fatal("expected a generation bump to invalidate prior membership")
	}
	c.Insert(h)
	if !c.TouchIfExists(h) {
		t.Fatal("expected re-insertion at the new generation to be found")
	}
}

func TestFastCache_GenerationStartsAtOne(t *testing.T) {
	c := NewFastCache(1 << 20)
	if c.GetGeneration() != 1 {
		t.Fatalf("expected initial generation 1, got %d", c.GetGeneration())
	}
}

func TestFastCache_InsertAndTouch(t *testing.T) {
	c := NewFastCache(1 << 20)
	h := leaf(1, "x").Hash()
	if c.TouchIfExists(h) {
		t.Fatal("expected a fresh cache to have no members")
	}
	c.Insert(h)
	if !c.TouchIfExists(h) {
		t.Fatal("expected an inserted hash to be found at the current generation")
	}
}

func TestFastCache_BumpInvalidatesPriorMembers(t *testing.T) {
	c := NewFastCache(1 << 20)
	h := leaf(1, "x").Hash()
	c.Insert(h)
	c.BumpGeneration()
	if c.TouchIfExists(h) {
		t.Fatal("expected a generation bump to invalidate prior membership")
	}
}

func TestFastCache_TouchIfExistsMissForUnknownHash(t *testing.T) {
	c := NewFastCache(1 << 20)
	if c.TouchIfExists(leaf(9, "never-inserted").Hash()) {
		t.Fatal("expected an unknown hash to miss")
	}
}

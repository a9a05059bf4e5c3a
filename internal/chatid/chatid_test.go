package chatid

import "testing"

func TestIndividualSymmetric(t *testing.T) {
	if Individual(7, 3) != Individual(3, 7) {
		t.Fatalf("expected same id regardless of argument order")
	}
	if Individual(3, 7) != "3:7" {
		t.Fatalf("expected sorted-join id, got %s", Individual(3, 7))
	}
}

func TestIndividualDistinctPairs(t *testing.T) {
	if Individual(1, 23) == Individual(12, 3) {
		t.Fatalf("different pairs must not collide")
	}
}

func TestNewGroupUnique(t *testing.T) {
	a, b := NewGroup(), NewGroup()
	if a == b {
		t.Fatalf("expected distinct group ids")
	}
	if a[:2] != "g-" {
		t.Fatalf("expected g- prefix, got %s", a)
	}
}

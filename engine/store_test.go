package engine

import (
	"testing"
)

func TestStore_SetGetRemove(t *testing.T) {
	s := NewStore[string]()
	s.Set(1, "a")
	s.Set(2, "b")
	s.Set(2, "B")

	if v, ok := s.Get(2); !ok || v != "B" {
		t.Errorf("Get(2) = %q,%v", v, ok)
	}

	s.Remove(1)
	s.Remove(1)
	if s.Has(1) {
		t.Error("removed entity still present")
	}
	if v, ok := s.Get(2); !ok || v != "B" {
		t.Errorf("Get(2) after removal = %q,%v", v, ok)
	}
	if _, ok := s.Get(1); ok {
		t.Error("Get returned a removed entity")
	}
}

package engine

import (
	"errors"
	"testing"
)

func TestPool_AllocUntilExhausted(t *testing.T) {
	p := NewPool[int]("test", 3)
	for i := 0; i < 3; i++ {
		idx, err := p.Alloc()
		if err != nil {
			t.Fatalf("alloc %d: %v", i, err)
		}
		if idx != uint32(i) {
			t.Errorf("alloc %d returned slot %d", i, idx)
		}
	}
	if _, err := p.Alloc(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if p.Len() != 3 || p.Available() != 0 {
		t.Errorf("Len=%d Available=%d, want 3/0", p.Len(), p.Available())
	}
}

func TestPool_FreeReusesAndZeroes(t *testing.T) {
	p := NewPool[int]("test", 2)
	a, _ := p.Alloc()
	v, _ := p.Get(a)
	*v = 99

	if !p.Free(a) {
		t.Fatal("free of live slot failed")
	}
	if p.Free(a) {
		t.Error("double free succeeded")
	}
	if _, ok := p.Get(a); ok {
		t.Error("freed slot still readable")
	}

	b, err := p.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	if b != a {
		t.Errorf("expected LIFO reuse of slot %d, got %d", a, b)
	}
	v, _ = p.Get(b)
	if *v != 0 {
		t.Errorf("reused slot not zeroed: %d", *v)
	}
}

func TestPool_EachAscending(t *testing.T) {
	p := NewPool[int]("test", 4)
	for i := 0; i < 4; i++ {
		p.Alloc()
	}
	p.Free(1)

	var seen []uint32
	p.Each(func(idx uint32, _ *int) {
		seen = append(seen, idx)
	})
	want := []uint32{0, 2, 3}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visited %v, want %v", seen, want)
		}
	}
}

func TestPool_OutOfRange(t *testing.T) {
	p := NewPool[int]("test", 1)
	if p.Live(5) {
		t.Error("out of range slot reported live")
	}
	if p.Free(5) {
		t.Error("out of range free succeeded")
	}
}

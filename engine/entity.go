package engine

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/flock/core"
)

// entityRecord is the pool slot behind an entity id
type entityRecord struct {
	tag string
}

// EntityManager issues entity ids from a fixed pool
// An id packs generation (high 32 bits) and slot+1 (low 32 bits) so stale ids never alias reused slots
type EntityManager struct {
	mu   sync.Mutex
	pool *Pool[entityRecord]
	gens []uint32
}

// NewEntityManager creates an entity pool with room for capacity live entities
func NewEntityManager(capacity int) *EntityManager {
	return &EntityManager{
		pool: NewPool[entityRecord]("entity", capacity),
		gens: make([]uint32, capacity),
	}
}

// CreateEntity reserves a new entity labeled with tag
func (m *EntityManager) CreateEntity(tag string) (core.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.pool.Alloc()
	if err != nil {
		return 0, fmt.Errorf("create entity %q: %w", tag, err)
	}
	rec, _ := m.pool.Get(idx)
	rec.tag = tag
	m.gens[idx]++
	return packEntity(m.gens[idx], idx), nil
}

// DestroyEntity releases the id, false if it was not alive
func (m *EntityManager) DestroyEntity(e core.Entity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.slot(e)
	if !ok {
		return false
	}
	return m.pool.Free(idx)
}

// Alive reports whether e refers to a live entity
func (m *EntityManager) Alive(e core.Entity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slot(e)
	return ok
}

// Tag returns the label given at creation
func (m *EntityManager) Tag(e core.Entity) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.slot(e)
	if !ok {
		return "", false
	}
	rec, _ := m.pool.Get(idx)
	return rec.tag, true
}

// Count returns the number of live entities
func (m *EntityManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Len()
}

// slot resolves e to a live pool index, caller holds mu
func (m *EntityManager) slot(e core.Entity) (uint32, bool) {
	gen, idx, ok := unpackEntity(e)
	if !ok || !m.pool.Live(idx) || m.gens[idx] != gen {
		return 0, false
	}
	return idx, true
}

func packEntity(gen, idx uint32) core.Entity {
	return core.Entity(uint64(gen)<<32 | uint64(idx+1))
}

func unpackEntity(e core.Entity) (gen, idx uint32, ok bool) {
	low := uint32(e)
	if low == 0 {
		return 0, 0, false
	}
	return uint32(e >> 32), low - 1, true
}

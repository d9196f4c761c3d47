package engine

import (
	"fmt"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/parameter"
)

// MeshManager owns visual proxies, at most one per entity
// Resource creation is batched: CreateResources marks a whole set loaded in one call
type MeshManager struct {
	meshes   *Pool[component.MeshComponent]
	byEntity *Store[core.MeshRef]

	batches int
}

// NewMeshManager creates a mesh pool with room for capacity proxies
func NewMeshManager(capacity int) *MeshManager {
	return &MeshManager{
		meshes:   NewPool[component.MeshComponent]("mesh", capacity),
		byEntity: NewStore[core.MeshRef](),
	}
}

// CreateMesh allocates an unloaded mesh for e
func (m *MeshManager) CreateMesh(e core.Entity) (core.MeshRef, error) {
	if m.byEntity.Has(e) {
		return core.InvalidMesh, fmt.Errorf("mesh for entity %d: %w", e, ErrDuplicateComponent)
	}
	idx, err := m.meshes.Alloc()
	if err != nil {
		return core.InvalidMesh, fmt.Errorf("create mesh: %w", err)
	}
	ref := core.MeshRef(idx)
	mesh, _ := m.meshes.Get(idx)
	mesh.Entity = e
	m.byEntity.Set(e, ref)
	return ref, nil
}

// ResetToDefault restores default appearance and drops loaded state
func (m *MeshManager) ResetToDefault(ref core.MeshRef) {
	if mesh, ok := m.meshes.Get(uint32(ref)); ok {
		mesh.Name = parameter.DefaultMeshName
		mesh.Loaded = false
	}
}

// SetMeshName selects the appearance resource
func (m *MeshManager) SetMeshName(ref core.MeshRef, name string) {
	if mesh, ok := m.meshes.Get(uint32(ref)); ok {
		mesh.Name = name
	}
}

// CreateResources loads every listed mesh as one batch, dead refs are skipped
func (m *MeshManager) CreateResources(refs []core.MeshRef) {
	m.batches++
	for _, ref := range refs {
		if mesh, ok := m.meshes.Get(uint32(ref)); ok {
			mesh.Loaded = true
		}
	}
}

// Mesh returns the mesh record for direct reads
func (m *MeshManager) Mesh(ref core.MeshRef) (*component.MeshComponent, bool) {
	return m.meshes.Get(uint32(ref))
}

// MeshForEntity returns the mesh bound to e
func (m *MeshManager) MeshForEntity(e core.Entity) (core.MeshRef, bool) {
	return m.byEntity.Get(e)
}

// DestroyForEntity releases the mesh bound to e, if any
// Registered as a node destroy hook so cascading node destruction frees meshes
func (m *MeshManager) DestroyForEntity(e core.Entity) {
	ref, ok := m.byEntity.Get(e)
	if !ok {
		return
	}
	m.byEntity.Remove(e)
	m.meshes.Free(uint32(ref))
}

// Count returns live meshes
func (m *MeshManager) Count() int {
	return m.meshes.Len()
}

// Batches returns how many CreateResources batches ran
func (m *MeshManager) Batches() int {
	return m.batches
}

package system

import (
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/vmath"
)

// EntityAllocator is the entity pool as seen by swarm provisioning
type EntityAllocator interface {
	CreateEntity(tag string) (core.Entity, error)
	// DestroyEntity is only used to roll back an entity whose node could not be created
	DestroyEntity(e core.Entity) bool
}

// SceneGraph is the node system as seen by the swarm manager
type SceneGraph interface {
	CreateNode(e core.Entity) (core.NodeRef, error)
	NodeForEntity(e core.Entity) (core.NodeRef, bool)
	RootNode() core.NodeRef
	AttachChild(parent, child core.NodeRef) error

	SetPosition(n core.NodeRef, v vmath.Vec3F)
	SetSize(n core.NodeRef, v vmath.Vec3F)
	SetOrientation(n core.NodeRef, q vmath.Quat)
	WorldPosition(n core.NodeRef) vmath.Vec3F

	// UpdateTransforms propagates the given nodes in one batch
	UpdateTransforms(nodes []core.NodeRef)
	// RebuildTreeAndUpdateTransforms is the global rebuild after bulk insertion
	RebuildTreeAndUpdateTransforms()
	// DestroyNodeFull destroys the node, its subtree and their entities' components
	DestroyNodeFull(n core.NodeRef)
}

// MeshAllocator is the visual proxy system as seen by swarm provisioning
type MeshAllocator interface {
	CreateMesh(e core.Entity) (core.MeshRef, error)
	ResetToDefault(m core.MeshRef)
	SetMeshName(m core.MeshRef, name string)
	// CreateResources allocates backing resources for a whole set in one batch
	CreateResources(meshes []core.MeshRef)
}

// RandomSource feeds neighbor sampling, consumed modulo the swarm size
type RandomSource interface {
	Next() uint64
}

// StatefulSource is a RandomSource whose position in its stream can be captured and restored
type StatefulSource interface {
	RandomSource
	State() uint64
	SetState(s uint64)
}

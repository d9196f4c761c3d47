package engine

import (
	"fmt"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/parameter"
	"github.com/lixenwraith/flock/vmath"
)

// NodeManager is the scene graph: a flat node pool with parent/child links
// World transforms are only refreshed by UpdateTransforms or RebuildTreeAndUpdateTransforms
// Not safe for concurrent use
type NodeManager struct {
	entities *EntityManager
	nodes    *Pool[component.NodeComponent]
	byEntity *Store[core.NodeRef]
	root     core.NodeRef

	// Hierarchy order from the last rebuild, parents before children
	order []core.NodeRef

	onDestroy []func(core.Entity)

	rebuilds         int
	transformBatches int
}

// NewNodeManager creates the node pool and its root node
// The root consumes one node slot and one entity
func NewNodeManager(entities *EntityManager, capacity int) (*NodeManager, error) {
	m := &NodeManager{
		entities: entities,
		nodes:    NewPool[component.NodeComponent]("node", capacity),
		byEntity: NewStore[core.NodeRef](),
		root:     core.InvalidNode,
	}

	rootEntity, err := entities.CreateEntity(parameter.RootEntityTag)
	if err != nil {
		return nil, fmt.Errorf("scene root: %w", err)
	}
	root, err := m.CreateNode(rootEntity)
	if err != nil {
		return nil, fmt.Errorf("scene root: %w", err)
	}
	m.root = root
	return m, nil
}

// OnDestroyEntity registers a hook run for each entity released by DestroyNodeFull
// Hooks run before the entity id is freed
func (m *NodeManager) OnDestroyEntity(fn func(core.Entity)) {
	m.onDestroy = append(m.onDestroy, fn)
}

// RootNode returns the world root
func (m *NodeManager) RootNode() core.NodeRef {
	return m.root
}

// CreateNode allocates an unparented node for e with identity transform and unit size
func (m *NodeManager) CreateNode(e core.Entity) (core.NodeRef, error) {
	if m.byEntity.Has(e) {
		return core.InvalidNode, fmt.Errorf("node for entity %d: %w", e, ErrDuplicateComponent)
	}
	idx, err := m.nodes.Alloc()
	if err != nil {
		return core.InvalidNode, fmt.Errorf("create node: %w", err)
	}
	ref := core.NodeRef(idx)
	n, _ := m.nodes.Get(idx)
	n.Entity = e
	n.Parent = core.InvalidNode
	n.Orientation = vmath.QuatIdentity
	n.WorldOrientation = vmath.QuatIdentity
	n.Size = vmath.V3FSplat(1)
	m.byEntity.Set(e, ref)
	return ref, nil
}

// Node returns the node record for direct reads
func (m *NodeManager) Node(ref core.NodeRef) (*component.NodeComponent, bool) {
	return m.nodes.Get(uint32(ref))
}

// NodeForEntity returns the node attached to e
func (m *NodeManager) NodeForEntity(e core.Entity) (core.NodeRef, bool) {
	return m.byEntity.Get(e)
}

// AttachChild reparents child under parent
func (m *NodeManager) AttachChild(parent, child core.NodeRef) error {
	p, ok := m.nodes.Get(uint32(parent))
	if !ok {
		return fmt.Errorf("attach parent %d: %w", parent, ErrInvalidRef)
	}
	c, ok := m.nodes.Get(uint32(child))
	if !ok {
		return fmt.Errorf("attach child %d: %w", child, ErrInvalidRef)
	}
	for a := parent; a.Valid(); {
		if a == child {
			return fmt.Errorf("attach %d under its descendant %d: %w", child, parent, ErrInvalidRef)
		}
		an, _ := m.nodes.Get(uint32(a))
		a = an.Parent
	}

	m.detach(child, c)
	c.Parent = parent
	p.Children = append(p.Children, child)
	return nil
}

// detach unlinks n from its current parent, if any
func (m *NodeManager) detach(ref core.NodeRef, n *component.NodeComponent) {
	if !n.Parent.Valid() {
		return
	}
	if p, ok := m.nodes.Get(uint32(n.Parent)); ok {
		for i, c := range p.Children {
			if c == ref {
				p.Children = append(p.Children[:i], p.Children[i+1:]...)
				break
			}
		}
	}
	n.Parent = core.InvalidNode
}

// --- Accessors ---

func (m *NodeManager) SetPosition(ref core.NodeRef, v vmath.Vec3F) {
	if n, ok := m.nodes.Get(uint32(ref)); ok {
		n.Position = v
	}
}

func (m *NodeManager) SetSize(ref core.NodeRef, v vmath.Vec3F) {
	if n, ok := m.nodes.Get(uint32(ref)); ok {
		n.Size = v
	}
}

func (m *NodeManager) SetOrientation(ref core.NodeRef, q vmath.Quat) {
	if n, ok := m.nodes.Get(uint32(ref)); ok {
		n.Orientation = q
	}
}

// WorldPosition returns the position as of the last transform propagation
func (m *NodeManager) WorldPosition(ref core.NodeRef) vmath.Vec3F {
	if n, ok := m.nodes.Get(uint32(ref)); ok {
		return n.WorldPosition
	}
	return vmath.Vec3F{}
}

// WorldOrientation returns the orientation as of the last transform propagation
func (m *NodeManager) WorldOrientation(ref core.NodeRef) vmath.Quat {
	if n, ok := m.nodes.Get(uint32(ref)); ok {
		return n.WorldOrientation
	}
	return vmath.QuatIdentity
}

// --- Transform propagation ---

// UpdateTransforms refreshes world transforms of the given nodes and their subtrees
// Parents outside the set contribute their last propagated world transform
func (m *NodeManager) UpdateTransforms(refs []core.NodeRef) {
	m.transformBatches++
	for _, ref := range refs {
		m.propagate(ref)
	}
}

// RebuildTreeAndUpdateTransforms recomputes hierarchy order and every world transform
// Used once after bulk insertion
func (m *NodeManager) RebuildTreeAndUpdateTransforms() {
	m.rebuilds++
	m.order = m.order[:0]

	// Roots first (the world root, then orphans in slot order), then breadth-first
	m.nodes.Each(func(idx uint32, n *component.NodeComponent) {
		if !n.Parent.Valid() {
			m.order = append(m.order, core.NodeRef(idx))
		}
	})
	for i := 0; i < len(m.order); i++ {
		n, _ := m.nodes.Get(uint32(m.order[i]))
		m.order = append(m.order, n.Children...)
	}

	for _, ref := range m.order {
		m.updateWorld(ref)
	}
}

func (m *NodeManager) propagate(ref core.NodeRef) {
	n, ok := m.updateWorld(ref)
	if !ok {
		return
	}
	for _, c := range n.Children {
		m.propagate(c)
	}
}

// updateWorld derives one node's world transform from its parent's
func (m *NodeManager) updateWorld(ref core.NodeRef) (*component.NodeComponent, bool) {
	n, ok := m.nodes.Get(uint32(ref))
	if !ok {
		return nil, false
	}
	p, ok := m.nodes.Get(uint32(n.Parent))
	if !ok {
		n.WorldPosition = n.Position
		n.WorldOrientation = n.Orientation
		return n, true
	}
	n.WorldPosition = vmath.V3FAdd(p.WorldPosition, vmath.QuatRotate(p.WorldOrientation, n.Position))
	n.WorldOrientation = vmath.QuatMul(p.WorldOrientation, n.Orientation)
	return n, true
}

// --- Destruction ---

// DestroyNodeFull destroys ref, its whole subtree and every entity attached to them
// Destroy hooks run per entity so other managers release their components
// The root cannot be destroyed
func (m *NodeManager) DestroyNodeFull(ref core.NodeRef) {
	if ref == m.root {
		return
	}
	n, ok := m.nodes.Get(uint32(ref))
	if !ok {
		return
	}
	m.detach(ref, n)
	m.destroySubtree(ref)
}

func (m *NodeManager) destroySubtree(ref core.NodeRef) {
	n, ok := m.nodes.Get(uint32(ref))
	if !ok {
		return
	}
	for _, c := range n.Children {
		m.destroySubtree(c)
	}

	e := n.Entity
	for _, fn := range m.onDestroy {
		fn(e)
	}
	m.byEntity.Remove(e)
	m.nodes.Free(uint32(ref))
	m.entities.DestroyEntity(e)
}

// --- Stats ---

// Count returns live nodes including the root
func (m *NodeManager) Count() int {
	return m.nodes.Len()
}

// Rebuilds returns how many full rebuilds ran
func (m *NodeManager) Rebuilds() int {
	return m.rebuilds
}

// TransformBatches returns how many batched propagations ran
func (m *NodeManager) TransformBatches() int {
	return m.transformBatches
}

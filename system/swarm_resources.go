package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/parameter"
	"github.com/lixenwraith/flock/vmath"
)

// provisionMark remembers a swarm's length before provisioning for rollback
type provisionMark struct {
	sw  *component.SwarmComponent
	len int
}

// CreateResources spawns BoidCount boid proxies per swarm at the owning node's world position
// Mesh resources are created in one batch and the scene tree is rebuilt once, after all swarms
// On allocation failure every proxy created by this call is destroyed, swarms are truncated back
// to their previous length, and the wrapped error is returned
func (m *SwarmManager) CreateResources(refs []core.SwarmRef) error {
	// Validate up front so nothing is allocated for a call that cannot complete
	owners := make([]core.NodeRef, len(refs))
	for i, ref := range refs {
		sw, ok := m.swarms.Get(uint32(ref))
		if !ok {
			return fmt.Errorf("provision swarm %d: %w", ref, engine.ErrInvalidRef)
		}
		node, ok := m.scene.NodeForEntity(sw.Entity)
		if !ok {
			return fmt.Errorf("provision swarm %d (entity %d): %w", ref, sw.Entity, ErrNoOwnerNode)
		}
		owners[i] = node
	}

	count := m.cfg.BoidCount
	size := vmath.V3FSplat(m.cfg.BoidSize)
	root := m.scene.RootNode()

	marks := make([]provisionMark, 0, len(refs))
	created := make([]core.NodeRef, 0, len(refs)*count)
	meshes := make([]core.MeshRef, 0, len(refs)*count)

	for i, ref := range refs {
		sw, _ := m.swarms.Get(uint32(ref))
		spawn := m.scene.WorldPosition(owners[i])
		marks = append(marks, provisionMark{sw: sw, len: len(sw.Boids)})

		for range count {
			node, mesh, err := m.spawnProxy(root, size)
			if err != nil {
				m.rollback(marks, created)
				m.logger.Warn("swarm provisioning rolled back",
					zap.Uint32("swarm", uint32(ref)),
					zap.Int("released", len(created)),
					zap.Error(err))
				return fmt.Errorf("provision swarm %d: %w", ref, err)
			}
			created = append(created, node)
			meshes = append(meshes, mesh)

			sw.Boids = append(sw.Boids, component.Boid{Pos: spawn})
			sw.Nodes = append(sw.Nodes, node)
		}
	}

	m.scene.RebuildTreeAndUpdateTransforms()
	m.meshes.CreateResources(meshes)

	for _, mark := range marks {
		mark.sw.SeedAggregates()
	}

	m.statProvisioned.Add(int64(len(created)))
	m.logger.Info("swarm resources created",
		zap.Int("swarms", len(refs)),
		zap.Int("boids", len(created)))
	return nil
}

// spawnProxy creates one boid entity with its node under root and its default mesh
// A partially built proxy is torn down before the error is returned
func (m *SwarmManager) spawnProxy(root core.NodeRef, size vmath.Vec3F) (core.NodeRef, core.MeshRef, error) {
	e, err := m.entities.CreateEntity(parameter.SwarmBoidEntityTag)
	if err != nil {
		return core.InvalidNode, core.InvalidMesh, err
	}
	node, err := m.scene.CreateNode(e)
	if err != nil {
		m.entities.DestroyEntity(e)
		return core.InvalidNode, core.InvalidMesh, err
	}
	if err := m.scene.AttachChild(root, node); err != nil {
		m.scene.DestroyNodeFull(node)
		return core.InvalidNode, core.InvalidMesh, err
	}
	m.scene.SetSize(node, size)

	mesh, err := m.meshes.CreateMesh(e)
	if err != nil {
		m.scene.DestroyNodeFull(node)
		return core.InvalidNode, core.InvalidMesh, err
	}
	m.meshes.ResetToDefault(mesh)
	m.meshes.SetMeshName(mesh, m.cfg.BoidMesh)
	return node, mesh, nil
}

func (m *SwarmManager) rollback(marks []provisionMark, created []core.NodeRef) {
	for _, node := range created {
		m.scene.DestroyNodeFull(node)
	}
	// Reverse order so a swarm listed twice ends at its earliest length
	for i := len(marks) - 1; i >= 0; i-- {
		mark := marks[i]
		mark.sw.Boids = mark.sw.Boids[:mark.len]
		mark.sw.Nodes = mark.sw.Nodes[:mark.len]
	}
}

// DestroyResources destroys every boid node of each swarm (cascading to entity and mesh) and resets the swarm
// Unknown handles are skipped; empty swarms are untouched
func (m *SwarmManager) DestroyResources(refs []core.SwarmRef) {
	released := 0
	for _, ref := range refs {
		sw, ok := m.swarms.Get(uint32(ref))
		if !ok {
			continue
		}
		for _, node := range sw.Nodes {
			m.scene.DestroyNodeFull(node)
		}
		released += len(sw.Nodes)
		sw.Reset()
	}

	if released > 0 {
		m.statReleased.Add(int64(released))
		m.logger.Info("swarm resources destroyed",
			zap.Int("swarms", len(refs)),
			zap.Int("boids", released))
	}
}

package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lixenwraith/flock/config"
	"github.com/lixenwraith/flock/status"
)

// World is the in-memory host: entity pool, scene graph, mesh pool, component directory and systems
// Frame updates and lifecycle calls are serialized through the update mutex (RunSafe)
type World struct {
	mu sync.RWMutex

	Entities  *EntityManager
	Nodes     *NodeManager
	Meshes    *MeshManager
	Directory *Directory

	// Telemetry shared by systems
	Status *status.Registry

	systems     []System
	updateMutex sync.Mutex
	frame       int64
}

// NewWorld creates a host with pools sized by cfg
// Node destruction cascades to meshes of the destroyed entities
func NewWorld(cfg config.PoolConfig) (*World, error) {
	entities := NewEntityManager(cfg.Entities)
	nodes, err := NewNodeManager(entities, cfg.Nodes)
	if err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	meshes := NewMeshManager(cfg.Meshes)
	nodes.OnDestroyEntity(meshes.DestroyForEntity)

	w := &World{
		Entities:  entities,
		Nodes:     nodes,
		Meshes:    meshes,
		Directory: NewDirectory(),
		Status:    status.NewRegistry(),
		systems:   make([]System, 0),
	}
	return w, nil
}

// AddSystem adds a system and keeps the list sorted by priority
// Equal priorities keep insertion order
func (w *World) AddSystem(system System) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.systems = append(w.systems, system)
	sort.SliceStable(w.systems, func(i, j int) bool {
		return w.systems[i].Priority() < w.systems[j].Priority()
	})
}

// Systems returns a copy of all registered systems in run order
func (w *World) Systems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]System, len(w.systems))
	copy(result, w.systems)
	return result
}

// RunSafe executes fn while holding the world's update lock
// Lifecycle mutations (provisioning, teardown) go through here so they never interleave with a frame
func (w *World) RunSafe(fn func()) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()
	fn()
}

// Update runs one frame of all systems sequentially
func (w *World) Update(dt float64) {
	w.RunSafe(func() {
		w.UpdateLocked(dt)
	})
}

// UpdateLocked runs one frame assuming the caller already holds the update lock
func (w *World) UpdateLocked(dt float64) {
	for _, system := range w.Systems() {
		system.Update(dt)
	}
	w.mu.Lock()
	w.frame++
	w.mu.Unlock()
}

// FrameNumber returns completed frames
func (w *World) FrameNumber() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame
}

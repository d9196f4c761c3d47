package system

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/config"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/parameter"
	"github.com/lixenwraith/flock/status"
	"github.com/lixenwraith/flock/vmath"
)

// ErrNoOwnerNode is returned when provisioning a swarm whose owning entity has no scene node
var ErrNoOwnerNode = errors.New("swarm owner has no scene node")

// SwarmManager owns swarm records and drives them each frame
// Flocking: every boid steers by cohesion, separation, alignment and targeting toward the owning entity's node
// Provisioning: each swarm is backed by a fixed count of boid proxies (entity + node + mesh) released as a unit
// Single-threaded apart from UpdateSwarmsParallel; provisioning must not overlap any other scene mutation
type SwarmManager struct {
	entities EntityAllocator
	scene    SceneGraph
	meshes   MeshAllocator
	rng      RandomSource

	cfg     config.SwarmConfig
	flocker *Flocker
	logger  *zap.Logger

	swarms   *engine.Pool[component.SwarmComponent]
	byEntity *engine.Store[core.SwarmRef]

	// Reused pose buffer for the sequential path
	poses []Pose
	// Serializes node writes from parallel steps
	sceneMu sync.Mutex

	// Telemetry
	statCount       *atomic.Int64
	statBoids       *atomic.Int64
	statUpdates     *atomic.Int64
	statUpdateNs    *atomic.Int64
	statProvisioned *atomic.Int64
	statReleased    *atomic.Int64
	statDt          *status.AtomicFloat
}

// Option customizes a SwarmManager
type Option func(*SwarmManager)

// WithLogger sets the logger, default discards
func WithLogger(l *zap.Logger) Option {
	return func(m *SwarmManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStatus publishes telemetry into reg instead of a private registry
func WithStatus(reg *status.Registry) Option {
	return func(m *SwarmManager) {
		if reg != nil {
			m.bindStatus(reg)
		}
	}
}

// WithCapacity bounds live swarm records, default parameter.PoolSwarmCapacity
func WithCapacity(n int) Option {
	return func(m *SwarmManager) {
		m.swarms = engine.NewPool[component.SwarmComponent]("swarm", n)
	}
}

// NewSwarmManager wires a manager to the host systems it provisions from and steers through
func NewSwarmManager(entities EntityAllocator, scene SceneGraph, meshes MeshAllocator, rng RandomSource, cfg config.SwarmConfig, opts ...Option) *SwarmManager {
	m := &SwarmManager{
		entities: entities,
		scene:    scene,
		meshes:   meshes,
		rng:      rng,
		cfg:      cfg,
		flocker:  NewFlocker(cfg),
		logger:   zap.NewNop(),
		swarms:   engine.NewPool[component.SwarmComponent]("swarm", parameter.PoolSwarmCapacity),
		byEntity: engine.NewStore[core.SwarmRef](),
	}
	m.bindStatus(status.NewRegistry())

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSwarmManagerForWorld wires a manager to an in-memory host world and registers it
// with the world's directory and system list
func NewSwarmManagerForWorld(w *engine.World, rng RandomSource, cfg config.Config, opts ...Option) (*SwarmManager, error) {
	base := []Option{WithStatus(w.Status), WithCapacity(cfg.Pools.Swarms)}
	m := NewSwarmManager(w.Entities, w.Nodes, w.Meshes, rng, cfg.Swarm, append(base, opts...)...)
	if err := m.Register(w.Directory); err != nil {
		return nil, err
	}
	w.AddSystem(m)
	return m, nil
}

func (m *SwarmManager) bindStatus(reg *status.Registry) {
	m.statCount = reg.Ints.Get("swarm.count")
	m.statBoids = reg.Ints.Get("swarm.boids")
	m.statUpdates = reg.Ints.Get("swarm.updates")
	m.statUpdateNs = reg.Ints.Get("swarm.update_ns")
	m.statProvisioned = reg.Ints.Get("swarm.provisioned")
	m.statReleased = reg.Ints.Get("swarm.released")
	m.statDt = reg.Floats.Get("swarm.dt")
}

// Register adds the manager to a component directory under the swarm kind tag
func (m *SwarmManager) Register(d *engine.Directory) error {
	return engine.Register[core.SwarmRef](d, parameter.SwarmComponentKind, m)
}

// --- engine.System ---

// Name returns system's name
func (m *SwarmManager) Name() string {
	return "swarm"
}

func (m *SwarmManager) Priority() int {
	return parameter.PrioritySwarm
}

// Update steps every live swarm
func (m *SwarmManager) Update(dt float64) {
	m.UpdateSwarms(m.Swarms(), dt)
}

// --- Records ---

// CreateComponent attaches an empty swarm record to e
func (m *SwarmManager) CreateComponent(e core.Entity) (core.SwarmRef, error) {
	if m.byEntity.Has(e) {
		return core.InvalidSwarm, fmt.Errorf("swarm for entity %d: %w", e, engine.ErrDuplicateComponent)
	}
	idx, err := m.swarms.Alloc()
	if err != nil {
		return core.InvalidSwarm, fmt.Errorf("create swarm: %w", err)
	}
	ref := core.SwarmRef(idx)
	sw, _ := m.swarms.Get(idx)
	sw.Entity = e
	m.byEntity.Set(e, ref)
	m.statCount.Add(1)
	return ref, nil
}

// DestroyComponent removes a swarm record
// Records must be emptied by DestroyResources first; a populated record is released here with a warning
func (m *SwarmManager) DestroyComponent(ref core.SwarmRef) {
	sw, ok := m.swarms.Get(uint32(ref))
	if !ok {
		return
	}
	if len(sw.Boids) > 0 || len(sw.Nodes) > 0 {
		m.logger.Warn("swarm destroyed with live boids, releasing proxies",
			zap.Uint32("swarm", uint32(ref)),
			zap.Int("boids", len(sw.Boids)))
		m.DestroyResources([]core.SwarmRef{ref})
	}
	m.byEntity.Remove(sw.Entity)
	m.swarms.Free(uint32(ref))
	m.statCount.Add(-1)
}

// ComponentForEntity returns the swarm attached to e
func (m *SwarmManager) ComponentForEntity(e core.Entity) (core.SwarmRef, bool) {
	return m.byEntity.Get(e)
}

// ResetToDefault clears the cached aggregates, boids are left in place
func (m *SwarmManager) ResetToDefault(ref core.SwarmRef) {
	if sw, ok := m.swarms.Get(uint32(ref)); ok {
		sw.CenterOfMass = vmath.Vec3F{}
		sw.AvgVelocity = vmath.Vec3F{}
	}
}

// Swarm returns the record behind ref for direct access
func (m *SwarmManager) Swarm(ref core.SwarmRef) (*component.SwarmComponent, bool) {
	return m.swarms.Get(uint32(ref))
}

// Swarms returns live swarm handles in slot order
func (m *SwarmManager) Swarms() []core.SwarmRef {
	refs := make([]core.SwarmRef, 0, m.swarms.Len())
	m.swarms.Each(func(idx uint32, _ *component.SwarmComponent) {
		refs = append(refs, core.SwarmRef(idx))
	})
	return refs
}

// --- Frame update ---

// UpdateSwarms advances each swarm by dt seconds, in order, then propagates its nodes in one batch
// Unknown handles and boid/node count mismatches are fatal
func (m *SwarmManager) UpdateSwarms(refs []core.SwarmRef, dt float64) {
	start := time.Now()
	boids := 0

	for _, ref := range refs {
		sw := m.mustConsistent(ref)
		target, hasTarget := m.target(sw)

		poses := m.scratch(len(sw.Boids))
		m.flocker.Step(sw, target, hasTarget, dt, m.rng, poses)
		m.flush(sw.Nodes, poses)
		boids += len(sw.Boids)
	}

	m.statBoids.Store(int64(boids))
	m.statUpdates.Add(1)
	m.statUpdateNs.Store(time.Since(start).Nanoseconds())
	m.statDt.Store(dt)
}

// mustConsistent resolves ref and asserts the boid/node invariant
func (m *SwarmManager) mustConsistent(ref core.SwarmRef) *component.SwarmComponent {
	sw, ok := m.swarms.Get(uint32(ref))
	if !ok {
		m.logger.Error("update of unknown swarm", zap.Uint32("swarm", uint32(ref)))
		panic(fmt.Sprintf("swarm: update of unknown swarm %d", ref))
	}
	if !sw.Consistent() {
		m.logger.Error("node vs boid count does not match",
			zap.Uint32("swarm", uint32(ref)),
			zap.Int("boids", len(sw.Boids)),
			zap.Int("nodes", len(sw.Nodes)))
		panic(fmt.Sprintf("swarm %d: node vs boid count does not match (%d boids, %d nodes)", ref, len(sw.Boids), len(sw.Nodes)))
	}
	return sw
}

// target returns the world position of the owning entity's node
func (m *SwarmManager) target(sw *component.SwarmComponent) (vmath.Vec3F, bool) {
	node, ok := m.scene.NodeForEntity(sw.Entity)
	if !ok {
		return vmath.Vec3F{}, false
	}
	return m.scene.WorldPosition(node), true
}

func (m *SwarmManager) scratch(n int) []Pose {
	if cap(m.poses) < n {
		m.poses = make([]Pose, n)
	}
	return m.poses[:n]
}

// flush writes poses to their nodes and propagates them as one batch
func (m *SwarmManager) flush(nodes []core.NodeRef, poses []Pose) {
	if len(nodes) == 0 {
		return
	}
	for i, node := range nodes {
		m.scene.SetPosition(node, poses[i].Pos)
		m.scene.SetOrientation(node, poses[i].Orient)
	}
	m.scene.UpdateTransforms(nodes)
}

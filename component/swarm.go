package component

import (
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/vmath"
)

// Boid is one flocking agent, identified only by its slot in the swarm
type Boid struct {
	Pos vmath.Vec3F
	Vel vmath.Vec3F
}

// SwarmComponent holds per-swarm runtime state
// Boids and Nodes are index aligned; equal length is required before every update
type SwarmComponent struct {
	// Entity is the owning entity whose scene node the swarm targets
	Entity core.Entity

	Boids []Boid
	// Nodes are proxy scene nodes owned by the scene graph, released by the swarm
	Nodes []core.NodeRef

	// Aggregates of the previous completed update, consumed by the next one
	CenterOfMass vmath.Vec3F
	AvgVelocity  vmath.Vec3F
}

// Consistent reports whether boid and node sequences line up
func (s *SwarmComponent) Consistent() bool {
	return len(s.Boids) == len(s.Nodes)
}

// SeedAggregates sets the cached aggregates to the exact mean of the current boids
// No-op on an empty swarm
func (s *SwarmComponent) SeedAggregates() {
	n := len(s.Boids)
	if n == 0 {
		return
	}
	var posSum, velSum vmath.Vec3F
	for i := range s.Boids {
		posSum = vmath.V3FAdd(posSum, s.Boids[i].Pos)
		velSum = vmath.V3FAdd(velSum, s.Boids[i].Vel)
	}
	s.CenterOfMass = vmath.V3FDiv(posSum, float64(n))
	s.AvgVelocity = vmath.V3FDiv(velSum, float64(n))
}

// Reset returns the record to its freshly attached state, keeping the owning entity
// Caller must have released proxies first
func (s *SwarmComponent) Reset() {
	s.Boids = s.Boids[:0]
	s.Nodes = s.Nodes[:0]
	s.CenterOfMass = vmath.Vec3F{}
	s.AvgVelocity = vmath.Vec3F{}
}

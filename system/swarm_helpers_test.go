package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/config"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/vmath"
)

// testConfig returns stock flocking constants with small pools and swarms
func testConfig(boidCount int) config.Config {
	cfg := config.Default()
	cfg.Swarm.BoidCount = boidCount
	cfg.Pools = config.PoolConfig{Entities: 256, Nodes: 256, Meshes: 256, Swarms: 8}
	return cfg
}

type testWorld struct {
	world  *engine.World
	swarms *SwarmManager
	rng    *vmath.FastRand
}

func newTestWorld(t *testing.T, cfg config.Config) *testWorld {
	t.Helper()
	w, err := engine.NewWorld(cfg.Pools)
	require.NoError(t, err)
	rng := vmath.NewFastRand(cfg.Seed)
	m, err := NewSwarmManagerForWorld(w, rng, cfg)
	require.NoError(t, err)
	return &testWorld{world: w, swarms: m, rng: rng}
}

// addOwner creates an entity with a scene node under the root at pos
func (tw *testWorld) addOwner(t *testing.T, pos vmath.Vec3F) (core.Entity, core.NodeRef) {
	t.Helper()
	nodes := tw.world.Nodes
	e, err := tw.world.Entities.CreateEntity("Owner")
	require.NoError(t, err)
	n, err := nodes.CreateNode(e)
	require.NoError(t, err)
	require.NoError(t, nodes.AttachChild(nodes.RootNode(), n))
	nodes.SetPosition(n, pos)
	nodes.UpdateTransforms([]core.NodeRef{n})
	return e, n
}

// addSwarm creates an owner at pos and attaches an empty swarm to it
func (tw *testWorld) addSwarm(t *testing.T, pos vmath.Vec3F) (core.Entity, core.SwarmRef) {
	t.Helper()
	e, _ := tw.addOwner(t, pos)
	ref, err := tw.swarms.CreateComponent(e)
	require.NoError(t, err)
	return e, ref
}

// provisioned creates n swarms at distinct owner positions and provisions them
func (tw *testWorld) provisioned(t *testing.T, n int) []core.SwarmRef {
	t.Helper()
	refs := make([]core.SwarmRef, n)
	for i := range refs {
		_, refs[i] = tw.addSwarm(t, vmath.V3F(float64(i)*20, 0, 0))
	}
	require.NoError(t, tw.swarms.CreateResources(refs))
	return refs
}

// scatter gives every boid a random position and a velocity below maxVel, then reseeds the aggregates
func scatter(sw *component.SwarmComponent, rng *vmath.FastRand, extent, maxVel float64) {
	for i := range sw.Boids {
		sw.Boids[i].Pos = vmath.V3F(
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
			(rng.Float64()*2-1)*extent,
		)
		// Components within maxVel/2 keep the magnitude strictly below maxVel
		v := vmath.V3F(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
		sw.Boids[i].Vel = vmath.V3FScale(v, maxVel/2)
	}
	sw.SeedAggregates()
}

// constSource always yields the same draw
type constSource uint64

func (c constSource) Next() uint64 { return uint64(c) }

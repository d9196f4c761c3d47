package system

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/parameter"
	"github.com/lixenwraith/flock/vmath"
)

func TestSwarmManager_ComponentRecords(t *testing.T) {
	tw := newTestWorld(t, testConfig(4))
	e, ref := tw.addSwarm(t, vmath.Vec3F{})

	got, ok := tw.swarms.ComponentForEntity(e)
	require.True(t, ok)
	assert.Equal(t, ref, got)

	_, err := tw.swarms.CreateComponent(e)
	assert.ErrorIs(t, err, engine.ErrDuplicateComponent)

	sw, ok := tw.swarms.Swarm(ref)
	require.True(t, ok)
	sw.CenterOfMass = vmath.V3F(1, 1, 1)
	tw.swarms.ResetToDefault(ref)
	assert.Equal(t, vmath.Vec3F{}, sw.CenterOfMass)

	tw.swarms.DestroyComponent(ref)
	_, ok = tw.swarms.ComponentForEntity(e)
	assert.False(t, ok)
	assert.Empty(t, tw.swarms.Swarms())
}

func TestSwarmManager_CapacityExhausted(t *testing.T) {
	cfg := testConfig(1)
	cfg.Pools.Swarms = 1
	tw := newTestWorld(t, cfg)
	tw.addSwarm(t, vmath.Vec3F{})

	e, _ := tw.addOwner(t, vmath.Vec3F{})
	_, err := tw.swarms.CreateComponent(e)
	assert.ErrorIs(t, err, engine.ErrPoolExhausted)
}

func TestUpdateSwarms_InvariantPreserved(t *testing.T) {
	tw := newTestWorld(t, testConfig(12))
	refs := tw.provisioned(t, 2)

	for frame := 0; frame < 30; frame++ {
		tw.swarms.UpdateSwarms(refs, 1.0/60)
		for _, ref := range refs {
			sw, _ := tw.swarms.Swarm(ref)
			require.True(t, sw.Consistent())
			require.Len(t, sw.Boids, 12)
		}
	}
}

func TestUpdateSwarms_MismatchPanics(t *testing.T) {
	tw := newTestWorld(t, testConfig(3))
	refs := tw.provisioned(t, 1)

	sw, _ := tw.swarms.Swarm(refs[0])
	sw.Boids = append(sw.Boids, component.Boid{})

	assert.PanicsWithValue(t,
		"swarm 0: node vs boid count does not match (4 boids, 3 nodes)",
		func() { tw.swarms.UpdateSwarms(refs, 1.0/60) })
}

func TestUpdateSwarms_UnknownRefPanics(t *testing.T) {
	tw := newTestWorld(t, testConfig(3))
	assert.Panics(t, func() { tw.swarms.UpdateSwarms([]core.SwarmRef{5}, 1.0/60) })
}

func TestUpdateSwarms_WritesNodeTransforms(t *testing.T) {
	tw := newTestWorld(t, testConfig(6))
	refs := tw.provisioned(t, 1)
	sw, _ := tw.swarms.Swarm(refs[0])
	scatter(sw, vmath.NewFastRand(2), 10, 15)

	batches := tw.world.Nodes.TransformBatches()
	tw.swarms.UpdateSwarms(refs, 1.0/60)
	assert.Equal(t, batches+1, tw.world.Nodes.TransformBatches(), "one propagation batch per swarm")

	for i, node := range sw.Nodes {
		assert.Equal(t, sw.Boids[i].Pos, tw.world.Nodes.WorldPosition(node), "boid %d", i)
		q := tw.world.Nodes.WorldOrientation(node)
		assert.True(t, vmath.QuatIsFinite(q), "boid %d", i)
	}
}

func TestUpdateSwarms_RestingBoidsHaveFiniteOrientation(t *testing.T) {
	tw := newTestWorld(t, testConfig(8))
	refs := tw.provisioned(t, 1)
	sw, _ := tw.swarms.Swarm(refs[0])

	// Every boid rests exactly on its target
	tw.swarms.UpdateSwarms(refs, 1.0/60)
	for i, node := range sw.Nodes {
		q := tw.world.Nodes.WorldOrientation(node)
		require.True(t, vmath.QuatIsFinite(q), "boid %d", i)
		assert.InDelta(t, 1, vmath.QuatNorm(q), 1e-9, "boid %d", i)
	}
}

func TestUpdateSwarms_TwoAgentScenario(t *testing.T) {
	tw := newTestWorld(t, testConfig(2))
	refs := tw.provisioned(t, 1)
	sw, _ := tw.swarms.Swarm(refs[0])

	sw.Boids[0] = component.Boid{Pos: vmath.V3F(0, 0, 0)}
	sw.Boids[1] = component.Boid{Pos: vmath.V3F(10, 0, 0)}
	sw.SeedAggregates()
	before := append([]component.Boid(nil), sw.Boids...)

	dt := 1.0 / 60
	tw.swarms.UpdateSwarms(refs, dt)

	for i, b := range sw.Boids {
		require.True(t, vmath.V3FIsFinite(b.Vel), "boid %d", i)
		mag := vmath.V3FMag(b.Vel)
		assert.Greater(t, mag, 0.0, "boid %d", i)
		assert.Less(t, mag, 15.0, "boid %d", i)
		assert.Equal(t, vmath.V3FAdd(before[i].Pos, vmath.V3FScale(b.Vel, dt)), b.Pos, "boid %d", i)
	}
	// Both drawn toward each other along X
	assert.Greater(t, sw.Boids[0].Vel.X, 0.0)
	assert.Less(t, sw.Boids[1].Vel.X, 0.0)
}

func TestUpdateSwarms_OwnerWithoutNodeSkipsTargeting(t *testing.T) {
	tw := newTestWorld(t, testConfig(2))
	refs := tw.provisioned(t, 1)
	sw, _ := tw.swarms.Swarm(refs[0])

	// Detaching the owner node after provisioning leaves the boids without a target
	owner, ok := tw.world.Nodes.NodeForEntity(sw.Entity)
	require.True(t, ok)
	tw.world.Nodes.DestroyNodeFull(owner)

	sw.Boids[0].Pos = vmath.V3F(50, 0, 0)
	sw.Boids[1].Pos = vmath.V3F(50, 0, 0)
	sw.SeedAggregates()
	tw.swarms.UpdateSwarms(refs, 1.0/60)

	assert.Equal(t, vmath.Vec3F{}, sw.Boids[0].Vel)
}

func TestWorldUpdate_RunsSwarmSystem(t *testing.T) {
	tw := newTestWorld(t, testConfig(4))
	refs := tw.provisioned(t, 2)
	for _, ref := range refs {
		sw, _ := tw.swarms.Swarm(ref)
		scatter(sw, vmath.NewFastRand(uint64(ref)+1), 5, 15)
	}

	tw.world.Update(1.0 / 60)

	updates, ok := tw.world.Status.Ints.Lookup("swarm.updates")
	require.True(t, ok)
	assert.Equal(t, int64(1), updates.Load())
	boids, _ := tw.world.Status.Ints.Lookup("swarm.boids")
	assert.Equal(t, int64(8), boids.Load())
	dt, ok := tw.world.Status.Floats.Lookup("swarm.dt")
	require.True(t, ok)
	assert.Equal(t, 1.0/60, dt.Load())
	assert.Equal(t, int64(1), tw.world.FrameNumber())
}

func TestDirectory_RoutesSwarmLifecycle(t *testing.T) {
	cfg := testConfig(5)
	tw := newTestWorld(t, cfg)
	d := tw.world.Directory
	assert.Contains(t, d.Kinds(), parameter.SwarmComponentKind)

	owner, _ := tw.addOwner(t, vmath.V3F(3, 0, 0))
	nodesBefore := tw.world.Nodes.Count()
	entitiesBefore := tw.world.Entities.Count()

	raw, err := d.Attach(parameter.SwarmComponentKind, owner)
	require.NoError(t, err)
	require.NoError(t, d.Provision(parameter.SwarmComponentKind, owner))

	sw, ok := tw.swarms.Swarm(core.SwarmRef(raw))
	require.True(t, ok)
	assert.Len(t, sw.Boids, 5)
	assert.Equal(t, vmath.V3F(3, 0, 0), sw.Boids[0].Pos, "boids spawn at the owner's world position")

	require.NoError(t, d.Reset(parameter.SwarmComponentKind, owner))
	require.NoError(t, d.Detach(parameter.SwarmComponentKind, owner))

	assert.Equal(t, nodesBefore, tw.world.Nodes.Count())
	assert.Equal(t, entitiesBefore, tw.world.Entities.Count())
	assert.Zero(t, tw.world.Meshes.Count())
	_, ok = tw.swarms.ComponentForEntity(owner)
	assert.False(t, ok)

	err = d.Provision(parameter.SwarmComponentKind, owner)
	assert.True(t, errors.Is(err, engine.ErrNoComponent))
}

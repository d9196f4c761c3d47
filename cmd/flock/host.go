package main

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/lixenwraith/flock/config"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/parameter"
	"github.com/lixenwraith/flock/system"
	"github.com/lixenwraith/flock/vmath"
)

const ownerEntityTag = "SwarmOwner"

// host bundles a world, its swarm manager and the owner entities the swarms follow
type host struct {
	world  *engine.World
	swarms *system.SwarmManager
	rng    *vmath.FastRand

	owners     []core.Entity
	ownerNodes []core.NodeRef
	refs       []core.SwarmRef

	orbitRadius float64
	orbitSpeed  float64
	elapsed     float64
}

// newHost builds a world with n provisioned swarms, owners spaced evenly on the orbit circle
func newHost(cfg config.Config, n int, logger *zap.Logger) (*host, error) {
	world, err := engine.NewWorld(cfg.Pools)
	if err != nil {
		return nil, err
	}

	rng := vmath.NewFastRand(cfg.Seed)
	swarms, err := system.NewSwarmManagerForWorld(world, rng, cfg, system.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	h := &host{
		world:       world,
		swarms:      swarms,
		rng:         rng,
		orbitRadius: cfg.Viewer.OrbitRadius,
		orbitSpeed:  cfg.Viewer.OrbitSpeed,
	}

	for i := 0; i < n; i++ {
		e, err := world.Entities.CreateEntity(ownerEntityTag)
		if err != nil {
			return nil, fmt.Errorf("owner %d: %w", i, err)
		}
		node, err := world.Nodes.CreateNode(e)
		if err != nil {
			return nil, fmt.Errorf("owner %d: %w", i, err)
		}
		if err := world.Nodes.AttachChild(world.Nodes.RootNode(), node); err != nil {
			return nil, fmt.Errorf("owner %d: %w", i, err)
		}
		h.owners = append(h.owners, e)
		h.ownerNodes = append(h.ownerNodes, node)
	}
	h.placeOwners()
	world.Nodes.RebuildTreeAndUpdateTransforms()

	for i, e := range h.owners {
		ref, err := world.Directory.Attach(parameter.SwarmComponentKind, e)
		if err != nil {
			return nil, fmt.Errorf("attach swarm %d: %w", i, err)
		}
		h.refs = append(h.refs, core.SwarmRef(ref))
	}
	if err := world.Directory.Provision(parameter.SwarmComponentKind, h.owners...); err != nil {
		return nil, err
	}

	logger.Info("host ready",
		zap.Int("swarms", n),
		zap.Int("boids_per_swarm", cfg.Swarm.BoidCount),
		zap.Int("nodes", world.Nodes.Count()),
		zap.Uint64("seed", cfg.Seed))
	return h, nil
}

// placeOwners positions owners on the XZ orbit circle at the current elapsed time
func (h *host) placeOwners() {
	n := len(h.ownerNodes)
	for i, node := range h.ownerNodes {
		phase := 2*math.Pi*float64(i)/float64(n) + h.elapsed*h.orbitSpeed
		h.world.Nodes.SetPosition(node, vmath.V3F(
			h.orbitRadius*math.Cos(phase),
			0,
			h.orbitRadius*math.Sin(phase),
		))
	}
	h.world.Nodes.UpdateTransforms(h.ownerNodes)
}

// step advances owners then runs one world frame
func (h *host) step(dt float64) {
	h.world.RunSafe(func() {
		h.elapsed += dt
		h.placeOwners()
		h.world.UpdateLocked(dt)
	})
}

// close releases every swarm and its boid proxies
func (h *host) close() error {
	var err error
	h.world.RunSafe(func() {
		for _, e := range h.owners {
			if derr := h.world.Directory.Detach(parameter.SwarmComponentKind, e); derr != nil && err == nil {
				err = derr
			}
		}
	})
	return err
}

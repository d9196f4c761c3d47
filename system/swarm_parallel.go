package system

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/vmath"
)

// swarmJob is one swarm's input to a parallel step, captured before any goroutine starts
type swarmJob struct {
	sw        *component.SwarmComponent
	target    vmath.Vec3F
	hasTarget bool
	rng       *vmath.FastRand
	// steps is how many times the swarm was listed; repeats run in order on one goroutine
	steps int
}

// UpdateSwarmsParallel steps swarms concurrently, one goroutine per swarm up to GOMAXPROCS
// Each swarm samples neighbors from its own stream, seeded in order of first appearance from the shared source,
// so results depend only on the shared source state and not on scheduling
// A swarm listed more than once is stepped that many times in sequence, as UpdateSwarms does
// Boids within a swarm still run sequentially; node writes and propagation are serialized
// An already cancelled ctx returns before the shared source is drawn; otherwise cancellation is
// observed before each swarm starts and swarms already stepped stay stepped
func (m *SwarmManager) UpdateSwarmsParallel(ctx context.Context, refs []core.SwarmRef, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	jobs := make([]swarmJob, 0, len(refs))
	index := make(map[core.SwarmRef]int, len(refs))
	boids := 0
	for _, ref := range refs {
		sw := m.mustConsistent(ref)
		boids += len(sw.Boids)
		if i, seen := index[ref]; seen {
			jobs[i].steps++
			continue
		}
		target, hasTarget := m.target(sw)
		index[ref] = len(jobs)
		jobs = append(jobs, swarmJob{
			sw:        sw,
			target:    target,
			hasTarget: hasTarget,
			rng:       vmath.NewFastRand(vmath.SplitSeed(m.rng.Next())),
			steps:     1,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			poses := make([]Pose, len(job.sw.Boids))
			for range job.steps {
				m.flocker.Step(job.sw, job.target, job.hasTarget, dt, job.rng, poses)

				m.sceneMu.Lock()
				m.flush(job.sw.Nodes, poses)
				m.sceneMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.statBoids.Store(int64(boids))
	m.statUpdates.Add(1)
	m.statUpdateNs.Store(time.Since(start).Nanoseconds())
	m.statDt.Store(dt)
	return nil
}

package system

import (
	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/config"
	"github.com/lixenwraith/flock/vmath"
)

// boidForward is the local axis a boid proxy points along
var boidForward = vmath.Vec3F{Z: -1}

// Pose is the node transform derived for one boid by a step
type Pose struct {
	Pos    vmath.Vec3F
	Orient vmath.Quat
}

// Flocker runs the per-frame steering and integration of one swarm
// Stateless apart from its constants; all mutable state lives in the swarm record
type Flocker struct {
	cfg config.SwarmConfig
}

// NewFlocker creates a stepper with the given constants
func NewFlocker(cfg config.SwarmConfig) *Flocker {
	return &Flocker{cfg: cfg}
}

// Step advances every boid of sw by dt seconds in array order and fills poses[i] for boid i
// Cohesion and alignment read the aggregates cached by the previous step; separation reads peers in place,
// so boids later in the array see already-moved neighbors. The cached aggregates are replaced at the end
// Targeting applies only when hasTarget is set
// poses must have at least len(sw.Boids) entries
func (f *Flocker) Step(sw *component.SwarmComponent, target vmath.Vec3F, hasTarget bool, dt float64, rng RandomSource, poses []Pose) {
	n := len(sw.Boids)
	if n == 0 {
		return
	}

	c := &f.cfg
	centerOfMass := sw.CenterOfMass
	avgVelocity := sw.AvgVelocity
	minDistSq := c.SeparationDist * c.SeparationDist
	bias := vmath.V3FSplat(c.HeadingBias)

	var posSum, velSum vmath.Vec3F
	for i := range sw.Boids {
		b := &sw.Boids[i]

		// Cohesion: fly toward the center of mass
		toCenter := vmath.V3FSub(centerOfMass, b.Pos)
		if dist := vmath.V3FMag(toCenter); dist > c.Epsilon {
			b.Vel = vmath.V3FAdd(b.Vel, vmath.V3FScale(vmath.V3FDiv(toCenter, dist), dt*c.Accel*c.CohesionWeight))
		}

		// Separation: sampled neighbors, repetition allowed, self draws skipped
		for k := 0; k < c.NeighborSamples; k++ {
			j := int(rng.Next() % uint64(n))
			if j == i {
				continue
			}
			other := sw.Boids[j].Pos
			distSq := vmath.V3FDistSq(other, b.Pos)
			if distSq < minDistSq && distSq > c.Epsilon {
				away := vmath.V3FNormalize(vmath.V3FSub(b.Pos, other))
				b.Vel = vmath.V3FAdd(b.Vel, vmath.V3FScale(away, c.Accel*dt*c.SeparationWeight))
			}
		}

		// Alignment: unguarded, no acceleration factor
		b.Vel = vmath.V3FAdd(b.Vel, vmath.V3FScale(avgVelocity, c.AlignmentWeight*dt))

		// Targeting: self-disables inside the minimum distance
		if hasTarget {
			toTarget := vmath.V3FSub(target, b.Pos)
			if dist := vmath.V3FMag(toTarget); dist > c.Epsilon && dist > c.TargetMinDist {
				b.Vel = vmath.V3FAdd(b.Vel, vmath.V3FScale(vmath.V3FDiv(toTarget, dist), c.Accel*dt*c.TargetWeight))
			}
		}

		posSum = vmath.V3FAdd(posSum, b.Pos)

		b.Vel = vmath.V3FClampMag(b.Vel, c.MaxVelocity)
		velSum = vmath.V3FAdd(velSum, b.Vel)

		b.Pos = vmath.V3FAdd(b.Pos, vmath.V3FScale(b.Vel, dt))

		poses[i] = Pose{
			Pos:    b.Pos,
			Orient: Heading(b.Vel, bias),
		}
	}

	sw.CenterOfMass = vmath.V3FDiv(posSum, float64(n))
	sw.AvgVelocity = vmath.V3FDiv(velSum, float64(n))
}

// Heading orients a proxy's forward axis along vel+bias
// The bias keeps the direction defined for a resting boid; identity if it still degenerates
func Heading(vel, bias vmath.Vec3F) vmath.Quat {
	return vmath.QuatFromTo(boidForward, vmath.V3FNormalize(vmath.V3FAdd(vel, bias)))
}

package system

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lixenwraith/flock/component"
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/engine"
	"github.com/lixenwraith/flock/vmath"
)

// ErrSnapshotMismatch is returned when a snapshot does not fit the swarms it is restored into
var ErrSnapshotMismatch = errors.New("snapshot does not match swarms")

// snapshotEncMode uses Core Deterministic Encoding so equal state always yields equal bytes
var snapshotEncMode cbor.EncMode

func init() {
	var err error
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("swarm: CBOR encoder initialization failed: " + err.Error())
	}
}

// Snapshot is the restorable simulation state of a set of swarms
// Proxies are not part of it; restore targets swarms already provisioned with matching counts
type Snapshot struct {
	// RandState is the shared random source position, present only for stateful sources
	RandState    uint64          `cbor:"1,keyasint,omitempty"`
	HasRandState bool            `cbor:"2,keyasint,omitempty"`
	Swarms       []SwarmSnapshot `cbor:"3,keyasint"`
}

// SwarmSnapshot is one swarm's boids and cached aggregates
type SwarmSnapshot struct {
	Entity       core.Entity      `cbor:"1,keyasint"`
	Boids        []component.Boid `cbor:"2,keyasint"`
	CenterOfMass vmath.Vec3F      `cbor:"3,keyasint"`
	AvgVelocity  vmath.Vec3F      `cbor:"4,keyasint"`
}

// Snapshot encodes the state of refs, in order, plus the random source state when it is stateful
// Replaying the same frames after Restore reproduces the same trajectories
func (m *SwarmManager) Snapshot(refs []core.SwarmRef) ([]byte, error) {
	snap := Snapshot{Swarms: make([]SwarmSnapshot, 0, len(refs))}
	if src, ok := m.rng.(StatefulSource); ok {
		snap.RandState = src.State()
		snap.HasRandState = true
	}

	for _, ref := range refs {
		sw, ok := m.swarms.Get(uint32(ref))
		if !ok {
			return nil, fmt.Errorf("snapshot swarm %d: %w", ref, engine.ErrInvalidRef)
		}
		boids := make([]component.Boid, len(sw.Boids))
		copy(boids, sw.Boids)
		snap.Swarms = append(snap.Swarms, SwarmSnapshot{
			Entity:       sw.Entity,
			Boids:        boids,
			CenterOfMass: sw.CenterOfMass,
			AvgVelocity:  sw.AvgVelocity,
		})
	}

	data, err := snapshotEncMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Restore loads a snapshot into refs, in order
// Every swarm must belong to the same entity and hold the same boid count as when captured;
// nothing is modified unless all of them match. Restored poses are pushed to the nodes
func (m *SwarmManager) Restore(data []byte, refs []core.SwarmRef) error {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Swarms) != len(refs) {
		return fmt.Errorf("%w: %d swarms captured, %d given", ErrSnapshotMismatch, len(snap.Swarms), len(refs))
	}

	targets := make([]*component.SwarmComponent, len(refs))
	for i, ref := range refs {
		sw, ok := m.swarms.Get(uint32(ref))
		if !ok {
			return fmt.Errorf("restore swarm %d: %w", ref, engine.ErrInvalidRef)
		}
		s := &snap.Swarms[i]
		if s.Entity != sw.Entity {
			return fmt.Errorf("%w: swarm %d owned by entity %d, snapshot by %d", ErrSnapshotMismatch, ref, sw.Entity, s.Entity)
		}
		if len(s.Boids) != len(sw.Nodes) {
			return fmt.Errorf("%w: swarm %d has %d nodes, snapshot %d boids", ErrSnapshotMismatch, ref, len(sw.Nodes), len(s.Boids))
		}
		if err := m.checkBoids(s); err != nil {
			return fmt.Errorf("%w: swarm %d: %v", ErrSnapshotMismatch, ref, err)
		}
		targets[i] = sw
	}

	bias := vmath.V3FSplat(m.cfg.HeadingBias)
	for i, sw := range targets {
		s := &snap.Swarms[i]
		sw.Boids = append(sw.Boids[:0], s.Boids...)
		sw.CenterOfMass = s.CenterOfMass
		sw.AvgVelocity = s.AvgVelocity

		poses := m.scratch(len(sw.Boids))
		for j, b := range sw.Boids {
			poses[j] = Pose{Pos: b.Pos, Orient: Heading(b.Vel, bias)}
		}
		m.flush(sw.Nodes, poses)
	}

	if src, ok := m.rng.(StatefulSource); ok && snap.HasRandState {
		src.SetState(snap.RandState)
	}
	return nil
}

// restoreSpeedSlack absorbs rounding left by the speed clamp
const restoreSpeedSlack = 1e-9

// checkBoids rejects state no step could have produced
func (m *SwarmManager) checkBoids(s *SwarmSnapshot) error {
	if !vmath.V3FIsFinite(s.CenterOfMass) || !vmath.V3FIsFinite(s.AvgVelocity) {
		return errors.New("non-finite aggregate")
	}
	limit := m.cfg.MaxVelocity * (1 + restoreSpeedSlack)
	for j, b := range s.Boids {
		if !vmath.V3FIsFinite(b.Pos) || !vmath.V3FIsFinite(b.Vel) {
			return fmt.Errorf("boid %d non-finite", j)
		}
		if speed := vmath.V3FMag(b.Vel); speed > limit {
			return fmt.Errorf("boid %d speed %g over limit %g", j, speed, m.cfg.MaxVelocity)
		}
	}
	return nil
}

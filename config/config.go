// Package config loads flock configuration from a single YAML file.
//
// Every field has a default taken from the parameter package; a file only
// needs to name what it overrides. Unknown keys are rejected so typos fail
// loudly instead of silently running on defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/flock/parameter"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config is the master configuration for a flock host.
type Config struct {
	// Seed initializes the shared random source. Zero is remapped to 1.
	Seed uint64 `yaml:"seed"`

	// Swarm holds flocking and provisioning constants.
	Swarm SwarmConfig `yaml:"swarm"`

	// Pools sizes the host entity/node/mesh/swarm pools.
	Pools PoolConfig `yaml:"pools"`

	// Viewer configures the terminal viewer.
	Viewer ViewerConfig `yaml:"viewer"`
}

// SwarmConfig holds every tunable of the flocking step and of provisioning.
type SwarmConfig struct {
	// BoidCount is the number of agents created per swarm.
	BoidCount int `yaml:"boid_count"`

	// BoidSize is the uniform node extent of each agent proxy.
	BoidSize float64 `yaml:"boid_size"`

	// BoidMesh is the default appearance identifier of agent meshes.
	BoidMesh string `yaml:"boid_mesh"`

	Accel            float64 `yaml:"accel"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	SeparationWeight float64 `yaml:"separation_weight"`
	SeparationDist   float64 `yaml:"separation_dist"`
	NeighborSamples  int     `yaml:"neighbor_samples"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	TargetWeight     float64 `yaml:"target_weight"`
	TargetMinDist    float64 `yaml:"target_min_dist"`
	MaxVelocity      float64 `yaml:"max_velocity"`
	Epsilon          float64 `yaml:"epsilon"`
	HeadingBias      float64 `yaml:"heading_bias"`
}

// PoolConfig sizes the fixed host pools. Allocation beyond capacity fails.
type PoolConfig struct {
	Entities int `yaml:"entities"`
	Nodes    int `yaml:"nodes"`
	Meshes   int `yaml:"meshes"`
	Swarms   int `yaml:"swarms"`
}

// ViewerConfig configures the terminal viewer host.
type ViewerConfig struct {
	FPS         int     `yaml:"fps"`
	Swarms      int     `yaml:"swarms"`
	OrbitRadius float64 `yaml:"orbit_radius"`
	OrbitSpeed  float64 `yaml:"orbit_speed"`
	WorldExtent float64 `yaml:"world_extent"`
}

// Default returns the configuration built from parameter constants.
func Default() Config {
	return Config{
		Seed:  1,
		Swarm: DefaultSwarm(),
		Pools: PoolConfig{
			Entities: parameter.PoolEntityCapacity,
			Nodes:    parameter.PoolNodeCapacity,
			Meshes:   parameter.PoolMeshCapacity,
			Swarms:   parameter.PoolSwarmCapacity,
		},
		Viewer: ViewerConfig{
			FPS:         parameter.ViewerTargetFPS,
			Swarms:      parameter.ViewerSwarmCount,
			OrbitRadius: parameter.ViewerOrbitRadiusFloat,
			OrbitSpeed:  parameter.ViewerOrbitSpeedFloat,
			WorldExtent: parameter.ViewerWorldExtentFloat,
		},
	}
}

// DefaultSwarm returns the stock flocking constants.
func DefaultSwarm() SwarmConfig {
	return SwarmConfig{
		BoidCount:        parameter.SwarmBoidCount,
		BoidSize:         parameter.SwarmBoidSizeFloat,
		BoidMesh:         parameter.SwarmBoidMeshName,
		Accel:            parameter.SwarmBoidAccelFloat,
		CohesionWeight:   parameter.SwarmCohesionWeightFloat,
		SeparationWeight: parameter.SwarmSeparationWeightFloat,
		SeparationDist:   parameter.SwarmSeparationDistFloat,
		NeighborSamples:  parameter.SwarmNeighborSamples,
		AlignmentWeight:  parameter.SwarmAlignmentWeightFloat,
		TargetWeight:     parameter.SwarmTargetWeightFloat,
		TargetMinDist:    parameter.SwarmTargetMinDistFloat,
		MaxVelocity:      parameter.SwarmMaxVelocityFloat,
		Epsilon:          parameter.SwarmEpsilonFloat,
		HeadingBias:      parameter.SwarmHeadingBiasFloat,
	}
}

// Load reads the YAML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
// An empty document yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise surface as NaN or a stalled flock.
func (c Config) Validate() error {
	if err := c.Swarm.Validate(); err != nil {
		return err
	}

	p := c.Pools
	for _, f := range []struct {
		name string
		v    int
	}{
		{"pools.entities", p.Entities},
		{"pools.nodes", p.Nodes},
		{"pools.meshes", p.Meshes},
		{"pools.swarms", p.Swarms},
	} {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, f.name, f.v)
		}
	}

	if c.Viewer.FPS <= 0 {
		return fmt.Errorf("%w: viewer.fps must be positive, got %d", ErrInvalidConfig, c.Viewer.FPS)
	}
	if c.Viewer.Swarms < 0 {
		return fmt.Errorf("%w: viewer.swarms must not be negative, got %d", ErrInvalidConfig, c.Viewer.Swarms)
	}
	if c.Viewer.WorldExtent <= 0 {
		return fmt.Errorf("%w: viewer.world_extent must be positive, got %g", ErrInvalidConfig, c.Viewer.WorldExtent)
	}
	return nil
}

// Validate checks the flocking constants.
func (s SwarmConfig) Validate() error {
	if s.BoidCount < 0 {
		return fmt.Errorf("%w: swarm.boid_count must not be negative, got %d", ErrInvalidConfig, s.BoidCount)
	}
	if s.NeighborSamples < 0 {
		return fmt.Errorf("%w: swarm.neighbor_samples must not be negative, got %d", ErrInvalidConfig, s.NeighborSamples)
	}
	if s.MaxVelocity <= 0 {
		return fmt.Errorf("%w: swarm.max_velocity must be positive, got %g", ErrInvalidConfig, s.MaxVelocity)
	}
	if s.Epsilon <= 0 {
		return fmt.Errorf("%w: swarm.epsilon must be positive, got %g", ErrInvalidConfig, s.Epsilon)
	}
	if s.BoidSize <= 0 {
		return fmt.Errorf("%w: swarm.boid_size must be positive, got %g", ErrInvalidConfig, s.BoidSize)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"swarm.accel", s.Accel},
		{"swarm.cohesion_weight", s.CohesionWeight},
		{"swarm.separation_weight", s.SeparationWeight},
		{"swarm.separation_dist", s.SeparationDist},
		{"swarm.alignment_weight", s.AlignmentWeight},
		{"swarm.target_weight", s.TargetWeight},
		{"swarm.target_min_dist", s.TargetMinDist},
		{"swarm.heading_bias", s.HeadingBias},
	} {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidConfig, f.name, f.v)
		}
	}
	return nil
}

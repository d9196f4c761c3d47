package parameter

// Swarm Provisioning
const (
	// SwarmBoidCount is agents spawned per swarm by one resource creation pass
	SwarmBoidCount = 1024

	// SwarmBoidEntityTag names boid proxy entities in the entity pool
	SwarmBoidEntityTag = "Boid"

	// SwarmBoidMeshName is the default appearance assigned to boid meshes
	SwarmBoidMeshName = "monkey"

	// SwarmBoidSizeFloat is the uniform visual extent of each boid node
	SwarmBoidSizeFloat = 0.25

	// SwarmComponentKind is the directory type tag of the swarm manager
	SwarmComponentKind = "Swarm"
)

// Swarm Flocking
const (
	// SwarmBoidAccelFloat is the shared acceleration of cohesion, separation and targeting (units/sec²)
	SwarmBoidAccelFloat = 10.0

	// SwarmCohesionWeightFloat scales the pull toward the cached center of mass
	SwarmCohesionWeightFloat = 0.8

	// SwarmSeparationWeightFloat scales the push away from close neighbors
	SwarmSeparationWeightFloat = 2.0

	// SwarmSeparationDistFloat is the neighbor distance below which separation applies
	// Compared squared against the neighbor distance
	SwarmSeparationDistFloat = 4.0

	// SwarmNeighborSamples is random neighbor draws per boid per frame, repetition allowed
	SwarmNeighborSamples = 10

	// SwarmAlignmentWeightFloat scales the cached average velocity, no acceleration factor
	SwarmAlignmentWeightFloat = 0.01

	// SwarmTargetWeightFloat scales the pull toward the owning node
	SwarmTargetWeightFloat = 0.9

	// SwarmTargetMinDistFloat disables targeting inside this radius to avoid jitter at the target
	SwarmTargetMinDistFloat = 2.0

	// SwarmMaxVelocityFloat caps boid speed (units/sec)
	SwarmMaxVelocityFloat = 15.0

	// SwarmEpsilonFloat is the minimum vector length accepted before normalizing
	SwarmEpsilonFloat = 1e-5

	// SwarmHeadingBiasFloat is added per component to velocity before deriving orientation
	// Keeps the heading defined when velocity is exactly zero
	SwarmHeadingBiasFloat = 0.01
)

// Host Pools
const (
	// PoolEntityCapacity bounds live entities in the host entity pool
	PoolEntityCapacity = 1 << 16

	// PoolNodeCapacity bounds live scene graph nodes
	PoolNodeCapacity = 1 << 16

	// PoolMeshCapacity bounds live mesh proxies
	PoolMeshCapacity = 1 << 16

	// PoolSwarmCapacity bounds live swarm records
	PoolSwarmCapacity = 64
)

// Viewer
const (
	// ViewerTargetFPS is the frame rate of the terminal viewer loop
	ViewerTargetFPS = 30

	// ViewerSwarmCount is swarms spawned by the viewer
	ViewerSwarmCount = 2

	// ViewerOrbitRadiusFloat is the radius of the owning node's orbit (world units)
	ViewerOrbitRadiusFloat = 30.0

	// ViewerOrbitSpeedFloat is the angular speed of the owning node orbit (rad/sec)
	ViewerOrbitSpeedFloat = 0.4

	// ViewerWorldExtentFloat is the half-width of the world region mapped onto the screen
	ViewerWorldExtentFloat = 45.0
)

// Scene
const (
	// RootEntityTag names the entity owning the world root node
	RootEntityTag = "Root"

	// DefaultMeshName is the appearance a mesh gets from ResetToDefault
	DefaultMeshName = "cube"
)

package core

// Entity is an opaque entity identifier issued by the entity pool
// Zero is never issued and marks "no entity"
type Entity uint64

// NodeRef is an opaque handle into the scene graph node pool
type NodeRef uint32

// MeshRef is an opaque handle into the mesh pool
type MeshRef uint32

// SwarmRef is an opaque handle into the swarm record pool
type SwarmRef uint32

// InvalidRef marks an unset handle of any kind
const InvalidRef = ^uint32(0)

const (
	InvalidNode  = NodeRef(InvalidRef)
	InvalidMesh  = MeshRef(InvalidRef)
	InvalidSwarm = SwarmRef(InvalidRef)
)

// Valid reports whether the handle was issued by a pool
func (r NodeRef) Valid() bool { return uint32(r) != InvalidRef }

// Valid reports whether the handle was issued by a pool
func (r MeshRef) Valid() bool { return uint32(r) != InvalidRef }

// Valid reports whether the handle was issued by a pool
func (r SwarmRef) Valid() bool { return uint32(r) != InvalidRef }

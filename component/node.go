package component

import (
	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/vmath"
)

// NodeComponent is one scene graph node
// Local fields are written by systems, world fields by transform propagation
type NodeComponent struct {
	Entity   core.Entity
	Parent   core.NodeRef
	Children []core.NodeRef

	// Local transform relative to Parent
	Position    vmath.Vec3F
	Orientation vmath.Quat
	Size        vmath.Vec3F

	// Propagated world transform
	WorldPosition    vmath.Vec3F
	WorldOrientation vmath.Quat
}

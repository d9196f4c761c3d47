package component

import (
	"github.com/lixenwraith/flock/core"
)

// MeshComponent is a visual proxy bound to an entity
type MeshComponent struct {
	Entity core.Entity
	// Name selects the appearance resource
	Name string
	// Loaded is set once the batched resource creation has run for this mesh
	Loaded bool
}

package parameter

// System Execution Priorities (lower runs first)
const (
	// PrioritySwarm runs after any system that moves swarm owners within the frame
	PrioritySwarm = 100
)

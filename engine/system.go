package engine

// System is a per-frame participant of the host loop
type System interface {
	Name() string
	// Priority orders systems within a frame, lower values run first
	Priority() int
	// Update advances the system by dt seconds, must complete synchronously
	Update(dt float64)
}

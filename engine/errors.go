package engine

import "errors"

var (
	// ErrPoolExhausted is returned when a fixed-capacity pool has no free slot
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrInvalidRef is returned for handles that are unset or already released
	ErrInvalidRef = errors.New("invalid reference")

	// ErrDuplicateComponent is returned when an entity already owns a component of the kind
	ErrDuplicateComponent = errors.New("component already exists for entity")

	// ErrUnknownKind is returned by the directory for unregistered type tags
	ErrUnknownKind = errors.New("unknown component kind")

	// ErrNoComponent is returned by the directory when an entity lacks the requested component
	ErrNoComponent = errors.New("entity has no component of kind")
)

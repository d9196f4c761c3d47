package engine

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/flock/core"
)

// Lifecycle is the per-kind contract a component manager exposes to the directory
// R is the manager's own handle type
type Lifecycle[R ~uint32] interface {
	CreateComponent(e core.Entity) (R, error)
	DestroyComponent(ref R)
	CreateResources(refs []R) error
	DestroyResources(refs []R)
	ComponentForEntity(e core.Entity) (R, bool)
	ResetToDefault(ref R)
}

// ComponentManager is the type-erased view the directory dispatches through
type ComponentManager interface {
	Kind() string
	CreateComponent(e core.Entity) (uint32, error)
	DestroyComponent(ref uint32)
	CreateResources(refs []uint32) error
	DestroyResources(refs []uint32)
	ComponentForEntity(e core.Entity) (uint32, bool)
	ResetToDefault(ref uint32)
}

// erased adapts a typed Lifecycle to ComponentManager
type erased[R ~uint32] struct {
	kind string
	m    Lifecycle[R]
}

func (a erased[R]) Kind() string { return a.kind }

func (a erased[R]) CreateComponent(e core.Entity) (uint32, error) {
	ref, err := a.m.CreateComponent(e)
	return uint32(ref), err
}

func (a erased[R]) DestroyComponent(ref uint32) { a.m.DestroyComponent(R(ref)) }

func (a erased[R]) CreateResources(refs []uint32) error { return a.m.CreateResources(typed[R](refs)) }

func (a erased[R]) DestroyResources(refs []uint32) { a.m.DestroyResources(typed[R](refs)) }

func (a erased[R]) ComponentForEntity(e core.Entity) (uint32, bool) {
	ref, ok := a.m.ComponentForEntity(e)
	return uint32(ref), ok
}

func (a erased[R]) ResetToDefault(ref uint32) { a.m.ResetToDefault(R(ref)) }

func typed[R ~uint32](refs []uint32) []R {
	out := make([]R, len(refs))
	for i, r := range refs {
		out[i] = R(r)
	}
	return out
}

// Directory routes lifecycle events to component managers by kind tag
// Registration order is preserved for ordered bulk operations
type Directory struct {
	mu       sync.RWMutex
	managers map[string]ComponentManager
	ordered  []ComponentManager
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		managers: make(map[string]ComponentManager),
	}
}

// Register adds a typed manager under kind
func Register[R ~uint32](d *Directory, kind string, m Lifecycle[R]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.managers[kind]; exists {
		return fmt.Errorf("register %q: %w", kind, ErrDuplicateComponent)
	}
	entry := erased[R]{kind: kind, m: m}
	d.managers[kind] = entry
	d.ordered = append(d.ordered, entry)
	return nil
}

// Manager returns the manager registered under kind
func (d *Directory) Manager(kind string) (ComponentManager, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.managers[kind]
	return m, ok
}

// Kinds returns registered tags in registration order
func (d *Directory) Kinds() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	kinds := make([]string, len(d.ordered))
	for i, m := range d.ordered {
		kinds[i] = m.Kind()
	}
	return kinds
}

// Attach creates a component of kind on e
func (d *Directory) Attach(kind string, e core.Entity) (uint32, error) {
	m, err := d.lookup(kind)
	if err != nil {
		return 0, err
	}
	return m.CreateComponent(e)
}

// Provision creates resources for the kind's components on the given entities in one batch
func (d *Directory) Provision(kind string, entities ...core.Entity) error {
	m, refs, err := d.resolve(kind, entities)
	if err != nil {
		return err
	}
	return m.CreateResources(refs)
}

// Release destroys resources for the kind's components on the given entities
func (d *Directory) Release(kind string, entities ...core.Entity) error {
	m, refs, err := d.resolve(kind, entities)
	if err != nil {
		return err
	}
	m.DestroyResources(refs)
	return nil
}

// Reset restores the kind's component on e to defaults
func (d *Directory) Reset(kind string, e core.Entity) error {
	m, refs, err := d.resolve(kind, []core.Entity{e})
	if err != nil {
		return err
	}
	m.ResetToDefault(refs[0])
	return nil
}

// Detach releases resources then destroys the kind's component on e
func (d *Directory) Detach(kind string, e core.Entity) error {
	m, refs, err := d.resolve(kind, []core.Entity{e})
	if err != nil {
		return err
	}
	m.DestroyResources(refs)
	m.DestroyComponent(refs[0])
	return nil
}

func (d *Directory) lookup(kind string) (ComponentManager, error) {
	m, ok := d.Manager(kind)
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	return m, nil
}

func (d *Directory) resolve(kind string, entities []core.Entity) (ComponentManager, []uint32, error) {
	m, err := d.lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	refs := make([]uint32, 0, len(entities))
	for _, e := range entities {
		ref, ok := m.ComponentForEntity(e)
		if !ok {
			return nil, nil, fmt.Errorf("%q on entity %d: %w", kind, e, ErrNoComponent)
		}
		refs = append(refs, ref)
	}
	return m, refs, nil
}

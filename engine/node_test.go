package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lixenwraith/flock/core"
	"github.com/lixenwraith/flock/vmath"
)

func newTestScene(t *testing.T, capacity int) (*EntityManager, *NodeManager, *MeshManager) {
	t.Helper()
	entities := NewEntityManager(capacity)
	nodes, err := NewNodeManager(entities, capacity)
	if err != nil {
		t.Fatal(err)
	}
	meshes := NewMeshManager(capacity)
	nodes.OnDestroyEntity(meshes.DestroyForEntity)
	return entities, nodes, meshes
}

func spawnNode(t *testing.T, entities *EntityManager, nodes *NodeManager, parent core.NodeRef) (core.Entity, core.NodeRef) {
	t.Helper()
	e, err := entities.CreateEntity("test")
	if err != nil {
		t.Fatal(err)
	}
	ref, err := nodes.CreateNode(e)
	if err != nil {
		t.Fatal(err)
	}
	if err := nodes.AttachChild(parent, ref); err != nil {
		t.Fatal(err)
	}
	return e, ref
}

func TestNodeManager_RootExists(t *testing.T) {
	entities, nodes, _ := newTestScene(t, 4)
	if !nodes.RootNode().Valid() {
		t.Fatal("root not created")
	}
	if nodes.Count() != 1 || entities.Count() != 1 {
		t.Errorf("root should hold one node and one entity, got %d/%d", nodes.Count(), entities.Count())
	}
	nodes.DestroyNodeFull(nodes.RootNode())
	if nodes.Count() != 1 {
		t.Error("root was destroyed")
	}
}

func TestNodeManager_Defaults(t *testing.T) {
	entities, nodes, _ := newTestScene(t, 4)
	e, ref := spawnNode(t, entities, nodes, nodes.RootNode())

	if got, ok := nodes.NodeForEntity(e); !ok || got != ref {
		t.Errorf("NodeForEntity = %d,%v", got, ok)
	}
	n, ok := nodes.Node(ref)
	if !ok {
		t.Fatal("node not live")
	}
	if n.Orientation != vmath.QuatIdentity {
		t.Error("new node orientation not identity")
	}
	if n.Size != vmath.V3FSplat(1) {
		t.Error("new node size not unit")
	}
	if _, err := nodes.CreateNode(e); !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("second node on entity: got %v", err)
	}
}

func TestNodeManager_TransformPropagation(t *testing.T) {
	entities, nodes, _ := newTestScene(t, 8)
	_, parent := spawnNode(t, entities, nodes, nodes.RootNode())
	_, child := spawnNode(t, entities, nodes, parent)

	nodes.SetPosition(parent, vmath.V3F(10, 0, 0))
	nodes.SetOrientation(parent, vmath.QuatAxisAngle(vmath.V3F(0, 1, 0), math.Pi/2))
	nodes.SetPosition(child, vmath.V3F(1, 0, 0))

	// Nothing moves until propagation
	if nodes.WorldPosition(child) != (vmath.Vec3F{}) {
		t.Fatal("world transform refreshed without propagation")
	}

	nodes.RebuildTreeAndUpdateTransforms()
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(vmath.V3F(10, 0, -1), nodes.WorldPosition(child), approx); diff != "" {
		t.Errorf("child world position (-want +got):\n%s", diff)
	}

	nodes.SetPosition(parent, vmath.V3F(0, 5, 0))
	nodes.UpdateTransforms([]core.NodeRef{parent})
	if diff := cmp.Diff(vmath.V3F(0, 5, -1), nodes.WorldPosition(child), approx); diff != "" {
		t.Errorf("subtree not propagated (-want +got):\n%s", diff)
	}
	if nodes.Rebuilds() != 1 || nodes.TransformBatches() != 1 {
		t.Errorf("Rebuilds=%d TransformBatches=%d, want 1/1", nodes.Rebuilds(), nodes.TransformBatches())
	}
}

func TestNodeManager_AttachCycleRejected(t *testing.T) {
	entities, nodes, _ := newTestScene(t, 8)
	_, a := spawnNode(t, entities, nodes, nodes.RootNode())
	_, b := spawnNode(t, entities, nodes, a)

	if err := nodes.AttachChild(b, a); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("cycle attach: got %v", err)
	}
	if err := nodes.AttachChild(a, core.InvalidNode); !errors.Is(err, ErrInvalidRef) {
		t.Errorf("invalid child: got %v", err)
	}
}

func TestNodeManager_DestroyNodeFullCascades(t *testing.T) {
	entities, nodes, meshes := newTestScene(t, 8)
	pe, parent := spawnNode(t, entities, nodes, nodes.RootNode())
	ce, _ := spawnNode(t, entities, nodes, parent)
	if _, err := meshes.CreateMesh(ce); err != nil {
		t.Fatal(err)
	}

	nodes.DestroyNodeFull(parent)

	if nodes.Count() != 1 {
		t.Errorf("nodes left = %d, want root only", nodes.Count())
	}
	if entities.Alive(pe) || entities.Alive(ce) {
		t.Error("subtree entities still alive")
	}
	if meshes.Count() != 0 {
		t.Errorf("meshes left = %d, want 0", meshes.Count())
	}
	root, _ := nodes.Node(nodes.RootNode())
	if len(root.Children) != 0 {
		t.Errorf("root still lists children %v", root.Children)
	}
}

func TestMeshManager_Lifecycle(t *testing.T) {
	entities, _, meshes := newTestScene(t, 4)
	e, _ := entities.CreateEntity("m")

	ref, err := meshes.CreateMesh(e)
	if err != nil {
		t.Fatal(err)
	}
	meshes.ResetToDefault(ref)
	meshes.SetMeshName(ref, "monkey")
	meshes.CreateResources([]core.MeshRef{ref, core.InvalidMesh})

	m, ok := meshes.Mesh(ref)
	if !ok || m.Name != "monkey" || !m.Loaded {
		t.Errorf("mesh = %+v,%v", m, ok)
	}
	if meshes.Batches() != 1 {
		t.Errorf("Batches = %d, want 1", meshes.Batches())
	}

	meshes.DestroyForEntity(e)
	if _, ok := meshes.MeshForEntity(e); ok {
		t.Error("mesh still bound after destroy")
	}
}

package scene

import (
	"context"
	"sync"

	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/pkg/wavefront"
)

// MeshNode places a model in the scene with a material
type MeshNode struct {
	Name     string
	Material *Material

	mu        sync.RWMutex
	model     *assets.ModelAsset
	triangles int
	lo, hi    wavefront.Vec3
	radius    float32
	revision  int
}

// NewMeshNode creates a node drawing model and registers it as a user
func NewMeshNode(name string, model *assets.ModelAsset, material *Material) *MeshNode {
	n := &MeshNode{Name: name, Material: material, model: model}
	model.AddUser(n)
	n.refresh()
	return n
}

func (n *MeshNode) OnAssetResync(ctx context.Context, a assets.Asset) error {
	n.refresh()
	return nil
}

func (n *MeshNode) refresh() {
	n.mu.Lock()
	defer n.mu.Unlock()

	mesh := n.model.Mesh()
	if mesh == nil {
		return
	}
	n.triangles = len(mesh.Triangles)
	n.lo, n.hi = mesh.Bounds()
	n.radius = mesh.Radius()
	n.revision++
}

// Triangles returns the cached triangle count
func (n *MeshNode) Triangles() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.triangles
}

// Bounds returns the cached axis-aligned bounds and bounding radius
func (n *MeshNode) Bounds() (lo, hi wavefront.Vec3, radius float32) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lo, n.hi, n.radius
}

func (n *MeshNode) Revision() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.revision
}

// Detach unregisters the node from its model
func (n *MeshNode) Detach() {
	n.model.RemoveUser(n)
}

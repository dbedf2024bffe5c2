package services

import (
	"context"
	"fmt"
	"time"

	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/glsl"
	"github.com/joshuaeyu/plum/pkg/wavefront"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// InspectService loads a file as an asset without registering it and
// describes its payload
type InspectService struct {
	ws       *workspace.Workspace
	loader   *assets.Loader
	manifest ports.ManifestRepository
}

func NewInspectService(ws *workspace.Workspace, loader *assets.Loader, manifest ports.ManifestRepository) *InspectService {
	return &InspectService{ws: ws, loader: loader, manifest: manifest}
}

// ImageDetails describes a decoded image
type ImageDetails struct {
	Width  int
	Height int
	Format string
}

// ModelDetails describes parsed geometry
type ModelDetails struct {
	Positions int
	Normals   int
	Texcoords int
	Triangles int
	Objects   []string
	Materials []string
	Min, Max  wavefront.Vec3
	Radius    float32
}

// ShaderDetails describes a scanned shader
type ShaderDetails struct {
	Info   *glsl.Source
	Source string
}

// InspectResponse describes one file
type InspectResponse struct {
	Path    string // Workspace-relative when inside the workspace
	Kind    domain.Kind
	ModTime time.Time
	Size    int64
	Tracked bool
	Hot     bool

	Image  *ImageDetails
	Model  *ModelDetails
	Shader *ShaderDetails
}

func (s *InspectService) Execute(ctx context.Context, path string) (*InspectResponse, error) {
	resp := &InspectResponse{Path: path}
	if rel, err := s.ws.Rel(path); err == nil {
		resp.Path = rel
		path = s.ws.Abs(rel)
		if rec, err := s.manifest.Get(ctx, rel); err == nil {
			resp.Tracked = true
			resp.Hot = rec.HotReload
		}
	}

	file := s.loader.Open(path)
	kind, err := s.loader.Detect(file)
	if err != nil {
		return nil, err
	}
	a, err := s.loader.Build(file, kind)
	if err != nil {
		return nil, err
	}
	if err := a.Resync(ctx); err != nil {
		return nil, err
	}

	resp.Kind = a.Kind()
	resp.ModTime, resp.Size = a.File().Baseline()

	switch a := a.(type) {
	case *assets.ImageAsset:
		w, h := a.Size()
		resp.Image = &ImageDetails{Width: w, Height: h, Format: a.Format()}
	case *assets.ModelAsset:
		mesh := a.Mesh()
		lo, hi := mesh.Bounds()
		resp.Model = &ModelDetails{
			Positions: len(mesh.Positions),
			Normals:   len(mesh.Normals),
			Texcoords: len(mesh.Texcoords),
			Triangles: len(mesh.Triangles),
			Objects:   mesh.Objects,
			Materials: mesh.Materials,
			Min:       lo,
			Max:       hi,
			Radius:    mesh.Radius(),
		}
	case *assets.ShaderAsset:
		resp.Shader = &ShaderDetails{Info: a.Info(), Source: a.Source()}
	default:
		return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedKind)
	}

	return resp, nil
}

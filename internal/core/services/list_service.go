package services

import (
	"context"
	"fmt"

	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// ListService reports tracked assets and whether they are stale
type ListService struct {
	ws       *workspace.Workspace
	manager  *assets.Manager
	manifest ports.ManifestRepository
}

// NewListService creates a new list service
func NewListService(ws *workspace.Workspace, m *assets.Manager, manifest ports.ManifestRepository) *ListService {
	return &ListService{
		ws:       ws,
		manager:  m,
		manifest: manifest,
	}
}

// ListRequest represents a request to list tracked assets
type ListRequest struct {
	Kind      domain.Kind // Filter by kind (optional)
	HotOnly   bool
	StaleOnly bool
}

// AssetStatus is a manifest record plus its live registry state
type AssetStatus struct {
	domain.AssetRecord
	Registered bool
	Stale      bool
	Users      int
}

// ListResponse represents the response from listing assets
type ListResponse struct {
	Assets []AssetStatus
	Total  int
	Stale  int
}

// Execute lists tracked assets sorted by path
func (s *ListService) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	records, err := s.manifest.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	resp := &ListResponse{}
	for _, rec := range records {
		if req.Kind != "" && rec.Kind != req.Kind {
			continue
		}
		if req.HotOnly && !rec.HotReload {
			continue
		}

		status := AssetStatus{AssetRecord: rec}
		if a, ok := s.manager.Get(s.ws.Abs(rec.Path)); ok {
			status.Registered = true
			status.Stale = a.NeedsResync()
			status.Users = a.Users()
		}

		if req.StaleOnly && !status.Stale {
			continue
		}
		if status.Stale {
			resp.Stale++
		}
		resp.Assets = append(resp.Assets, status)
	}
	resp.Total = len(resp.Assets)

	return resp, nil
}

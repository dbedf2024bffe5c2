package services

import (
	"context"
	"fmt"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// HistoryService reads the sync journal
type HistoryService struct {
	ws      *workspace.Workspace
	journal ports.Journal
}

func NewHistoryService(ws *workspace.Workspace, journal ports.Journal) *HistoryService {
	return &HistoryService{ws: ws, journal: journal}
}

// HistoryRequest represents a request for recent sync events
type HistoryRequest struct {
	Limit int
	Path  string // Optional filter, absolute or relative to the working directory
}

// HistoryResponse holds events newest first
type HistoryResponse struct {
	Events []domain.SyncEvent
	Failed int
}

func (s *HistoryService) Execute(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	filter := ""
	if req.Path != "" {
		rel, err := s.ws.Rel(req.Path)
		if err != nil {
			return nil, err
		}
		filter = rel
	}

	events, err := s.journal.Recent(ctx, req.Limit, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	resp := &HistoryResponse{Events: events}
	for _, ev := range events {
		if ev.Failed() {
			resp.Failed++
		}
	}
	return resp, nil
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// TrackService starts and stops tracking assets
type TrackService struct {
	ws       *workspace.Workspace
	manager  *assets.Manager
	manifest ports.ManifestRepository
	fs       afero.Fs
}

func NewTrackService(ws *workspace.Workspace, m *assets.Manager, manifest ports.ManifestRepository, fs afero.Fs) *TrackService {
	return &TrackService{
		ws:       ws,
		manager:  m,
		manifest: manifest,
		fs:       fs,
	}
}

// TrackRequest represents a request to track an asset
type TrackRequest struct {
	Path string // Absolute or relative to the working directory
	Hot  bool
}

// TrackResponse represents a newly tracked asset
type TrackResponse struct {
	Record domain.AssetRecord
	Asset  assets.Asset
}

// Execute loads the asset, registers it and records it in the manifest
func (s *TrackService) Execute(ctx context.Context, req TrackRequest) (*TrackResponse, error) {
	rel, err := s.ws.Rel(req.Path)
	if err != nil {
		return nil, err
	}
	abs := s.ws.Abs(rel)

	if _, err := s.manifest.Get(ctx, rel); err == nil {
		return nil, fmt.Errorf("%s: %w", rel, domain.ErrAssetExists)
	}

	a, err := s.manager.Load(ctx, abs, req.Hot)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", rel, err)
	}

	hash, err := hashFile(s.fs, abs)
	if err != nil {
		s.manager.Remove(abs)
		return nil, err
	}

	mt, size := a.File().Baseline()
	now := time.Now()
	rec := domain.AssetRecord{
		Path:      rel,
		Kind:      a.Kind(),
		HotReload: req.Hot,
		ModTime:   mt,
		Size:      size,
		Hash:      hash,
		AddedAt:   now,
		SyncedAt:  now,
	}

	if err := s.manifest.Save(ctx, rec); err != nil {
		s.manager.Remove(abs)
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	return &TrackResponse{Record: rec, Asset: a}, nil
}

// UntrackRequest represents a request to stop tracking an asset
type UntrackRequest struct {
	Path string
}

// Untrack removes the asset from the manifest and the registry. Untracking a
// path that is not tracked fails with domain.ErrAssetNotFound.
func (s *TrackService) Untrack(ctx context.Context, req UntrackRequest) error {
	rel, err := s.ws.Rel(req.Path)
	if err != nil {
		return err
	}

	if err := s.manifest.Delete(ctx, rel); err != nil {
		return err
	}

	// A record may exist without a registered asset when the registry was not restored
	if err := s.manager.Remove(s.ws.Abs(rel)); err != nil && !errors.Is(err, domain.ErrAssetNotFound) {
		return err
	}
	return nil
}

// HotRequest represents a request to change an asset's hot-reload flag
type HotRequest struct {
	Path string
	Hot  bool
}

// SetHot flips the hot-reload flag in the manifest and the registry
func (s *TrackService) SetHot(ctx context.Context, req HotRequest) (*domain.AssetRecord, error) {
	rel, err := s.ws.Rel(req.Path)
	if err != nil {
		return nil, err
	}

	rec, err := s.manifest.Get(ctx, rel)
	if err != nil {
		return nil, err
	}
	rec.HotReload = req.Hot

	if err := s.manifest.Save(ctx, *rec); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}
	if err := s.manager.SetHot(s.ws.Abs(rel), req.Hot); err != nil && !errors.Is(err, domain.ErrAssetNotFound) {
		return nil, err
	}
	return rec, nil
}

func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/joshuaeyu/plum/internal/core/assets"
	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
	"github.com/joshuaeyu/plum/pkg/workspace"
)

// SyncService rebuilds the registry from the manifest and runs sweeps,
// persisting new baselines and journaling every resync
type SyncService struct {
	ws       *workspace.Workspace
	manager  *assets.Manager
	manifest ports.ManifestRepository
	journal  ports.Journal // optional
	fs       afero.Fs
	log      *slog.Logger
}

func NewSyncService(ws *workspace.Workspace, m *assets.Manager, manifest ports.ManifestRepository, journal ports.Journal, fs afero.Fs, log *slog.Logger) *SyncService {
	if log == nil {
		log = slog.Default()
	}
	return &SyncService{
		ws:       ws,
		manager:  m,
		manifest: manifest,
		journal:  journal,
		fs:       fs,
		log:      log,
	}
}

// Restore registers every manifest record not yet in the registry and
// returns how many were added. Records that cannot be registered are logged
// and skipped so the rest of the workspace stays usable.
func (s *SyncService) Restore(ctx context.Context) (int, error) {
	records, err := s.manifest.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list manifest: %w", err)
	}

	restored := 0
	for _, rec := range records {
		abs := s.ws.Abs(rec.Path)
		if _, ok := s.manager.Get(abs); ok {
			continue
		}
		a, err := s.manager.Restore(rec, abs)
		if a == nil {
			s.log.Warn("skipping manifest record", "path", rec.Path, "err", err)
			continue
		}
		if err != nil {
			s.log.Warn("restored asset without payload", "path", rec.Path, "err", err)
		}
		restored++
	}
	return restored, nil
}

// SyncRequest represents a request to run a sweep
type SyncRequest struct {
	Mode domain.SyncMode
}

// SyncResponse represents the outcome of a sweep with workspace-relative paths
type SyncResponse struct {
	Report domain.SyncReport
	Events []domain.SyncEvent
}

// Execute runs a cold or hot sweep. Per-asset failures are reported in the
// response, not as an error; the error covers bookkeeping failures only.
func (s *SyncService) Execute(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	var report domain.SyncReport
	switch req.Mode {
	case domain.SyncHot:
		report = s.manager.HotSyncWithDevice(ctx)
	case domain.SyncCold, "":
		report = s.manager.ColdSyncWithDevice(ctx)
	default:
		return nil, fmt.Errorf("unknown sync mode %q", req.Mode)
	}

	report.Resynced = s.relAll(report.Resynced)
	report.Skipped = s.relAll(report.Skipped)
	for i := range report.Failures {
		report.Failures[i].Path = s.rel(report.Failures[i].Path)
	}

	now := time.Now()
	resp := &SyncResponse{Report: report}
	var errs []error

	for _, rel := range report.Resynced {
		ev, err := s.recordSuccess(ctx, rel, report.Mode, now)
		if err != nil {
			errs = append(errs, err)
		}
		resp.Events = append(resp.Events, ev)
	}
	for _, f := range report.Failures {
		ev := domain.SyncEvent{Path: f.Path, Mode: report.Mode, At: now, Error: f.Err.Error()}
		if rec, err := s.manifest.Get(ctx, f.Path); err == nil {
			ev.Kind = rec.Kind
		}
		resp.Events = append(resp.Events, ev)
		s.log.Warn("resync failed", "path", f.Path, "err", f.Err)
	}

	if s.journal != nil {
		for i := range resp.Events {
			seq, err := s.journal.Append(ctx, resp.Events[i])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			resp.Events[i].Seq = seq
		}
	}

	return resp, errors.Join(errs...)
}

// recordSuccess stores the new baseline and hash for a resynced asset
func (s *SyncService) recordSuccess(ctx context.Context, rel string, mode domain.SyncMode, now time.Time) (domain.SyncEvent, error) {
	abs := s.ws.Abs(rel)
	ev := domain.SyncEvent{Path: rel, Mode: mode, At: now}

	a, ok := s.manager.Get(abs)
	if !ok {
		return ev, fmt.Errorf("%s: %w", rel, domain.ErrAssetNotFound)
	}
	ev.Kind = a.Kind()
	ev.Users = a.Users()

	rec, err := s.manifest.Get(ctx, rel)
	if err != nil {
		// Registered directly on the manager, not tracked in the manifest
		s.log.Debug("resynced untracked asset", "path", rel)
		return ev, nil
	}

	rec.ModTime, rec.Size = a.File().Baseline()
	rec.SyncedAt = now
	if hash, err := hashFile(s.fs, abs); err == nil {
		rec.Hash = hash
	} else {
		s.log.Warn("failed to hash asset", "path", rel, "err", err)
	}

	if err := s.manifest.Save(ctx, *rec); err != nil {
		return ev, fmt.Errorf("failed to save %s: %w", rel, err)
	}
	return ev, nil
}

func (s *SyncService) rel(abs string) string {
	if rel, err := s.ws.Rel(abs); err == nil {
		return rel
	}
	return abs
}

func (s *SyncService) relAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = s.rel(p)
	}
	return out
}

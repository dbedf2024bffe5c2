package domain

import (
	"errors"
	"fmt"
	"time"
)

// SyncMode distinguishes a full resync from a hot-reload resync
type SyncMode string

const (
	SyncCold SyncMode = "cold"
	SyncHot  SyncMode = "hot"
)

// SyncFailure records an asset whose resync failed
type SyncFailure struct {
	Path string
	Err  error
}

// SyncReport summarizes one sweep over the registry
type SyncReport struct {
	Mode     SyncMode
	Checked  int      // Assets considered by this mode
	Resynced []string // Paths resynced successfully
	Skipped  []string // Paths that did not need a resync
	Failures []SyncFailure
}

// Err joins every failure into a single error, or nil when the sweep was clean
func (r SyncReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}

// SyncEvent is a journal row describing a single asset resync
type SyncEvent struct {
	Seq   uint64    `json:"-"`
	Path  string    `json:"path"`
	Kind  Kind      `json:"kind"`
	Mode  SyncMode  `json:"mode"`
	At    time.Time `json:"at"`
	Users int       `json:"users"`
	Error string    `json:"error,omitempty"`
}

// Failed reports whether the resync ended in an error
func (e SyncEvent) Failed() bool {
	return e.Error != ""
}

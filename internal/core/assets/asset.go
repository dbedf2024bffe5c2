// Package assets implements file-backed assets that can be resynced with the
// storage device, and the registry that owns them.
package assets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/joshuaeyu/plum/internal/core/domain"
	"github.com/joshuaeyu/plum/internal/core/ports"
)

// Asset is an in-memory representation of file-backed content that can go
// stale relative to its source file.
type Asset interface {
	// Path returns the path of the backing file
	Path() string

	// Kind returns how the file bytes are interpreted
	Kind() domain.Kind

	// File returns the backing file
	File() ports.File

	// NeedsResync reports whether the payload is missing or the backing file
	// changed since the last successful reload
	NeedsResync() bool

	// Resync re-reads the file, reloads the payload and notifies every user
	Resync(ctx context.Context) error

	// AddUser registers a user; registering the same user twice is a no-op
	AddUser(u AssetUser)

	// RemoveUser unregisters a user; unknown users are ignored
	RemoveUser(u AssetUser)

	// Users returns the number of registered users
	Users() int
}

// AssetUser is implemented by anything that depends on an asset's payload.
// Users are compared by identity, so implementations should be pointers.
type AssetUser interface {
	OnAssetResync(ctx context.Context, a Asset) error
}

// FuncUser adapts a function to the AssetUser interface
type FuncUser struct {
	Name string
	Fn   func(ctx context.Context, a Asset) error
}

// NewFuncUser wraps fn as a user
func NewFuncUser(name string, fn func(ctx context.Context, a Asset) error) *FuncUser {
	return &FuncUser{Name: name, Fn: fn}
}

// OnAssetResync calls the wrapped function
func (u *FuncUser) OnAssetResync(ctx context.Context, a Asset) error {
	return u.Fn(ctx, a)
}

// base carries the behaviour shared by every concrete asset. The concrete
// type supplies reload, which reinterprets the file bytes; it runs under mu
// held for writing and must leave the previous payload untouched on error.
// The file baseline only moves after a reload succeeds.
type base struct {
	file   ports.File
	kind   domain.Kind
	self   Asset
	reload func(data []byte) error

	mu     sync.RWMutex
	users  []AssetUser
	loaded bool
}

func (b *base) init(file ports.File, kind domain.Kind, self Asset, reload func([]byte) error) {
	b.file = file
	b.kind = kind
	b.self = self
	b.reload = reload
}

func (b *base) Path() string { return b.file.Path() }
func (b *base) Kind() domain.Kind { return b.kind }
func (b *base) File() ports.File { return b.file }

func (b *base) NeedsResync() bool {
	b.mu.RLock()
	loaded := b.loaded
	b.mu.RUnlock()
	return !loaded || b.file.Modified()
}

func (b *base) AddUser(u AssetUser) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if slices.Contains(b.users, u) {
		return
	}
	b.users = append(b.users, u)
}

func (b *base) RemoveUser(u AssetUser) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := slices.Index(b.users, u); i >= 0 {
		b.users = slices.Delete(b.users, i, i+1)
	}
}

func (b *base) Users() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.users)
}

func (b *base) Resync(ctx context.Context) error {
	data, v, err := b.file.Read()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", b.file.Path(), err)
	}

	b.mu.Lock()
	err = b.reload(data)
	if err == nil {
		b.loaded = true
		b.file.Commit(v)
	}
	users := slices.Clone(b.users)
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", b.file.Path(), err)
	}

	// Users run outside the lock so they may read the fresh payload
	var errs []error
	for _, u := range users {
		if err := u.OnAssetResync(ctx, b.self); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// prime loads the payload without committing the baseline or notifying
// users. A restored file that changed while nobody watched it therefore
// still reports NeedsResync.
func (b *base) prime() error {
	data, _, err := b.file.Read()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", b.file.Path(), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(data); err != nil {
		return fmt.Errorf("failed to reload %s: %w", b.file.Path(), err)
	}
	b.loaded = true
	return nil
}

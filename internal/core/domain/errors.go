package domain

import "errors"

var (
	ErrAssetNotFound    = errors.New("asset not registered")
	ErrAssetExists      = errors.New("asset already registered")
	ErrUnsupportedKind  = errors.New("unsupported asset kind")
	ErrOutsideWorkspace = errors.New("path is outside the workspace")
	ErrWorkspaceMissing = errors.New("workspace not initialized")
)

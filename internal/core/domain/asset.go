package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies how an asset's file bytes are interpreted
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindImage   Kind = "image"
	KindModel   Kind = "model"
	KindShader  Kind = "shader"
)

// extensionKinds maps lowercase file extensions to asset kinds
var extensionKinds = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".webp": KindImage,
	".obj":  KindModel,
	".glsl": KindShader,
	".vert": KindShader,
	".frag": KindShader,
	".geom": KindShader,
	".comp": KindShader,
	".vs":   KindShader,
	".fs":   KindShader,
}

// KindFromPath resolves an asset kind from the file extension alone
func KindFromPath(path string) Kind {
	if k, ok := extensionKinds[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindUnknown
}

// ParseKind converts a stored string back into a Kind
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindImage:
		return KindImage
	case KindModel:
		return KindModel
	case KindShader:
		return KindShader
	default:
		return KindUnknown
	}
}

// AssetRecord is the persisted manifest entry for a tracked asset
type AssetRecord struct {
	Path      string    `json:"path"`       // Workspace-relative, slash separated
	Kind      Kind      `json:"kind"`       // image, model or shader
	HotReload bool      `json:"hot_reload"` // Resynced by hot syncs and the watcher
	ModTime   time.Time `json:"mod_time"`   // Baseline mtime at last successful read
	Size      int64     `json:"size"`       // Baseline size at last successful read
	Hash      string    `json:"hash"`       // SHA-256 of the content at last read
	AddedAt   time.Time `json:"added_at"`
	SyncedAt  time.Time `json:"synced_at"`
}

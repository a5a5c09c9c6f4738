package store

import (
	"fmt"
	"path/filepath"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Open returns the backend of the given kind rooted at dir.
func Open(kind, dir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return OpenFile(filepath.Join(dir, "storage.json"))
	case KindSQLite:
		return OpenSQLite(filepath.Join(dir, "storage.db"))
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

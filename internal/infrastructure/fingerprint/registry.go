package fingerprint

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Registry is the persisted hash -> source path mapping. A hash present
// here means that content has already been chunked and indexed.
type Registry struct {
	path string

	mu     sync.Mutex
	hashes map[string]string
}

// LoadRegistry reads the registry file at path. A missing or corrupt
// file yields an empty registry rather than an error; corruption is
// logged and the next successful Record overwrites it.
func LoadRegistry(path string) *Registry {
	reg := &Registry{
		path:   path,
		hashes: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("hash registry unreadable, starting empty", "path", path, "error", err)
		}
		return reg
	}

	if err := json.Unmarshal(raw, &reg.hashes); err != nil {
		slog.Warn("hash registry corrupt, starting empty", "path", path, "error", err)
		reg.hashes = make(map[string]string)
	}
	return reg
}

func (r *Registry) Contains(hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.hashes[hash]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hashes)
}

// Record adds the hash and persists the registry atomically
// (write-then-rename), so a reader never observes a half-written file.
func (r *Registry) Record(hash, sourcePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hashes[hash] = sourcePath

	raw, err := json.Marshal(r.hashes)
	if err != nil {
		return fmt.Errorf("marshal hash registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write registry temp file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace registry file: %w", err)
	}
	return nil
}

package engine

import (
	"github.com/bianoble/provision/internal/cache"
)

// PruneEngine removes the cache and, optionally, the installation.
type PruneEngine struct {
	Cache *cache.Cache
}

// PruneOptions configures a prune operation.
type PruneOptions struct {
	// All also removes the installation directory, record and installer.
	All bool
}

// Prune removes cached state under home. The result is never nil.
func (e *PruneEngine) Prune(opts PruneOptions) (*PruneResult, error) {
	freed, err := e.Cache.Size()
	if err != nil {
		return &PruneResult{}, err
	}

	removed, err := e.Cache.Prune(opts.All)
	result := &PruneResult{Removed: removed}
	if len(removed) > 0 {
		result.Freed = freed
	}
	return result, err
}

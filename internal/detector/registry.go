package detector

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Registry resolves model identifiers to loaded handles and caches
// them for the life of the process: at most one handle per identifier,
// populated lazily, never evicted. It is owned by the service instance
// rather than held as package state so a long-lived process can reuse
// it across requests.
type Registry struct {
	variant Variant
	roots   []string

	mu      sync.Mutex
	handles map[string]*Handle

	// loadHandle is swapped out by tests that have no runtime.
	loadHandle func(path string, numClasses int) (*Handle, error)
}

// NewRegistry builds a registry over the given weight roots, checked
// in order. Empty roots are skipped, so an unset bundled-models path
// simply disables all on-disk resolution.
func NewRegistry(variant Variant, roots ...string) *Registry {
	clean := make([]string, 0, len(roots))
	for _, r := range roots {
		if r != "" {
			clean = append(clean, r)
		}
	}
	return &Registry{
		variant:    variant,
		roots:      clean,
		handles:    make(map[string]*Handle),
		loadHandle: NewHandle,
	}
}

// Resolve returns a ready handle for the identifier. Unknown or
// unloadable identifiers fall through to a single terminal default
// lookup; the chain is walked at most once, so "default" can never
// re-enter the unknown-identifier branch.
func (r *Registry) Resolve(modelID string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if modelID == "" || modelID == "default" {
		return r.resolveDefault()
	}

	if h, ok := r.handles[modelID]; ok {
		return h, nil
	}

	if _, known := r.variant.Catalog[modelID]; !known {
		log.Printf("unknown model %s, trying to find it anyway", modelID)
	}

	path := r.findWeights(modelID)
	if path == "" {
		log.Printf("model %s not found, using default", modelID)
		return r.resolveDefault()
	}

	log.Printf("loading %s model (%s) from %s", modelID, r.describe(modelID), path)
	h, err := r.loadHandle(path, r.variant.NumClasses)
	if err != nil {
		log.Printf("failed to load model %s: %v, trying default model", modelID, err)
		return r.resolveDefault()
	}
	r.handles[modelID] = h
	return h, nil
}

// resolveDefault walks the variant's priority list once. A load
// failure here is fatal: there is nothing further to fall back to.
func (r *Registry) resolveDefault() (*Handle, error) {
	for _, id := range r.variant.DefaultPriority {
		if h, ok := r.handles[id]; ok {
			return h, nil
		}
		path := r.findWeights(id)
		if path == "" {
			continue
		}
		log.Printf("default model: using bundled %s", id)
		h, err := r.loadHandle(path, r.variant.NumClasses)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrModelLoadFailed, id, err)
		}
		r.handles[id] = h
		return h, nil
	}
	return nil, ErrNoDefaultModel
}

func (r *Registry) findWeights(modelID string) string {
	for _, root := range r.roots {
		for _, dir := range r.variant.LayoutDirs {
			path := filepath.Join(root, modelID, dir, "weights", "best.onnx")
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func (r *Registry) describe(modelID string) string {
	if desc, ok := r.variant.Catalog[modelID]; ok {
		return desc
	}
	return modelID
}

// Destroy releases every cached handle.
func (r *Registry) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.handles {
		h.Destroy()
		delete(r.handles, id)
	}
}

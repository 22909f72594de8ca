// Package registry provides read-only lookup from realization ids to realizations.
//
// A Registry is assembled once, typically at process start from a catalog, and
// never changes afterwards. Concurrent lookups therefore need no locking.
package registry

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/realization"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
)

// ProcessorRegistry looks up processor realizations
type ProcessorRegistry interface {
	ProcessorRealization(id ids.ProcessorRealizationID) (realization.ProcessorRealization, bool)
}

// ResourceRegistry looks up resource realizations
type ResourceRegistry interface {
	ResourceRealization(id ids.ResourceRealizationID) (realization.ResourceRealization, bool)
}

// DuplicateRealizationError is returned when two realizations share an id
type DuplicateRealizationError struct {
	Kind string
	ID   string
}

// Error implements the error interface
func (e *DuplicateRealizationError) Error() string {
	return fmt.Sprintf("duplicate %s realization '%s'", e.Kind, e.ID)
}

// Registry implements ProcessorRegistry and ResourceRegistry over a fixed set of realizations
type Registry struct {
	processors map[ids.ProcessorRealizationID]realization.ProcessorRealization
	resources  map[ids.ResourceRealizationID]realization.ResourceRealization
}

// New creates a registry holding the given realizations
func New(processors []realization.ProcessorRealization, resources []realization.ResourceRealization) (*Registry, error) {
	r := &Registry{
		processors: make(map[ids.ProcessorRealizationID]realization.ProcessorRealization, len(processors)),
		resources:  make(map[ids.ResourceRealizationID]realization.ResourceRealization, len(resources)),
	}

	for i, p := range processors {
		if p == nil {
			return nil, fmt.Errorf("processor realization %d is nil", i)
		}
		if _, exists := r.processors[p.ID()]; exists {
			return nil, &DuplicateRealizationError{Kind: "processor", ID: p.ID().String()}
		}
		r.processors[p.ID()] = p
	}

	for i, res := range resources {
		if res == nil {
			return nil, fmt.Errorf("resource realization %d is nil", i)
		}
		if _, exists := r.resources[res.ID()]; exists {
			return nil, &DuplicateRealizationError{Kind: "resource", ID: res.ID().String()}
		}
		r.resources[res.ID()] = res
	}

	logger.Debug("Created realization registry",
		zap.Int("processors", len(r.processors)),
		zap.Int("resources", len(r.resources)))

	return r, nil
}

// ProcessorRealization implements ProcessorRegistry
func (r *Registry) ProcessorRealization(id ids.ProcessorRealizationID) (realization.ProcessorRealization, bool) {
	p, ok := r.processors[id]
	return p, ok
}

// ResourceRealization implements ResourceRegistry
func (r *Registry) ResourceRealization(id ids.ResourceRealizationID) (realization.ResourceRealization, bool) {
	res, ok := r.resources[id]
	return res, ok
}

// ProcessorRealizations returns all processor realizations ordered by id
func (r *Registry) ProcessorRealizations() []realization.ProcessorRealization {
	return slices.SortedFunc(maps.Values(r.processors), func(a, b realization.ProcessorRealization) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}

// ResourceRealizations returns all resource realizations ordered by id
func (r *Registry) ResourceRealizations() []realization.ResourceRealization {
	return slices.SortedFunc(maps.Values(r.resources), func(a, b realization.ResourceRealization) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}

// Package pipeline compiles a pipeline config into a resolved, typed graph.
//
// Create resolves every resource, processor and connection of a model.PipelineConfig
// against the realization registries. The resulting Pipeline is never mutated and
// only borrows the realizations it references.
package pipeline

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/realization"
)

// Resource is a resolved pipeline resource
type Resource struct {
	ID            ids.ResourceID
	Name          string
	RealizationID ids.ResourceRealizationID
	Technology    descriptor.ResourceTechnology
	Realization   realization.ResourceRealization
	Parameters    map[ids.ParameterID]string
}

// Identifier returns the resource's platform-facing identifier
func (r *Resource) Identifier() ResourceIdentifier {
	return ResourceIdentifier{ResourceType: r.Technology, ResourceRealizationID: r.RealizationID}
}

// Processor is a resolved pipeline processor. Descriptor is already rendered for
// the tenant the pipeline was built for.
type Processor struct {
	ID            ids.ProcessorID
	Name          string
	RealizationID ids.ProcessorRealizationID
	Technology    descriptor.ProcessorTechnology
	Realization   realization.ProcessorRealization
	Descriptor    descriptor.ProcessorDescriptor
	ProfileID     *ids.ProfileID
	Parameters    map[ids.ParameterID]string
}

// JunctionIdentifier names one junction of one processor realization
type JunctionIdentifier struct {
	Technology             descriptor.ProcessorTechnology
	ProcessorRealizationID ids.ProcessorRealizationID
	JunctionID             ids.JunctionID
}

func (j JunctionIdentifier) String() string {
	return fmt.Sprintf("%s:%s:%s", j.Technology, j.ProcessorRealizationID, j.JunctionID)
}

// ResourceIdentifier names one resource realization
type ResourceIdentifier struct {
	ResourceType          descriptor.ResourceTechnology
	ResourceRealizationID ids.ResourceRealizationID
}

func (r ResourceIdentifier) String() string {
	return fmt.Sprintf("%s:%s", r.ResourceType, r.ResourceRealizationID)
}

// ConnectionType is one of ResourcesToProcessor, ProcessorToResources or
// ProcessorToProcessor
type ConnectionType interface {
	// abbreviation is r2p, p2r or p2p
	abbreviation() string
	isConnectionType()
}

// ResourcesToProcessor feeds resources into an inbound junction
type ResourcesToProcessor struct {
	SourceResources []ResourceIdentifier
	TargetJunction  JunctionIdentifier
}

// ProcessorToResources writes an outbound junction to resources
type ProcessorToResources struct {
	SourceJunction  JunctionIdentifier
	TargetResources []ResourceIdentifier
}

// ProcessorToProcessor links an outbound junction directly to an inbound junction
type ProcessorToProcessor struct {
	SourceJunction JunctionIdentifier
	TargetJunction JunctionIdentifier
}

func (ResourcesToProcessor) abbreviation() string { return "r2p" }
func (ProcessorToResources) abbreviation() string { return "p2r" }
func (ProcessorToProcessor) abbreviation() string { return "p2p" }

func (ResourcesToProcessor) isConnectionType() {}
func (ProcessorToResources) isConnectionType() {}
func (ProcessorToProcessor) isConnectionType() {}

// Connection is a resolved edge of the pipeline graph
type Connection struct {
	Type       ConnectionType
	Parameters map[ids.ParameterID]string
}

// Dependency is an ordering constraint between pipeline elements. No config
// produces one yet.
type Dependency struct {
	From string
	To   string
}

// Pipeline is the compiled pipeline graph
type Pipeline struct {
	ID           ids.PipelineID
	Name         string
	Resources    map[ids.ResourceID]*Resource
	Processors   map[ids.ProcessorID]*Processor
	Connections  []Connection
	Dependencies []Dependency
}

// SortedResources returns the pipeline's resources ordered by id
func (p *Pipeline) SortedResources() []*Resource {
	return slices.SortedFunc(maps.Values(p.Resources), func(a, b *Resource) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortedProcessors returns the pipeline's processors ordered by id
func (p *Pipeline) SortedProcessors() []*Processor {
	return slices.SortedFunc(maps.Values(p.Processors), func(a, b *Processor) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

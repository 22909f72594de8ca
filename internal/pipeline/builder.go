package pipeline

import (
	"maps"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/registry"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
)

// Create resolves cfg against the registries and returns the compiled pipeline.
// The first unresolved reference or incompatibility aborts the build.
func Create(
	cfg *model.PipelineConfig,
	tenant descriptor.Tenant,
	resources registry.ResourceRegistry,
	processors registry.ProcessorRegistry,
) (*Pipeline, error) {
	b := &builder{
		cfg:        cfg,
		tenant:     tenant,
		resources:  resources,
		processors: processors,
		pipeline: &Pipeline{
			ID:           cfg.PipelineID,
			Name:         cfg.Name,
			Resources:    make(map[ids.ResourceID]*Resource, len(cfg.Resources)),
			Processors:   make(map[ids.ProcessorID]*Processor, len(cfg.Processors)),
			Connections:  make([]Connection, 0, len(cfg.Connections)),
			Dependencies: []Dependency{},
		},
	}

	if err := b.resolveResources(); err != nil {
		return nil, err
	}
	if err := b.resolveProcessors(); err != nil {
		return nil, err
	}
	if err := b.resolveConnections(); err != nil {
		return nil, err
	}

	logger.Debug("Created pipeline",
		zap.String("pipeline", cfg.PipelineID.String()),
		zap.String("tenant", tenant.String()),
		zap.Int("resources", len(b.pipeline.Resources)),
		zap.Int("processors", len(b.pipeline.Processors)),
		zap.Int("connections", len(b.pipeline.Connections)))

	return b.pipeline, nil
}

type builder struct {
	cfg        *model.PipelineConfig
	tenant     descriptor.Tenant
	resources  registry.ResourceRegistry
	processors registry.ProcessorRegistry
	pipeline   *Pipeline
}

func (b *builder) resolveResources() error {
	for _, rc := range b.cfg.Resources {
		if _, exists := b.pipeline.Resources[rc.ResourceID]; exists {
			return &DuplicateIDError{Kind: "resource", ID: rc.ResourceID.String()}
		}
		impl, ok := b.resources.ResourceRealization(rc.ResourceRealizationID)
		if !ok {
			return &MissingRealizationError{Kind: "resource", ID: rc.ResourceRealizationID.String()}
		}
		res := &Resource{
			ID:            rc.ResourceID,
			Name:          rc.Name,
			RealizationID: rc.ResourceRealizationID,
			Technology:    impl.Descriptor().Technology,
			Realization:   impl,
			Parameters:    maps.Clone(rc.Parameters),
		}
		b.pipeline.Resources[rc.ResourceID] = res
		logger.Debug("Resolved resource",
			zap.String("resource", res.ID.String()),
			zap.String("identifier", res.Identifier().String()))
	}
	return nil
}

func (b *builder) resolveProcessors() error {
	for _, pc := range b.cfg.Processors {
		if _, exists := b.pipeline.Processors[pc.ProcessorID]; exists {
			return &DuplicateIDError{Kind: "processor", ID: pc.ProcessorID.String()}
		}
		impl, ok := b.processors.ProcessorRealization(pc.ProcessorRealizationID)
		if !ok {
			return &MissingRealizationError{Kind: "processor", ID: pc.ProcessorRealizationID.String()}
		}
		desc := impl.Descriptor(b.tenant)
		if pc.ProfileID != nil {
			if _, ok := desc.Profile(*pc.ProfileID); !ok {
				return &MissingProfileError{Processor: pc.ProcessorID, Profile: *pc.ProfileID}
			}
		}
		proc := &Processor{
			ID:            pc.ProcessorID,
			Name:          pc.Name,
			RealizationID: pc.ProcessorRealizationID,
			Technology:    desc.Technology,
			Realization:   impl,
			Descriptor:    desc,
			ProfileID:     pc.ProfileID,
			Parameters:    maps.Clone(pc.Parameters),
		}
		b.pipeline.Processors[pc.ProcessorID] = proc
		logger.Debug("Resolved processor",
			zap.String("processor", proc.ID.String()),
			zap.String("realization", proc.RealizationID.String()),
			zap.String("technology", proc.Technology.String()))
	}
	return nil
}

func (b *builder) resolveConnections() error {
	for i, cc := range b.cfg.Connections {
		if n := cc.Variants(); n != 1 {
			return &InvalidConnectionError{Pipeline: b.cfg.PipelineID, Index: i, Variants: n}
		}

		var (
			ct  ConnectionType
			err error
		)
		switch {
		case cc.ResourcesToProcessor != nil:
			ct, err = b.resourcesToProcessor(cc.ResourcesToProcessor)
		case cc.ProcessorToResources != nil:
			ct, err = b.processorToResources(cc.ProcessorToResources)
		case cc.ProcessorToProcessor != nil:
			ct, err = b.processorToProcessor(cc.ProcessorToProcessor)
		}
		if err != nil {
			return err
		}
		b.pipeline.Connections = append(b.pipeline.Connections, Connection{
			Type:       ct,
			Parameters: maps.Clone(cc.Parameters),
		})
		logger.Debug("Resolved connection",
			zap.String("pipeline", b.cfg.PipelineID.String()),
			zap.String("kind", cc.Kind()))
	}
	return nil
}

func (b *builder) resourcesToProcessor(c *model.ResourcesToProcessorConfig) (ConnectionType, error) {
	sources, err := b.resourceIdentifiers(c.SourceResourceIDs)
	if err != nil {
		return nil, err
	}
	proc, junction, err := b.junction(c.Target, TargetRole, Inbound)
	if err != nil {
		return nil, err
	}

	// every resource of the pipeline is checked, not only the connected ones
	for _, res := range b.pipeline.SortedResources() {
		if !junction.IsResourceTechnologyCompatible(res.Technology) {
			return nil, &IncompatibleTechnologyError{
				Resource:  res.ID,
				Actual:    res.Technology,
				Processor: proc.ID,
				Junction:  junction.ID,
				Expected:  junction.AllowedResourceTypes,
			}
		}
	}

	return ResourcesToProcessor{
		SourceResources: sources,
		TargetJunction:  junctionIdentifier(proc, junction.ID),
	}, nil
}

func (b *builder) processorToResources(c *model.ProcessorToResourcesConfig) (ConnectionType, error) {
	proc, junction, err := b.junction(c.Source, SourceRole, Outbound)
	if err != nil {
		return nil, err
	}
	targets, err := b.resourceIdentifiers(c.TargetResourceIDs)
	if err != nil {
		return nil, err
	}
	return ProcessorToResources{
		SourceJunction:  junctionIdentifier(proc, junction.ID),
		TargetResources: targets,
	}, nil
}

func (b *builder) processorToProcessor(c *model.ProcessorToProcessorConfig) (ConnectionType, error) {
	source, sourceJunction, err := b.junction(c.Source, SourceRole, Outbound)
	if err != nil {
		return nil, err
	}
	target, targetJunction, err := b.junction(c.Target, TargetRole, Inbound)
	if err != nil {
		return nil, err
	}
	return ProcessorToProcessor{
		SourceJunction: junctionIdentifier(source, sourceJunction.ID),
		TargetJunction: junctionIdentifier(target, targetJunction.ID),
	}, nil
}

// resourceIdentifiers resolves resource ids that must already be in the pipeline
func (b *builder) resourceIdentifiers(resourceIDs []ids.ResourceID) ([]ResourceIdentifier, error) {
	out := make([]ResourceIdentifier, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		res, ok := b.pipeline.Resources[id]
		if !ok {
			return nil, &MissingResourceError{Pipeline: b.cfg.PipelineID, Resource: id}
		}
		out = append(out, res.Identifier())
	}
	if len(out) == 0 {
		return nil, &EmptyResourceListError{Pipeline: b.cfg.PipelineID}
	}
	return out, nil
}

// junction finds a processor of the pipeline and one of its junctions
func (b *builder) junction(ref model.ProcessorJunctionConfig, role Role, dir Direction) (*Processor, *descriptor.JunctionDescriptor, error) {
	proc, ok := b.pipeline.Processors[ref.ProcessorID]
	if !ok {
		return nil, nil, &MissingProcessorError{Pipeline: b.cfg.PipelineID, Processor: ref.ProcessorID, Role: role}
	}

	var (
		junction *descriptor.JunctionDescriptor
		found    bool
	)
	if dir == Inbound {
		junction, found = proc.Descriptor.InboundJunction(ref.Junction)
	} else {
		junction, found = proc.Descriptor.OutboundJunction(ref.Junction)
	}
	if !found {
		return nil, nil, &MissingJunctionError{Processor: proc.ID, Junction: ref.Junction, Direction: dir, Role: role}
	}
	return proc, junction, nil
}

func junctionIdentifier(proc *Processor, junction ids.JunctionID) JunctionIdentifier {
	return JunctionIdentifier{
		Technology:             proc.Technology,
		ProcessorRealizationID: proc.RealizationID,
		JunctionID:             junction,
	}
}

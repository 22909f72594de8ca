// Package realization provides the concrete processor and resource implementations
// that catalogs register. Each technology has its own type; callers only rely on the
// ProcessorRealization and ResourceRealization interfaces.
package realization

import (
	"fmt"
	"maps"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

// ProcessorRealization is the implementation behind a processor realization id
type ProcessorRealization interface {
	ID() ids.ProcessorRealizationID
	Technology() descriptor.ProcessorTechnology
	// Descriptor renders the realization's descriptor for the given tenant
	Descriptor(tenant descriptor.Tenant) descriptor.ProcessorDescriptor
}

// ResourceRealization is the implementation behind a resource realization id
type ResourceRealization interface {
	ID() ids.ResourceRealizationID
	Technology() descriptor.ResourceTechnology
	Descriptor() descriptor.ResourceDescriptor
}

// processorBase carries the descriptor template shared by all processor technologies
type processorBase struct {
	template descriptor.ProcessorDescriptor
}

func newProcessorBase(template descriptor.ProcessorDescriptor, technology descriptor.ProcessorTechnology) (processorBase, error) {
	if template.RealizationID == "" {
		return processorBase{}, fmt.Errorf("processor realization has no id")
	}
	if template.Technology != "" && template.Technology != technology {
		return processorBase{}, fmt.Errorf("processor realization '%s' declares technology %s, expected %s",
			template.RealizationID, template.Technology, technology)
	}
	template.Technology = technology
	return processorBase{template: template}, nil
}

func (b processorBase) ID() ids.ProcessorRealizationID { return b.template.RealizationID }

func (b processorBase) Technology() descriptor.ProcessorTechnology { return b.template.Technology }

// render expands the template for the tenant and merges technology specific metadata
func (b processorBase) render(tenant descriptor.Tenant, extra map[string]string) descriptor.ProcessorDescriptor {
	d := b.template.Render(tenant)
	if len(extra) > 0 {
		if d.Metadata == nil {
			d.Metadata = make(map[string]string, len(extra))
		}
		for k, v := range extra {
			d.Metadata[k] = tenant.Expand(v)
		}
	}
	return d
}

// resourceBase carries the descriptor shared by all resource technologies
type resourceBase struct {
	desc descriptor.ResourceDescriptor
}

func newResourceBase(desc descriptor.ResourceDescriptor, technology descriptor.ResourceTechnology) (resourceBase, error) {
	if desc.RealizationID == "" {
		return resourceBase{}, fmt.Errorf("resource realization has no id")
	}
	if desc.Technology != "" && desc.Technology != technology {
		return resourceBase{}, fmt.Errorf("resource realization '%s' declares technology %s, expected %s",
			desc.RealizationID, desc.Technology, technology)
	}
	desc.Technology = technology
	return resourceBase{desc: desc}, nil
}

func (b resourceBase) ID() ids.ResourceRealizationID { return b.desc.RealizationID }

func (b resourceBase) Technology() descriptor.ResourceTechnology { return b.desc.Technology }

func (b resourceBase) describe(extra map[string]string) descriptor.ResourceDescriptor {
	d := b.desc
	d.Metadata = maps.Clone(b.desc.Metadata)
	if len(extra) > 0 {
		if d.Metadata == nil {
			d.Metadata = make(map[string]string, len(extra))
		}
		maps.Copy(d.Metadata, extra)
	}
	return d
}

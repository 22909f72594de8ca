package model

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"gopkg.in/yaml.v3"
)

// Connection kinds as written in pipeline files
const (
	KindResourcesToProcessor = "resources-to-processor"
	KindProcessorToResources = "processor-to-resources"
	KindProcessorToProcessor = "processor-to-processor"
)

// PipelineConfig is the parsed form of a pipeline file
type PipelineConfig struct {
	PipelineID  ids.PipelineID     `yaml:"pipeline-id" json:"pipeline-id" validate:"required"`
	Name        string             `yaml:"name" json:"name" validate:"required"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Resources   []ResourceConfig   `yaml:"resources" json:"resources" validate:"dive"`
	Processors  []ProcessorConfig  `yaml:"processors" json:"processors" validate:"dive"`
	Connections []ConnectionConfig `yaml:"connections" json:"connections"`
}

// ResourceConfig declares a resource of the pipeline
type ResourceConfig struct {
	ResourceID            ids.ResourceID             `yaml:"resource-id" json:"resource-id" validate:"required"`
	ResourceRealizationID ids.ResourceRealizationID  `yaml:"resource-realization-id" json:"resource-realization-id" validate:"required"`
	Name                  string                     `yaml:"name" json:"name" validate:"required"`
	Parameters            map[ids.ParameterID]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// ProcessorConfig declares a processor of the pipeline
type ProcessorConfig struct {
	ProcessorID            ids.ProcessorID            `yaml:"processor-id" json:"processor-id" validate:"required"`
	ProcessorRealizationID ids.ProcessorRealizationID `yaml:"processor-realization-id" json:"processor-realization-id" validate:"required"`
	Name                   string                     `yaml:"name" json:"name" validate:"required"`
	ProfileID              *ids.ProfileID             `yaml:"profile-id,omitempty" json:"profile-id,omitempty"`
	Parameters             map[ids.ParameterID]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// ProcessorJunctionConfig points at one junction of one processor
type ProcessorJunctionConfig struct {
	ProcessorID ids.ProcessorID `yaml:"processor-id" json:"processor-id" validate:"required"`
	Junction    ids.JunctionID  `yaml:"junction" json:"junction" validate:"required"`
}

// ResourcesToProcessorConfig feeds resources into an inbound junction
type ResourcesToProcessorConfig struct {
	SourceResourceIDs []ids.ResourceID        `yaml:"source-resource-ids" json:"source-resource-ids"`
	Target            ProcessorJunctionConfig `yaml:"target-processor-junction" json:"target-processor-junction"`
}

// ProcessorToResourcesConfig writes an outbound junction to resources
type ProcessorToResourcesConfig struct {
	Source            ProcessorJunctionConfig `yaml:"source-processor-junction" json:"source-processor-junction"`
	TargetResourceIDs []ids.ResourceID        `yaml:"target-resource-ids" json:"target-resource-ids"`
}

// ProcessorToProcessorConfig links an outbound junction to an inbound junction
type ProcessorToProcessorConfig struct {
	Source ProcessorJunctionConfig `yaml:"source-processor-junction" json:"source-processor-junction"`
	Target ProcessorJunctionConfig `yaml:"target-processor-junction" json:"target-processor-junction"`
}

// ConnectionConfig is a tagged union: exactly one of the three variants is set
type ConnectionConfig struct {
	ResourcesToProcessor *ResourcesToProcessorConfig
	ProcessorToResources *ProcessorToResourcesConfig
	ProcessorToProcessor *ProcessorToProcessorConfig
	Parameters           map[ids.ParameterID]string
}

// Kind returns the kind tag of the set variant, or "" if none is set
func (c ConnectionConfig) Kind() string {
	switch {
	case c.ResourcesToProcessor != nil:
		return KindResourcesToProcessor
	case c.ProcessorToResources != nil:
		return KindProcessorToResources
	case c.ProcessorToProcessor != nil:
		return KindProcessorToProcessor
	default:
		return ""
	}
}

// Variants counts how many union members are set. A well formed connection has one.
func (c ConnectionConfig) Variants() int {
	n := 0
	if c.ResourcesToProcessor != nil {
		n++
	}
	if c.ProcessorToResources != nil {
		n++
	}
	if c.ProcessorToProcessor != nil {
		n++
	}
	return n
}

// connectionHeader holds the fields shared by all connection kinds
type connectionHeader struct {
	Kind       string                     `yaml:"kind"`
	Parameters map[ids.ParameterID]string `yaml:"parameters,omitempty"`
}

// UnmarshalYAML decodes a connection by dispatching on its kind field
func (c *ConnectionConfig) UnmarshalYAML(node *yaml.Node) error {
	var header connectionHeader
	if err := node.Decode(&header); err != nil {
		return err
	}

	*c = ConnectionConfig{Parameters: header.Parameters}
	switch header.Kind {
	case KindResourcesToProcessor:
		c.ResourcesToProcessor = &ResourcesToProcessorConfig{}
		return node.Decode(c.ResourcesToProcessor)
	case KindProcessorToResources:
		c.ProcessorToResources = &ProcessorToResourcesConfig{}
		return node.Decode(c.ProcessorToResources)
	case KindProcessorToProcessor:
		c.ProcessorToProcessor = &ProcessorToProcessorConfig{}
		return node.Decode(c.ProcessorToProcessor)
	case "":
		return fmt.Errorf("line %d: connection has no kind", node.Line)
	default:
		return fmt.Errorf("line %d: unknown connection kind '%s'", node.Line, header.Kind)
	}
}

// MarshalYAML writes the connection back in its tagged form
func (c ConnectionConfig) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{"kind": c.Kind()}
	switch {
	case c.ResourcesToProcessor != nil:
		out["source-resource-ids"] = c.ResourcesToProcessor.SourceResourceIDs
		out["target-processor-junction"] = c.ResourcesToProcessor.Target
	case c.ProcessorToResources != nil:
		out["source-processor-junction"] = c.ProcessorToResources.Source
		out["target-resource-ids"] = c.ProcessorToResources.TargetResourceIDs
	case c.ProcessorToProcessor != nil:
		out["source-processor-junction"] = c.ProcessorToProcessor.Source
		out["target-processor-junction"] = c.ProcessorToProcessor.Target
	default:
		return nil, fmt.Errorf("connection has no kind")
	}
	if len(c.Parameters) > 0 {
		out["parameters"] = c.Parameters
	}
	return out, nil
}

// Package descriptor holds the self-description that realizations expose: their
// technology, junctions, deployment parameters and profiles.
package descriptor

import (
	"slices"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

// ProcessorDescriptor describes a processor realization as rendered for one tenant
type ProcessorDescriptor struct {
	Technology           ProcessorTechnology             `yaml:"technology" json:"technology"`
	RealizationID        ids.ProcessorRealizationID      `yaml:"id" json:"id"`
	Label                string                          `yaml:"label" json:"label"`
	Description          string                          `yaml:"description,omitempty" json:"description,omitempty"`
	Version              string                          `yaml:"version,omitempty" json:"version,omitempty"`
	Icon                 string                          `yaml:"icon,omitempty" json:"icon,omitempty"`
	Tags                 []string                        `yaml:"tags,omitempty" json:"tags,omitempty"`
	InboundJunctions     []JunctionDescriptor            `yaml:"inbound-junctions,omitempty" json:"inbound-junctions,omitempty"`
	OutboundJunctions    []JunctionDescriptor            `yaml:"outbound-junctions,omitempty" json:"outbound-junctions,omitempty"`
	DeploymentParameters []DeploymentParameterDescriptor `yaml:"deployment-parameters,omitempty" json:"deployment-parameters,omitempty"`
	Profiles             []ProfileDescriptor             `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Metadata             map[string]string               `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	MoreInfoURL          string                          `yaml:"more-info-url,omitempty" json:"more-info-url,omitempty"`
	MetricsURL           string                          `yaml:"metrics-url,omitempty" json:"metrics-url,omitempty"`
	ViewerURL            string                          `yaml:"viewer-url,omitempty" json:"viewer-url,omitempty"`
}

// DeploymentParameterDescriptor describes a parameter a processor needs at deploy time
type DeploymentParameterDescriptor struct {
	ID          ids.ParameterID `yaml:"id" json:"id"`
	Type        string          `yaml:"type" json:"type"`
	Label       string          `yaml:"label,omitempty" json:"label,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Default     string          `yaml:"default,omitempty" json:"default,omitempty"`
	Optional    bool            `yaml:"optional,omitempty" json:"optional,omitempty"`
	Options     []string        `yaml:"options,omitempty" json:"options,omitempty"`
}

// ProfileDescriptor describes a deployment profile (instances and resource sizing)
type ProfileDescriptor struct {
	ID          ids.ProfileID `yaml:"id" json:"id"`
	Label       string        `yaml:"label,omitempty" json:"label,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Instances   int           `yaml:"instances,omitempty" json:"instances,omitempty"`
	CPU         float64       `yaml:"cpu,omitempty" json:"cpu,omitempty"`
	Mem         int           `yaml:"mem,omitempty" json:"mem,omitempty"`
}

// InboundJunction returns the inbound junction with the given id
func (d *ProcessorDescriptor) InboundJunction(id ids.JunctionID) (*JunctionDescriptor, bool) {
	return findJunction(d.InboundJunctions, id)
}

// OutboundJunction returns the outbound junction with the given id
func (d *ProcessorDescriptor) OutboundJunction(id ids.JunctionID) (*JunctionDescriptor, bool) {
	return findJunction(d.OutboundJunctions, id)
}

// Profile returns the profile with the given id
func (d *ProcessorDescriptor) Profile(id ids.ProfileID) (*ProfileDescriptor, bool) {
	i := slices.IndexFunc(d.Profiles, func(p ProfileDescriptor) bool { return p.ID == id })
	if i < 0 {
		return nil, false
	}
	return &d.Profiles[i], true
}

func findJunction(junctions []JunctionDescriptor, id ids.JunctionID) (*JunctionDescriptor, bool) {
	i := slices.IndexFunc(junctions, func(j JunctionDescriptor) bool { return j.ID == id })
	if i < 0 {
		return nil, false
	}
	return &junctions[i], true
}

// Render returns a copy of d with the tenant placeholders expanded in its
// text fields. Junctions, parameters and profiles are copied as is.
func (d ProcessorDescriptor) Render(tenant Tenant) ProcessorDescriptor {
	out := d
	out.Description = tenant.Expand(d.Description)
	out.MoreInfoURL = tenant.Expand(d.MoreInfoURL)
	out.MetricsURL = tenant.Expand(d.MetricsURL)
	out.ViewerURL = tenant.Expand(d.ViewerURL)
	out.Metadata = tenant.expandMap(d.Metadata)
	out.Tags = slices.Clone(d.Tags)
	out.InboundJunctions = cloneJunctions(d.InboundJunctions)
	out.OutboundJunctions = cloneJunctions(d.OutboundJunctions)
	out.DeploymentParameters = slices.Clone(d.DeploymentParameters)
	out.Profiles = slices.Clone(d.Profiles)
	return out
}

func cloneJunctions(in []JunctionDescriptor) []JunctionDescriptor {
	if in == nil {
		return nil
	}
	out := make([]JunctionDescriptor, len(in))
	for i, j := range in {
		j.AllowedResourceTypes = slices.Clone(j.AllowedResourceTypes)
		out[i] = j
	}
	return out
}

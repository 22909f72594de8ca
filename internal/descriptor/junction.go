package descriptor

import (
	"slices"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

// JunctionDescriptor describes one inbound or outbound port of a processor realization.
//
// A junction does not name concrete resources. It only declares which kinds of
// resource it accepts, so resource realizations can be swapped without touching the
// processor.
type JunctionDescriptor struct {
	ID                 ids.JunctionID     `yaml:"id" json:"id"`
	Caption            string             `yaml:"caption,omitempty" json:"caption,omitempty"`
	Description        string             `yaml:"description,omitempty" json:"description,omitempty"`
	JunctionTechnology JunctionTechnology `yaml:"junction-technology" json:"junction-technology"`
	// MinimumNumberOfResources and MaximumNumberOfResources bound how many resources
	// may be attached. A maximum of zero means unbounded.
	MinimumNumberOfResources int                  `yaml:"minimum-number-of-resources,omitempty" json:"minimum-number-of-resources,omitempty"`
	MaximumNumberOfResources int                  `yaml:"maximum-number-of-resources,omitempty" json:"maximum-number-of-resources,omitempty"`
	AllowedResourceTypes     []ResourceTechnology `yaml:"allowed-resource-types" json:"allowed-resource-types"`
}

// IsResourceTechnologyCompatible reports whether resources of the given technology
// may be attached to this junction
func (j JunctionDescriptor) IsResourceTechnologyCompatible(technology ResourceTechnology) bool {
	return slices.Contains(j.AllowedResourceTypes, technology)
}

// AllowedResourceTypesString renders the allowed technologies as "Topic|Bucket"
func (j JunctionDescriptor) AllowedResourceTypesString() string {
	names := make([]string, len(j.AllowedResourceTypes))
	for i, t := range j.AllowedResourceTypes {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}

// AcceptsCount reports whether n attached resources fall within the junction's bounds
func (j JunctionDescriptor) AcceptsCount(n int) bool {
	if n < j.MinimumNumberOfResources {
		return false
	}
	return j.MaximumNumberOfResources == 0 || n <= j.MaximumNumberOfResources
}

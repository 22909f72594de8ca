package descriptor

import "github.com/kpn-dsh/dsh-cli-sub000/internal/ids"

// ResourceDescriptor describes a resource realization
type ResourceDescriptor struct {
	Technology    ResourceTechnology        `yaml:"technology" json:"technology"`
	RealizationID ids.ResourceRealizationID `yaml:"id" json:"id"`
	Label         string                    `yaml:"label" json:"label"`
	Description   string                    `yaml:"description,omitempty" json:"description,omitempty"`
	Version       string                    `yaml:"version,omitempty" json:"version,omitempty"`
	Metadata      map[string]string         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	URL           string                    `yaml:"url,omitempty" json:"url,omitempty"`
}

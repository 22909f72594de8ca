package descriptor

import (
	"fmt"
	"strings"
)

// ProcessorTechnology is the runtime kind of a processor realization
type ProcessorTechnology string

const (
	// DshService is a long running service deployed on the platform
	DshService ProcessorTechnology = "DshService"
	// DshApp is an app from the platform's app catalog
	DshApp ProcessorTechnology = "DshApp"
	// Application is a generic application managed outside the app catalog
	Application ProcessorTechnology = "Application"
)

// ResourceTechnology is the kind of a resource realization
type ResourceTechnology string

const (
	Topic  ResourceTechnology = "Topic"
	Bucket ResourceTechnology = "Bucket"
	Volume ResourceTechnology = "Volume"
	Secret ResourceTechnology = "Secret"
)

// JunctionTechnology is the transport a junction uses to exchange data
type JunctionTechnology string

const (
	// JunctionDshTopic exchanges data through platform topics
	JunctionDshTopic JunctionTechnology = "DshTopic"
	// JunctionGrpc exchanges data directly between processors
	JunctionGrpc JunctionTechnology = "Grpc"
)

var (
	processorTechnologies = []ProcessorTechnology{DshService, DshApp, Application}
	resourceTechnologies  = []ResourceTechnology{Topic, Bucket, Volume, Secret}
	junctionTechnologies  = []JunctionTechnology{JunctionDshTopic, JunctionGrpc}
)

// normalize folds case and separators so "dsh-service", "DSH_SERVICE" and
// "DshService" compare equal
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func lookup[T ~string](kind string, known []T, s string) (T, error) {
	n := normalize(s)
	for _, t := range known {
		if normalize(string(t)) == n {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown %s technology '%s'", kind, s)
}

// ParseProcessorTechnology parses a processor technology name, ignoring case and separators
func ParseProcessorTechnology(s string) (ProcessorTechnology, error) {
	return lookup("processor", processorTechnologies, s)
}

// ParseResourceTechnology parses a resource technology name, ignoring case and separators
func ParseResourceTechnology(s string) (ResourceTechnology, error) {
	return lookup("resource", resourceTechnologies, s)
}

// ParseJunctionTechnology parses a junction technology name, ignoring case and separators
func ParseJunctionTechnology(s string) (JunctionTechnology, error) {
	return lookup("junction", junctionTechnologies, s)
}

// ProcessorTechnologies returns all known processor technologies
func ProcessorTechnologies() []ProcessorTechnology {
	return append([]ProcessorTechnology(nil), processorTechnologies...)
}

// ResourceTechnologies returns all known resource technologies
func ResourceTechnologies() []ResourceTechnology {
	return append([]ResourceTechnology(nil), resourceTechnologies...)
}

func (t ProcessorTechnology) String() string { return string(t) }
func (t ResourceTechnology) String() string  { return string(t) }
func (t JunctionTechnology) String() string  { return string(t) }

func (t *ProcessorTechnology) UnmarshalText(text []byte) error {
	parsed, err := ParseProcessorTechnology(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *ResourceTechnology) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceTechnology(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *JunctionTechnology) UnmarshalText(text []byte) error {
	parsed, err := ParseJunctionTechnology(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

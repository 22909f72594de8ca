// Package ids defines the validated identifier types used throughout pipeline
// definitions and realization catalogs.
//
// Every identifier is a string newtype. Values are created through a validating
// constructor (NewXxx) or, for literals known to be valid, through MustXxx. The
// types implement encoding.TextUnmarshaler so that YAML and JSON decoding apply the
// same validation.
package ids

import (
	"fmt"
	"regexp"
)

var (
	// nameRe matches pipeline, processor, resource, junction, parameter and profile ids.
	nameRe = regexp.MustCompile(`^[a-z][a-z0-9-]{0,49}$`)

	// realizationRe matches realization ids, which are catalog keys such as
	// "dsh-topic" or "replicator/v2".
	realizationRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._/-]{0,99}$`)
)

// InvalidIDError is returned when a string is not a valid identifier of some kind
type InvalidIDError struct {
	Kind  string
	Value string
}

// Error implements the error interface
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id '%s'", e.Kind, e.Value)
}

type (
	// PipelineID identifies a pipeline.
	PipelineID string
	// ProcessorID identifies a processor within a pipeline.
	ProcessorID string
	// ResourceID identifies a resource within a pipeline.
	ResourceID string
	// JunctionID identifies an inbound or outbound junction of a processor realization.
	JunctionID string
	// ParameterID identifies a deployment or connection parameter.
	ParameterID string
	// ProfileID identifies a deployment profile of a processor realization.
	ProfileID string
	// ProcessorRealizationID is the catalog key of a processor realization.
	ProcessorRealizationID string
	// ResourceRealizationID is the catalog key of a resource realization.
	ResourceRealizationID string
)

func parse[T ~string](kind string, re *regexp.Regexp, s string) (T, error) {
	if !re.MatchString(s) {
		return "", &InvalidIDError{Kind: kind, Value: s}
	}
	return T(s), nil
}

func must[T ~string](id T, err error) T {
	if err != nil {
		panic(err)
	}
	return id
}

func unmarshal[T ~string](dst *T, kind string, re *regexp.Regexp, text []byte) error {
	id, err := parse[T](kind, re, string(text))
	if err != nil {
		return err
	}
	*dst = id
	return nil
}

// NewPipelineID validates s as a pipeline id
func NewPipelineID(s string) (PipelineID, error) { return parse[PipelineID]("pipeline", nameRe, s) }

// NewProcessorID validates s as a processor id
func NewProcessorID(s string) (ProcessorID, error) {
	return parse[ProcessorID]("processor", nameRe, s)
}

// NewResourceID validates s as a resource id
func NewResourceID(s string) (ResourceID, error) { return parse[ResourceID]("resource", nameRe, s) }

// NewJunctionID validates s as a junction id
func NewJunctionID(s string) (JunctionID, error) { return parse[JunctionID]("junction", nameRe, s) }

// NewParameterID validates s as a parameter id
func NewParameterID(s string) (ParameterID, error) {
	return parse[ParameterID]("parameter", nameRe, s)
}

// NewProfileID validates s as a profile id
func NewProfileID(s string) (ProfileID, error) { return parse[ProfileID]("profile", nameRe, s) }

// NewProcessorRealizationID validates s as a processor realization id
func NewProcessorRealizationID(s string) (ProcessorRealizationID, error) {
	return parse[ProcessorRealizationID]("processor realization", realizationRe, s)
}

// NewResourceRealizationID validates s as a resource realization id
func NewResourceRealizationID(s string) (ResourceRealizationID, error) {
	return parse[ResourceRealizationID]("resource realization", realizationRe, s)
}

// MustPipelineID and the other MustXxx functions below panic on an invalid id.
// Use them for literals only.
func MustPipelineID(s string) PipelineID   { return must(NewPipelineID(s)) }
func MustProcessorID(s string) ProcessorID { return must(NewProcessorID(s)) }
func MustResourceID(s string) ResourceID   { return must(NewResourceID(s)) }
func MustJunctionID(s string) JunctionID   { return must(NewJunctionID(s)) }
func MustParameterID(s string) ParameterID { return must(NewParameterID(s)) }
func MustProfileID(s string) ProfileID     { return must(NewProfileID(s)) }

// MustProcessorRealizationID panics on an invalid processor realization id
func MustProcessorRealizationID(s string) ProcessorRealizationID {
	return must(NewProcessorRealizationID(s))
}

// MustResourceRealizationID panics on an invalid resource realization id
func MustResourceRealizationID(s string) ResourceRealizationID {
	return must(NewResourceRealizationID(s))
}

func (id PipelineID) String() string             { return string(id) }
func (id ProcessorID) String() string            { return string(id) }
func (id ResourceID) String() string             { return string(id) }
func (id JunctionID) String() string             { return string(id) }
func (id ParameterID) String() string            { return string(id) }
func (id ProfileID) String() string              { return string(id) }
func (id ProcessorRealizationID) String() string { return string(id) }
func (id ResourceRealizationID) String() string  { return string(id) }

// UnmarshalText decodes and validates a pipeline id
func (id *PipelineID) UnmarshalText(text []byte) error {
	return unmarshal(id, "pipeline", nameRe, text)
}

// UnmarshalText decodes and validates a processor id
func (id *ProcessorID) UnmarshalText(text []byte) error {
	return unmarshal(id, "processor", nameRe, text)
}

// UnmarshalText decodes and validates a resource id
func (id *ResourceID) UnmarshalText(text []byte) error {
	return unmarshal(id, "resource", nameRe, text)
}

// UnmarshalText decodes and validates a junction id
func (id *JunctionID) UnmarshalText(text []byte) error {
	return unmarshal(id, "junction", nameRe, text)
}

// UnmarshalText decodes and validates a parameter id
func (id *ParameterID) UnmarshalText(text []byte) error {
	return unmarshal(id, "parameter", nameRe, text)
}

// UnmarshalText decodes and validates a profile id
func (id *ProfileID) UnmarshalText(text []byte) error {
	return unmarshal(id, "profile", nameRe, text)
}

// UnmarshalText decodes and validates a processor realization id
func (id *ProcessorRealizationID) UnmarshalText(text []byte) error {
	return unmarshal(id, "processor realization", realizationRe, text)
}

// UnmarshalText decodes and validates a resource realization id
func (id *ResourceRealizationID) UnmarshalText(text []byte) error {
	return unmarshal(id, "resource realization", realizationRe, text)
}

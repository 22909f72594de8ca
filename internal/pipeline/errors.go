package pipeline

import (
	"fmt"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

// Direction of a junction relative to its processor
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Role of a processor in a connection
type Role string

const (
	SourceRole Role = "source"
	TargetRole Role = "target"
)

// MissingRealizationError is returned when a realization id is not in its registry.
// The message names the registry that was searched, so an unknown resource
// realization reads "resource realization '<id>' does not exist".
type MissingRealizationError struct {
	Kind string // "processor" or "resource"
	ID   string
}

func (e *MissingRealizationError) Error() string {
	return fmt.Sprintf("%s realization '%s' does not exist", e.Kind, e.ID)
}

// MissingProcessorError is returned when a connection names a processor the
// pipeline does not define
type MissingProcessorError struct {
	Pipeline  ids.PipelineID
	Processor ids.ProcessorID
	Role      Role
}

func (e *MissingProcessorError) Error() string {
	return fmt.Sprintf("pipeline '%s' contains no definition for %s processor '%s'", e.Pipeline, e.Role, e.Processor)
}

// MissingResourceError is returned when a connection names a resource the
// pipeline does not define
type MissingResourceError struct {
	Pipeline ids.PipelineID
	Resource ids.ResourceID
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("pipeline '%s' contains no definition for resource '%s'", e.Pipeline, e.Resource)
}

// MissingJunctionError is returned when a processor descriptor lacks a junction
type MissingJunctionError struct {
	Processor ids.ProcessorID
	Junction  ids.JunctionID
	Direction Direction
	Role      Role
}

func (e *MissingJunctionError) Error() string {
	return fmt.Sprintf("%s processor '%s' has no %s junction '%s'", e.Role, e.Processor, e.Direction, e.Junction)
}

// EmptyResourceListError is returned for a connection without resources
type EmptyResourceListError struct {
	Pipeline ids.PipelineID
}

func (e *EmptyResourceListError) Error() string {
	return fmt.Sprintf("connection with empty resources list in pipeline '%s'", e.Pipeline)
}

// IncompatibleTechnologyError is returned when an inbound junction does not accept
// a resource's technology
type IncompatibleTechnologyError struct {
	Resource  ids.ResourceID
	Actual    descriptor.ResourceTechnology
	Processor ids.ProcessorID
	Junction  ids.JunctionID
	Expected  []descriptor.ResourceTechnology
}

func (e *IncompatibleTechnologyError) Error() string {
	expected := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		expected[i] = t.String()
	}
	return fmt.Sprintf("resource '%s' has technology %s, but inbound junction '%s' of processor '%s' expects %s",
		e.Resource, e.Actual, e.Junction, e.Processor, strings.Join(expected, "|"))
}

// DuplicateIDError is returned when a pipeline declares the same resource or
// processor id twice
type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id '%s'", e.Kind, e.ID)
}

// MissingProfileError is returned when a processor names a profile its
// realization does not offer
type MissingProfileError struct {
	Processor ids.ProcessorID
	Profile   ids.ProfileID
}

func (e *MissingProfileError) Error() string {
	return fmt.Sprintf("processor '%s' has no profile '%s'", e.Processor, e.Profile)
}

// InvalidConnectionError is returned for a connection that does not set exactly
// one connection kind
type InvalidConnectionError struct {
	Pipeline ids.PipelineID
	Index    int
	Variants int
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("connection %d in pipeline '%s' sets %d connection kinds, expected exactly one", e.Index, e.Pipeline, e.Variants)
}

// Package validator compiles a pipeline config and reports errors, warnings and
// hints about it in a form meant for people.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/pipeline"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/registry"
)

// ValidationResult represents the result of pipeline validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
	Hints    []string
	Pipeline *pipeline.Pipeline
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	Fix     string
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// Validator validates pipeline configurations
type Validator struct {
	config     *model.PipelineConfig
	tenant     descriptor.Tenant
	resources  registry.ResourceRegistry
	processors registry.ProcessorRegistry
}

// NewValidator creates a new validator
func NewValidator(
	config *model.PipelineConfig,
	tenant descriptor.Tenant,
	resources registry.ResourceRegistry,
	processors registry.ProcessorRegistry,
) *Validator {
	return &Validator{
		config:     config,
		tenant:     tenant,
		resources:  resources,
		processors: processors,
	}
}

// Validate compiles the pipeline and, when that succeeds, runs the advisory checks
func (v *Validator) Validate() *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Hints:    []string{},
	}

	p, err := pipeline.Create(v.config, v.tenant, v.resources, v.processors)
	if err != nil {
		result.Errors = append(result.Errors, buildError(err))
		result.Valid = false
		return result
	}
	result.Pipeline = p

	v.validateUnconnectedProcessors(result)
	v.validateUnusedResources(result)
	v.validateJunctionBounds(result)
	v.validateProfiles(result)
	v.addTopologyHints(result)

	return result
}

// buildError turns a builder error into a report entry with a suggested fix
func buildError(err error) ValidationError {
	var (
		missingRealization *pipeline.MissingRealizationError
		missingProcessor   *pipeline.MissingProcessorError
		missingResource    *pipeline.MissingResourceError
		missingJunction    *pipeline.MissingJunctionError
		emptyList          *pipeline.EmptyResourceListError
		incompatible       *pipeline.IncompatibleTechnologyError
		duplicate          *pipeline.DuplicateIDError
		missingProfile     *pipeline.MissingProfileError
		invalidConnection  *pipeline.InvalidConnectionError
	)

	out := ValidationError{Message: err.Error()}
	switch {
	case errors.As(err, &missingRealization):
		out.Field = missingRealization.Kind + "s"
		out.Fix = fmt.Sprintf("Add %s realization '%s' to the catalog or correct the id", missingRealization.Kind, missingRealization.ID)
	case errors.As(err, &missingProcessor):
		out.Field = "connections"
		out.Fix = fmt.Sprintf("Declare processor '%s' under processors", missingProcessor.Processor)
	case errors.As(err, &missingResource):
		out.Field = "connections"
		out.Fix = fmt.Sprintf("Declare resource '%s' under resources", missingResource.Resource)
	case errors.As(err, &missingJunction):
		out.Field = "connections"
		out.Fix = fmt.Sprintf("Use one of the %s junctions of processor '%s' (see 'dshpipe catalog show')", missingJunction.Direction, missingJunction.Processor)
	case errors.As(err, &emptyList):
		out.Field = "connections"
		out.Fix = "List at least one resource id in the connection"
	case errors.As(err, &incompatible):
		out.Field = "resources"
		out.Fix = fmt.Sprintf("Use a resource of technology %s or connect a different junction", technologies(incompatible.Expected))
	case errors.As(err, &duplicate):
		out.Field = duplicate.Kind + "s"
		out.Fix = "Use unique ids for each " + duplicate.Kind
	case errors.As(err, &missingProfile):
		out.Field = "processors"
		out.Fix = fmt.Sprintf("Remove profile-id or pick a profile offered by processor '%s'", missingProfile.Processor)
	case errors.As(err, &invalidConnection):
		out.Field = fmt.Sprintf("connections[%d]", invalidConnection.Index)
		out.Fix = "Give the connection exactly one kind"
	}
	return out
}

// validateUnconnectedProcessors warns about processors no connection touches
func (v *Validator) validateUnconnectedProcessors(result *ValidationResult) {
	used := make(map[ids.ProcessorID]bool)
	for _, c := range v.config.Connections {
		switch {
		case c.ResourcesToProcessor != nil:
			used[c.ResourcesToProcessor.Target.ProcessorID] = true
		case c.ProcessorToResources != nil:
			used[c.ProcessorToResources.Source.ProcessorID] = true
		case c.ProcessorToProcessor != nil:
			used[c.ProcessorToProcessor.Source.ProcessorID] = true
			used[c.ProcessorToProcessor.Target.ProcessorID] = true
		}
	}

	for _, proc := range result.Pipeline.SortedProcessors() {
		if !used[proc.ID] {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   fmt.Sprintf("processors.%s", proc.ID),
				Message: fmt.Sprintf("Processor '%s' is not connected", proc.ID),
				Hint:    "Add a connection to or from one of its junctions, or remove it",
			})
		}
	}
}

// validateUnusedResources warns about resources no connection references
func (v *Validator) validateUnusedResources(result *ValidationResult) {
	used := make(map[ids.ResourceID]bool)
	for _, c := range v.config.Connections {
		switch {
		case c.ResourcesToProcessor != nil:
			for _, id := range c.ResourcesToProcessor.SourceResourceIDs {
				used[id] = true
			}
		case c.ProcessorToResources != nil:
			for _, id := range c.ProcessorToResources.TargetResourceIDs {
				used[id] = true
			}
		}
	}

	for _, res := range result.Pipeline.SortedResources() {
		if !used[res.ID] {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   fmt.Sprintf("resources.%s", res.ID),
				Message: fmt.Sprintf("Resource '%s' is not used by any connection", res.ID),
				Hint:    "Unused resources still constrain every inbound junction's technology check",
			})
		}
	}
}

type junctionKey struct {
	processor ids.ProcessorID
	junction  ids.JunctionID
	direction pipeline.Direction
}

// validateJunctionBounds warns when a junction gets fewer or more resources than
// its descriptor allows
func (v *Validator) validateJunctionBounds(result *ValidationResult) {
	counts := make(map[junctionKey]int)
	for _, c := range v.config.Connections {
		switch {
		case c.ResourcesToProcessor != nil:
			t := c.ResourcesToProcessor.Target
			counts[junctionKey{t.ProcessorID, t.Junction, pipeline.Inbound}] += len(c.ResourcesToProcessor.SourceResourceIDs)
		case c.ProcessorToResources != nil:
			s := c.ProcessorToResources.Source
			counts[junctionKey{s.ProcessorID, s.Junction, pipeline.Outbound}] += len(c.ProcessorToResources.TargetResourceIDs)
		}
	}

	for _, proc := range result.Pipeline.SortedProcessors() {
		check := func(js []descriptor.JunctionDescriptor, dir pipeline.Direction) {
			for _, j := range js {
				// junctions fed by another processor are not counted
				if j.JunctionTechnology == descriptor.JunctionGrpc {
					continue
				}
				n := counts[junctionKey{proc.ID, j.ID, dir}]
				if j.AcceptsCount(n) {
					continue
				}
				result.Warnings = append(result.Warnings, ValidationWarning{
					Field:   fmt.Sprintf("processors.%s.%s", proc.ID, j.ID),
					Message: fmt.Sprintf("%s junction '%s' of processor '%s' has %d resource(s)", capitalize(string(dir)), j.ID, proc.ID, n),
					Hint:    boundsHint(j),
				})
			}
		}
		check(proc.Descriptor.InboundJunctions, pipeline.Inbound)
		check(proc.Descriptor.OutboundJunctions, pipeline.Outbound)
	}
}

// validateProfiles hints at processors running without an explicit profile
func (v *Validator) validateProfiles(result *ValidationResult) {
	for _, proc := range result.Pipeline.SortedProcessors() {
		if proc.ProfileID == nil && len(proc.Descriptor.Profiles) > 1 {
			result.Hints = append(result.Hints,
				fmt.Sprintf("Processor '%s' offers %d profiles; set profile-id to pick one", proc.ID, len(proc.Descriptor.Profiles)))
		}
	}
}

// addTopologyHints summarises how processors are linked
func (v *Validator) addTopologyHints(result *ValidationResult) {
	direct := 0
	for _, c := range result.Pipeline.Connections {
		if _, ok := c.Type.(pipeline.ProcessorToProcessor); ok {
			direct++
		}
	}
	if direct > 0 {
		result.Hints = append(result.Hints, fmt.Sprintf("%d direct processor-to-processor link(s): these bypass resources", direct))
	}
}

func boundsHint(j descriptor.JunctionDescriptor) string {
	if j.MaximumNumberOfResources == 0 {
		return fmt.Sprintf("Expected at least %d", j.MinimumNumberOfResources)
	}
	return fmt.Sprintf("Expected between %d and %d", j.MinimumNumberOfResources, j.MaximumNumberOfResources)
}

func technologies(ts []descriptor.ResourceTechnology) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, " or ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var (
	passed  = color.New(color.FgGreen, color.Bold).SprintFunc()
	failed  = color.New(color.FgRed, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
)

// Format returns a human-readable string representation of the validation result
func (r *ValidationResult) Format() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString(passed("✓ Pipeline validation passed") + "\n")
		sb.WriteString(fmt.Sprintf("  %d components total", r.countComponents()))

		if len(r.Warnings) > 0 || len(r.Hints) > 0 {
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(failed(fmt.Sprintf("✗ Pipeline validation failed with %d error(s)", len(r.Errors))) + "\n")
	}

	// Print errors
	for _, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("\n%s %s\n", failed("ERROR:"), err.Message))
		if err.Field != "" {
			sb.WriteString(fmt.Sprintf("  Field: %s\n", err.Field))
		}
		if err.Fix != "" {
			sb.WriteString(fmt.Sprintf("  Fix: %s\n", err.Fix))
		}
	}

	// Print warnings
	for _, warn := range r.Warnings {
		sb.WriteString(fmt.Sprintf("\n%s %s\n", warning("WARNING:"), warn.Message))
		if warn.Field != "" {
			sb.WriteString(fmt.Sprintf("  Field: %s\n", warn.Field))
		}
		if warn.Hint != "" {
			sb.WriteString(fmt.Sprintf("  Hint: %s\n", warn.Hint))
		}
	}

	// Print hints
	if len(r.Hints) > 0 {
		sb.WriteString("\n")
		for _, hint := range r.Hints {
			sb.WriteString(fmt.Sprintf("💡 %s\n", hint))
		}
	}

	return sb.String()
}

// countComponents counts resources and processors of the compiled pipeline
func (r *ValidationResult) countComponents() int {
	if r.Pipeline == nil {
		return 0
	}
	return len(r.Pipeline.Resources) + len(r.Pipeline.Processors)
}

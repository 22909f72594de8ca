package pipeline

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

// Status of a deployed pipeline
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// DeploymentState tracks the lifecycle of a pipeline on a platform:
// NotDeployed, or Deployed with a Status. The zero value is NotDeployed.
type DeploymentState struct {
	deployed bool
	status   Status
}

// InvalidTransitionError is returned for a lifecycle operation that is not
// allowed in the current state
type InvalidTransitionError struct {
	Operation string
	State     DeploymentState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s pipeline that is %s", e.Operation, e.State)
}

// Deployed reports whether the pipeline is deployed
func (s DeploymentState) Deployed() bool { return s.deployed }

// Status returns the status of a deployed pipeline, or "" when not deployed
func (s DeploymentState) Status() Status { return s.status }

func (s DeploymentState) String() string {
	if !s.deployed {
		return "not deployed"
	}
	return fmt.Sprintf("deployed (%s)", s.status)
}

// Deploy moves a not deployed pipeline to deployed with an unknown status
func (s DeploymentState) Deploy() (DeploymentState, error) {
	if s.deployed {
		return s, &InvalidTransitionError{Operation: "deploy", State: s}
	}
	return DeploymentState{deployed: true, status: StatusUnknown}, nil
}

// Start marks a deployed pipeline as up
func (s DeploymentState) Start() (DeploymentState, error) {
	if !s.deployed || s.status == StatusUp {
		return s, &InvalidTransitionError{Operation: "start", State: s}
	}
	return DeploymentState{deployed: true, status: StatusUp}, nil
}

// Stop marks a deployed pipeline as down
func (s DeploymentState) Stop() (DeploymentState, error) {
	if !s.deployed || s.status == StatusDown {
		return s, &InvalidTransitionError{Operation: "stop", State: s}
	}
	return DeploymentState{deployed: true, status: StatusDown}, nil
}

// Undeploy returns a deployed pipeline to not deployed
func (s DeploymentState) Undeploy() (DeploymentState, error) {
	if !s.deployed {
		return s, &InvalidTransitionError{Operation: "undeploy", State: s}
	}
	return DeploymentState{}, nil
}

// CompatibleResources lists the pipeline resources, ordered by id, that the given
// inbound junction of a processor accepts
func (p *Pipeline) CompatibleResources(processorID ids.ProcessorID, junctionID ids.JunctionID) ([]*Resource, error) {
	proc, ok := p.Processors[processorID]
	if !ok {
		return nil, &MissingProcessorError{Pipeline: p.ID, Processor: processorID, Role: TargetRole}
	}
	junction, ok := proc.Descriptor.InboundJunction(junctionID)
	if !ok {
		return nil, &MissingJunctionError{Processor: processorID, Junction: junctionID, Direction: Inbound, Role: TargetRole}
	}

	var out []*Resource
	for _, r := range p.SortedResources() {
		if junction.IsResourceTechnologyCompatible(r.Technology) {
			out = append(out, r)
		}
	}
	return out, nil
}

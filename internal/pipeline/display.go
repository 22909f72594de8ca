package pipeline

import (
	"fmt"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
)

// String renders the pipeline as an indented outline. Resources and processors are
// ordered by id, connections keep their config order.
func (p *Pipeline) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "pipeline: %s\n", p.ID)

	sb.WriteString("  resources\n")
	for _, r := range p.SortedResources() {
		fmt.Fprintf(&sb, "    %s:%s(%s,%s)\n", r.ID, r.Technology, r.RealizationID, r.Name)
	}

	sb.WriteString("  processors\n")
	for _, proc := range p.SortedProcessors() {
		fmt.Fprintf(&sb, "    %s:%s(%s,%s)\n", proc.ID, proc.Technology, proc.RealizationID, proc.Name)
		if len(proc.Descriptor.InboundJunctions) > 0 {
			fmt.Fprintf(&sb, "      inbound junctions: %s\n", junctionList(proc.Descriptor.InboundJunctions))
		}
		if len(proc.Descriptor.OutboundJunctions) > 0 {
			fmt.Fprintf(&sb, "      outbound junctions: %s\n", junctionList(proc.Descriptor.OutboundJunctions))
		}
	}

	sb.WriteString("  connections\n")
	for _, c := range p.Connections {
		fmt.Fprintf(&sb, "    %s\n", c)
	}

	return sb.String()
}

// String renders the connection as "<kind>: <source> -> <target>"
func (c Connection) String() string {
	switch t := c.Type.(type) {
	case ResourcesToProcessor:
		return fmt.Sprintf("%s: %s -> %s", t.abbreviation(), resourceList(t.SourceResources), t.TargetJunction)
	case ProcessorToResources:
		return fmt.Sprintf("%s: %s -> %s", t.abbreviation(), t.SourceJunction, resourceList(t.TargetResources))
	case ProcessorToProcessor:
		return fmt.Sprintf("%s: %s -> %s", t.abbreviation(), t.SourceJunction, t.TargetJunction)
	default:
		return "unknown connection"
	}
}

func resourceList(rs []ResourceIdentifier) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func junctionList(js []descriptor.JunctionDescriptor) string {
	parts := make([]string, len(js))
	for i, j := range js {
		parts[i] = j.ID.String()
	}
	return strings.Join(parts, ", ")
}

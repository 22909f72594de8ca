package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// graphView is the serializable form of a compiled pipeline
type graphView struct {
	Pipeline    string          `yaml:"pipeline" json:"pipeline"`
	Name        string          `yaml:"name" json:"name"`
	Resources   []resourceView  `yaml:"resources" json:"resources"`
	Processors  []processorView `yaml:"processors" json:"processors"`
	Connections []string        `yaml:"connections" json:"connections"`
}

type resourceView struct {
	ID         string            `yaml:"id" json:"id"`
	Name       string            `yaml:"name" json:"name"`
	Identifier string            `yaml:"identifier" json:"identifier"`
	Parameters map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

type processorView struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name"`
	Technology        string            `yaml:"technology" json:"technology"`
	Realization       string            `yaml:"realization" json:"realization"`
	Profile           string            `yaml:"profile,omitempty" json:"profile,omitempty"`
	InboundJunctions  []string          `yaml:"inbound-junctions,omitempty" json:"inbound-junctions,omitempty"`
	OutboundJunctions []string          `yaml:"outbound-junctions,omitempty" json:"outbound-junctions,omitempty"`
	Parameters        map[string]string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

func newGraphView(p *pipeline.Pipeline) graphView {
	view := graphView{
		Pipeline:    p.ID.String(),
		Name:        p.Name,
		Resources:   []resourceView{},
		Processors:  []processorView{},
		Connections: []string{},
	}

	for _, r := range p.SortedResources() {
		view.Resources = append(view.Resources, resourceView{
			ID:         r.ID.String(),
			Name:       r.Name,
			Identifier: r.Identifier().String(),
			Parameters: stringParams(r.Parameters),
		})
	}

	for _, proc := range p.SortedProcessors() {
		pv := processorView{
			ID:          proc.ID.String(),
			Name:        proc.Name,
			Technology:  proc.Technology.String(),
			Realization: proc.RealizationID.String(),
			Parameters:  stringParams(proc.Parameters),
		}
		if proc.ProfileID != nil {
			pv.Profile = proc.ProfileID.String()
		}
		for _, j := range proc.Descriptor.InboundJunctions {
			pv.InboundJunctions = append(pv.InboundJunctions, j.ID.String())
		}
		for _, j := range proc.Descriptor.OutboundJunctions {
			pv.OutboundJunctions = append(pv.OutboundJunctions, j.ID.String())
		}
		view.Processors = append(view.Processors, pv)
	}

	for _, c := range p.Connections {
		view.Connections = append(view.Connections, c.String())
	}
	return view
}

func stringParams[K ~string](params map[K]string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[string(k)] = v
	}
	return out
}

// writeStructured writes v as YAML or JSON
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}

// writePipeline writes a compiled pipeline in the configured format
func writePipeline(w io.Writer, format string, p *pipeline.Pipeline) error {
	if format == config.OutputText {
		_, err := io.WriteString(w, p.String())
		return err
	}
	return writeStructured(w, format, newGraphView(p))
}

// Package model defines the pipeline file format and loads it from YAML.
package model

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

// newValidator reports field names by their yaml key so messages match the file
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// LoadPipelineFromFile loads a pipeline config from a YAML file
func LoadPipelineFromFile(filePath string) (*PipelineConfig, error) {
	logger.Debug("Loading pipeline from file", zap.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}

	cfg, err := LoadPipelineFromBytes(data)
	if err != nil {
		return nil, err
	}

	logger.Debug("Successfully loaded pipeline",
		zap.String("pipeline", cfg.PipelineID.String()),
		zap.Int("resources", len(cfg.Resources)),
		zap.Int("processors", len(cfg.Processors)),
		zap.Int("connections", len(cfg.Connections)))

	return cfg, nil
}

// LoadPipelineFromBytes loads a pipeline config from YAML bytes
func LoadPipelineFromBytes(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline YAML: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("pipeline validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the structural rules of a pipeline config: required fields and
// well formed connections. Reference resolution is left to the pipeline builder.
func Validate(cfg *PipelineConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return formatFieldErrors(fieldErrs)
		}
		return err
	}

	for i, c := range cfg.Connections {
		if n := c.Variants(); n != 1 {
			return fmt.Errorf("connections[%d]: expected exactly one connection kind, found %d", i, n)
		}
		var junctions []ProcessorJunctionConfig
		switch {
		case c.ResourcesToProcessor != nil:
			junctions = append(junctions, c.ResourcesToProcessor.Target)
		case c.ProcessorToResources != nil:
			junctions = append(junctions, c.ProcessorToResources.Source)
		case c.ProcessorToProcessor != nil:
			junctions = append(junctions, c.ProcessorToProcessor.Source, c.ProcessorToProcessor.Target)
		}
		for _, j := range junctions {
			if err := validate.Struct(j); err != nil {
				return fmt.Errorf("connections[%d] (%s): processor junction requires processor-id and junction", i, c.Kind())
			}
		}
	}

	return nil
}

// formatFieldErrors joins validator field errors into a single message
func formatFieldErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		// strip the root struct name from the namespace
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		msgs = append(msgs, fmt.Sprintf("%s is %s", field, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

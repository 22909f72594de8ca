package registry

import (
	"errors"
	"testing"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/realization"
)

func mustApplication(t *testing.T, id string) realization.ProcessorRealization {
	t.Helper()
	app, err := realization.NewApplication(descriptor.ProcessorDescriptor{RealizationID: ids.MustProcessorRealizationID(id)})
	if err != nil {
		t.Fatalf("Failed to create application %s: %v", id, err)
	}
	return app
}

func mustTopic(t *testing.T, id string) realization.ResourceRealization {
	t.Helper()
	topic, err := realization.NewTopic(descriptor.ResourceDescriptor{RealizationID: ids.MustResourceRealizationID(id)}, 1, 1)
	if err != nil {
		t.Fatalf("Failed to create topic %s: %v", id, err)
	}
	return topic
}

func TestRegistryLookup(t *testing.T) {
	reg, err := New(
		[]realization.ProcessorRealization{mustApplication(t, "pk"), mustApplication(t, "aggregator")},
		[]realization.ResourceRealization{mustTopic(t, "rk")},
	)
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}

	if p, ok := reg.ProcessorRealization("pk"); !ok || p.ID() != "pk" {
		t.Errorf("ProcessorRealization(pk) = %v, %v", p, ok)
	}
	if _, ok := reg.ProcessorRealization("missing"); ok {
		t.Error("ProcessorRealization(missing) should not be found")
	}
	if r, ok := reg.ResourceRealization("rk"); !ok || r.Technology() != descriptor.Topic {
		t.Errorf("ResourceRealization(rk) = %v, %v", r, ok)
	}

	list := reg.ProcessorRealizations()
	if len(list) != 2 || list[0].ID() != "aggregator" || list[1].ID() != "pk" {
		t.Errorf("ProcessorRealizations() not sorted by id: %v", list)
	}
	if len(reg.ResourceRealizations()) != 1 {
		t.Errorf("ResourceRealizations() length = %d, want 1", len(reg.ResourceRealizations()))
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := New(nil, []realization.ResourceRealization{mustTopic(t, "rk"), mustTopic(t, "rk")})

	var dup *DuplicateRealizationError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateRealizationError, got %v", err)
	}
	if dup.Kind != "resource" || dup.ID != "rk" {
		t.Errorf("Unexpected duplicate error: %+v", dup)
	}
}

func TestRegistryRejectsNilRealizations(t *testing.T) {
	tests := []struct {
		name       string
		processors []realization.ProcessorRealization
		resources  []realization.ResourceRealization
		message    string
	}{
		{
			name:       "nil processor",
			processors: []realization.ProcessorRealization{mustApplication(t, "pk"), nil},
			message:    "processor realization 1 is nil",
		},
		{
			name:      "nil resource",
			resources: []realization.ResourceRealization{nil},
			message:   "resource realization 0 is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := New(tt.processors, tt.resources)
			if err == nil {
				t.Fatalf("Expected error, got registry %v", reg)
			}
			if err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.message)
			}
		})
	}
}

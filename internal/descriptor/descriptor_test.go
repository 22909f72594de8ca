package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

func TestIsResourceTechnologyCompatible(t *testing.T) {
	j := JunctionDescriptor{ID: "in", AllowedResourceTypes: []ResourceTechnology{Topic}}

	assert.True(t, j.IsResourceTechnologyCompatible(Topic))
	assert.False(t, j.IsResourceTechnologyCompatible(Bucket))
	assert.False(t, JunctionDescriptor{ID: "none"}.IsResourceTechnologyCompatible(Topic))
}

func TestAcceptsCount(t *testing.T) {
	j := JunctionDescriptor{MinimumNumberOfResources: 1, MaximumNumberOfResources: 2}
	assert.False(t, j.AcceptsCount(0))
	assert.True(t, j.AcceptsCount(1))
	assert.True(t, j.AcceptsCount(2))
	assert.False(t, j.AcceptsCount(3))

	unbounded := JunctionDescriptor{}
	assert.True(t, unbounded.AcceptsCount(100))
}

func TestParseTechnologies(t *testing.T) {
	tests := []struct {
		input string
		want  ProcessorTechnology
	}{
		{"DshService", DshService},
		{"dsh-service", DshService},
		{"DSH_APP", DshApp},
		{"application", Application},
	}
	for _, tt := range tests {
		got, err := ParseProcessorTechnology(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseProcessorTechnology("lambda")
	assert.EqualError(t, err, "unknown processor technology 'lambda'")

	rt, err := ParseResourceTechnology("topic")
	require.NoError(t, err)
	assert.Equal(t, Topic, rt)
	assert.Equal(t, "Topic", rt.String())
}

func TestProcessorDescriptorLookups(t *testing.T) {
	d := ProcessorDescriptor{
		InboundJunctions:  []JunctionDescriptor{{ID: "in"}},
		OutboundJunctions: []JunctionDescriptor{{ID: "out"}},
		Profiles:          []ProfileDescriptor{{ID: "minimal", Instances: 1}},
	}

	j, ok := d.InboundJunction("in")
	require.True(t, ok)
	assert.Equal(t, ids.JunctionID("in"), j.ID)

	_, ok = d.InboundJunction("out")
	assert.False(t, ok, "outbound junction must not be found as inbound")

	_, ok = d.OutboundJunction("out")
	assert.True(t, ok)

	p, ok := d.Profile("minimal")
	require.True(t, ok)
	assert.Equal(t, 1, p.Instances)
}

func TestRenderExpandsTenantFields(t *testing.T) {
	d := ProcessorDescriptor{
		Description: "replicates for ${TENANT}",
		MetricsURL:  "https://grafana.${PLATFORM}.example.com/d/${TENANT}",
		Metadata:    map[string]string{"realm": "${REALM}"},
		InboundJunctions: []JunctionDescriptor{
			{ID: "in", AllowedResourceTypes: []ResourceTechnology{Topic}},
		},
	}
	tenant := Tenant{Name: "greenbox", Platform: "np-aws-lz-dsh", Realm: "dev"}

	rendered := d.Render(tenant)
	assert.Equal(t, "replicates for greenbox", rendered.Description)
	assert.Equal(t, "https://grafana.np-aws-lz-dsh.example.com/d/greenbox", rendered.MetricsURL)
	assert.Equal(t, "dev", rendered.Metadata["realm"])

	// junction shape is tenant independent and the template is untouched
	assert.Equal(t, d.InboundJunctions, rendered.InboundJunctions)
	rendered.InboundJunctions[0].AllowedResourceTypes[0] = Bucket
	assert.Equal(t, Topic, d.InboundJunctions[0].AllowedResourceTypes[0])
	assert.Equal(t, "${REALM}", d.Metadata["realm"])
}

func TestDecodeJunctionYAML(t *testing.T) {
	src := `
id: in
junction-technology: dsh-topic
minimum-number-of-resources: 1
allowed-resource-types: [topic, bucket]
`
	var j JunctionDescriptor
	require.NoError(t, yaml.Unmarshal([]byte(src), &j))
	assert.Equal(t, JunctionDshTopic, j.JunctionTechnology)
	assert.Equal(t, []ResourceTechnology{Topic, Bucket}, j.AllowedResourceTypes)
	assert.Equal(t, "Topic|Bucket", j.AllowedResourceTypesString())

	err := yaml.Unmarshal([]byte("id: in\nallowed-resource-types: [queue]\n"), &j)
	assert.Error(t, err)
}

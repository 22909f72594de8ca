package realization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
)

var tenant = descriptor.Tenant{Name: "greenbox", Platform: "np-aws-lz-dsh"}

func TestDshServiceDescriptor(t *testing.T) {
	svc, err := NewDshService(descriptor.ProcessorDescriptor{
		RealizationID: "replicator",
		Label:         "Replicator",
		ViewerURL:     "https://console.${PLATFORM}/${TENANT}/replicator",
		InboundJunctions: []descriptor.JunctionDescriptor{
			{ID: "in", AllowedResourceTypes: []descriptor.ResourceTechnology{descriptor.Topic}},
		},
	}, "registry.example.com/${TENANT}/replicator:1.2.0")
	require.NoError(t, err)

	var p ProcessorRealization = svc
	assert.Equal(t, ids.ProcessorRealizationID("replicator"), p.ID())
	assert.Equal(t, descriptor.DshService, p.Technology())

	d := p.Descriptor(tenant)
	assert.Equal(t, descriptor.DshService, d.Technology)
	assert.Equal(t, "https://console.np-aws-lz-dsh/greenbox/replicator", d.ViewerURL)
	assert.Equal(t, "registry.example.com/greenbox/replicator:1.2.0", d.Metadata["image"])
	require.Len(t, d.InboundJunctions, 1)
}

func TestProcessorTechnologyMismatch(t *testing.T) {
	_, err := NewDshApp(descriptor.ProcessorDescriptor{
		RealizationID: "keyring",
		Technology:    descriptor.DshService,
	}, "keyring-app", "")
	assert.EqualError(t, err, "processor realization 'keyring' declares technology DshService, expected DshApp")

	_, err = NewDshService(descriptor.ProcessorDescriptor{RealizationID: "svc"}, "")
	assert.Error(t, err)

	_, err = NewApplication(descriptor.ProcessorDescriptor{})
	assert.EqualError(t, err, "processor realization has no id")
}

func TestDshAppDescriptor(t *testing.T) {
	app, err := NewDshApp(descriptor.ProcessorDescriptor{RealizationID: "keyring"}, "keyring-app", "0.3.1")
	require.NoError(t, err)

	d := app.Descriptor(tenant)
	assert.Equal(t, descriptor.DshApp, d.Technology)
	assert.Equal(t, "keyring-app", d.Metadata["app-id"])
	assert.Equal(t, "0.3.1", d.Metadata["app-version"])
}

func TestResourceRealizations(t *testing.T) {
	topic, err := NewTopic(descriptor.ResourceDescriptor{RealizationID: "dsh-topic", Label: "Topic"}, 3, 2)
	require.NoError(t, err)
	bucket, err := NewBucket(descriptor.ResourceDescriptor{RealizationID: "dsh-bucket"}, true)
	require.NoError(t, err)
	volume, err := NewVolume(descriptor.ResourceDescriptor{RealizationID: "dsh-volume"}, 10)
	require.NoError(t, err)
	secret, err := NewSecret(descriptor.ResourceDescriptor{RealizationID: "dsh-secret"})
	require.NoError(t, err)

	tests := []struct {
		realization ResourceRealization
		technology  descriptor.ResourceTechnology
	}{
		{topic, descriptor.Topic},
		{bucket, descriptor.Bucket},
		{volume, descriptor.Volume},
		{secret, descriptor.Secret},
	}
	for _, tt := range tests {
		t.Run(tt.realization.ID().String(), func(t *testing.T) {
			assert.Equal(t, tt.technology, tt.realization.Technology())
			assert.Equal(t, tt.technology, tt.realization.Descriptor().Technology)
		})
	}

	assert.Equal(t, "3", topic.Descriptor().Metadata["partitions"])
	assert.Equal(t, "true", bucket.Descriptor().Metadata["encrypted"])
	assert.Equal(t, "10", volume.Descriptor().Metadata["size-gib"])

	_, err = NewTopic(descriptor.ResourceDescriptor{RealizationID: "bad"}, -1, 1)
	assert.Error(t, err)
	_, err = NewBucket(descriptor.ResourceDescriptor{RealizationID: "b", Technology: descriptor.Topic}, false)
	assert.Error(t, err)
}

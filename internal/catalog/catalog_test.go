package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/realization"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replicatorFile = `
technology: dsh-app
id: replicator
label: Replicator
description: Copies records for ${TENANT}
version: 1.4.0
app-id: replicator
app-version: 1.4.0
inbound-junctions:
  - id: in
    junction-technology: dsh-topic
    minimum-number-of-resources: 1
    allowed-resource-types: [topic]
outbound-junctions:
  - id: out
    junction-technology: dsh-topic
    allowed-resource-types: [topic, bucket]
profiles:
  - { id: minimal, instances: 1, cpu: 0.1, mem: 256 }
metrics-url: https://grafana.${PLATFORM}/d/${TENANT}
`

const serviceFile = `
technology: DshService
id: enricher
label: Enricher
image: registry.example.com/enricher:2.0
inbound-junctions:
  - { id: in, junction-technology: grpc, allowed-resource-types: [Topic] }
`

const topicFile = `
technology: topic
id: dsh-topic
label: Stream topic
partitions: 6
replication-factor: 3
`

const bucketFile = `
technology: bucket
id: archive
label: Archive
encrypted: true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "processors", "replicator.yaml"), replicatorFile)
	writeFile(t, filepath.Join(dir, "processors", "enricher.yml"), serviceFile)
	writeFile(t, filepath.Join(dir, "processors", "README.md"), "not a realization")
	writeFile(t, filepath.Join(dir, "resources", "topic.yaml"), topicFile)
	writeFile(t, filepath.Join(dir, "resources", "bucket.yaml"), bucketFile)
	return dir
}

func TestParseProcessor(t *testing.T) {
	p, err := ParseProcessor([]byte(replicatorFile))
	require.NoError(t, err)

	app, ok := p.(*realization.DshApp)
	require.True(t, ok, "expected *realization.DshApp, got %T", p)
	assert.Equal(t, "replicator", app.AppID)
	assert.Equal(t, ids.ProcessorRealizationID("replicator"), p.ID())

	desc := p.Descriptor(descriptor.Tenant{Name: "greenbox", Platform: "poc"})
	assert.Equal(t, "Copies records for greenbox", desc.Description)
	assert.Equal(t, "https://grafana.poc/d/greenbox", desc.MetricsURL)

	in, ok := desc.InboundJunction("in")
	require.True(t, ok)
	assert.True(t, in.IsResourceTechnologyCompatible(descriptor.Topic))
	assert.False(t, in.IsResourceTechnologyCompatible(descriptor.Bucket))
	assert.Equal(t, 1, in.MinimumNumberOfResources)

	out, ok := desc.OutboundJunction("out")
	require.True(t, ok)
	assert.Equal(t, "Topic|Bucket", out.AllowedResourceTypesString())
}

func TestParseProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"empty", "", "empty realization file"},
		{"no technology", "id: x\nlabel: X\n", "has no technology"},
		{"unknown technology", "technology: lambda\nid: x\n", "unknown processor technology 'lambda'"},
		{"missing image", "technology: dsh-service\nid: x\n", "image is required"},
		{"missing app id", "technology: dsh-app\nid: x\n", "app-id is required"},
		{"unknown key", "technology: application\nid: x\nimagee: typo\n", "imagee"},
		{"bad junction id", "technology: application\nid: x\ninbound-junctions: [{id: In_1}]\n", "invalid junction id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProcessor([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource([]byte(topicFile))
	require.NoError(t, err)
	topic, ok := r.(*realization.Topic)
	require.True(t, ok, "expected *realization.Topic, got %T", r)
	assert.Equal(t, 6, topic.Partitions)
	assert.Equal(t, descriptor.Topic, r.Technology())
	assert.Equal(t, "3", r.Descriptor().Metadata["replication-factor"])

	r, err = ParseResource([]byte("technology: volume\nid: scratch\nsize-gib: 20\n"))
	require.NoError(t, err)
	assert.Equal(t, descriptor.Volume, r.Technology())

	r, err = ParseResource([]byte("technology: secret\nid: api-key\n"))
	require.NoError(t, err)
	assert.Equal(t, descriptor.Secret, r.Technology())

	_, err = ParseResource([]byte("technology: database\nid: x\n"))
	assert.ErrorContains(t, err, "unknown resource technology 'database'")
}

func TestLoadDir(t *testing.T) {
	c, err := LoadDir(writeCatalog(t))
	require.NoError(t, err)

	require.Len(t, c.Processors, 2)
	require.Len(t, c.Resources, 2)
	require.Len(t, c.Entries, 4)

	// files are read in name order within each kind
	assert.Equal(t, ids.ProcessorRealizationID("enricher"), c.Processors[0].ID())
	assert.Equal(t, "enricher", c.Entries[0].ID)
	assert.Equal(t, storage.KindProcessor, c.Entries[0].Kind)
	assert.Equal(t, storage.KindResource, c.Entries[3].Kind)

	reg, err := c.Registry()
	require.NoError(t, err)
	_, ok := reg.ProcessorRealization("replicator")
	assert.True(t, ok)
	_, ok = reg.ResourceRealization("archive")
	assert.True(t, ok)
}

func TestLoadDirMissingSubdirectories(t *testing.T) {
	c, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, c.Processors)
	assert.Empty(t, c.Resources)
}

func TestLoadDirReportsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resources", "broken.yaml")
	writeFile(t, path, "technology: topic\nid: x\npartitions: -1\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestDuplicateRealizationsRejected(t *testing.T) {
	dir := writeCatalog(t)
	writeFile(t, filepath.Join(dir, "resources", "topic-copy.yaml"), topicFile)

	c, err := LoadDir(dir)
	require.NoError(t, err)
	_, err = c.Registry()
	assert.ErrorContains(t, err, "duplicate resource realization 'dsh-topic'")
}

func TestLoadStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	loaded, err := LoadDir(writeCatalog(t))
	require.NoError(t, err)
	for _, e := range loaded.Entries {
		require.NoError(t, store.PutCatalogEntry(ctx, e))
	}

	c, err := LoadStore(ctx, store)
	require.NoError(t, err)
	assert.Len(t, c.Processors, 2)
	assert.Len(t, c.Resources, 2)

	reg, err := c.Registry()
	require.NoError(t, err)
	assert.Len(t, reg.ProcessorRealizations(), 2)
}

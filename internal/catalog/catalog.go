// Package catalog reads realization files and turns them into realizations and a
// registry.
//
// A catalog directory holds one YAML file per realization:
//
//	<dir>/processors/<id>.yaml
//	<dir>/resources/<id>.yaml
//
// The same files can be kept in a storage.CatalogStorage and loaded from there.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/realization"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/registry"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/storage"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	processorsDir = "processors"
	resourcesDir  = "resources"
)

// processorFile is the on-disk form of a processor realization
type processorFile struct {
	descriptor.ProcessorDescriptor `yaml:",inline"`

	Image      string `yaml:"image,omitempty"`
	AppID      string `yaml:"app-id,omitempty"`
	AppVersion string `yaml:"app-version,omitempty"`
}

// resourceFile is the on-disk form of a resource realization
type resourceFile struct {
	descriptor.ResourceDescriptor `yaml:",inline"`

	Partitions        int  `yaml:"partitions,omitempty"`
	ReplicationFactor int  `yaml:"replication-factor,omitempty"`
	Encrypted         bool `yaml:"encrypted,omitempty"`
	SizeGiB           int  `yaml:"size-gib,omitempty"`
}

// Catalog is a set of parsed realizations together with the files they came from
type Catalog struct {
	Processors []realization.ProcessorRealization
	Resources  []realization.ResourceRealization
	Entries    []*storage.CatalogEntry
}

// ParseProcessor parses a processor realization file
func ParseProcessor(data []byte) (realization.ProcessorRealization, error) {
	var f processorFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, err
	}

	switch f.Technology {
	case descriptor.DshService:
		if f.Image == "" {
			return nil, fmt.Errorf("processor realization '%s': image is required for %s", f.RealizationID, f.Technology)
		}
		return realization.NewDshService(f.ProcessorDescriptor, f.Image)
	case descriptor.DshApp:
		if f.AppID == "" {
			return nil, fmt.Errorf("processor realization '%s': app-id is required for %s", f.RealizationID, f.Technology)
		}
		return realization.NewDshApp(f.ProcessorDescriptor, f.AppID, f.AppVersion)
	case descriptor.Application:
		return realization.NewApplication(f.ProcessorDescriptor)
	case "":
		return nil, fmt.Errorf("processor realization '%s' has no technology", f.RealizationID)
	default:
		return nil, fmt.Errorf("processor realization '%s' has unsupported technology %s", f.RealizationID, f.Technology)
	}
}

// ParseResource parses a resource realization file
func ParseResource(data []byte) (realization.ResourceRealization, error) {
	var f resourceFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, err
	}

	switch f.Technology {
	case descriptor.Topic:
		return realization.NewTopic(f.ResourceDescriptor, f.Partitions, f.ReplicationFactor)
	case descriptor.Bucket:
		return realization.NewBucket(f.ResourceDescriptor, f.Encrypted)
	case descriptor.Volume:
		return realization.NewVolume(f.ResourceDescriptor, f.SizeGiB)
	case descriptor.Secret:
		return realization.NewSecret(f.ResourceDescriptor)
	case "":
		return nil, fmt.Errorf("resource realization '%s' has no technology", f.RealizationID)
	default:
		return nil, fmt.Errorf("resource realization '%s' has unsupported technology %s", f.RealizationID, f.Technology)
	}
}

// decodeStrict decodes YAML rejecting unknown keys
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty realization file")
		}
		return err
	}
	return nil
}

// LoadDir reads all realization files below dir
func LoadDir(dir string) (*Catalog, error) {
	logger.Debug("Loading catalog", zap.String("dir", dir))

	var entries []*storage.CatalogEntry
	for _, sub := range []struct {
		dir  string
		kind string
	}{
		{processorsDir, storage.KindProcessor},
		{resourcesDir, storage.KindResource},
	} {
		paths, err := yamlFiles(filepath.Join(dir, sub.dir))
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read realization file: %w", err)
			}
			entries = append(entries, &storage.CatalogEntry{Kind: sub.kind, Data: data, Source: path})
		}
	}

	c, err := FromEntries(entries)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded catalog",
		zap.String("dir", dir),
		zap.Int("processors", len(c.Processors)),
		zap.Int("resources", len(c.Resources)))

	return c, nil
}

// LoadStore reads all realization entries from a catalog store
func LoadStore(ctx context.Context, store storage.CatalogStorage) (*Catalog, error) {
	entries, err := store.ListCatalogEntries(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	return FromEntries(entries)
}

// FromEntries parses catalog entries. Entry ids are filled in from the parsed
// realizations.
func FromEntries(entries []*storage.CatalogEntry) (*Catalog, error) {
	c := &Catalog{}
	for _, e := range entries {
		where := e.Source
		if where == "" {
			where = e.Kind + " " + e.ID
		}

		switch e.Kind {
		case storage.KindProcessor:
			p, err := ParseProcessor(e.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", where, err)
			}
			e.ID = p.ID().String()
			c.Processors = append(c.Processors, p)
		case storage.KindResource:
			r, err := ParseResource(e.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", where, err)
			}
			e.ID = r.ID().String()
			c.Resources = append(c.Resources, r)
		default:
			return nil, fmt.Errorf("unknown catalog entry kind '%s' in %s", e.Kind, where)
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// Registry builds a registry over the catalog's realizations
func (c *Catalog) Registry() (*registry.Registry, error) {
	reg, err := registry.New(c.Processors, c.Resources)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return reg, nil
}

// yamlFiles lists the .yaml and .yml files of dir in name order. A missing
// directory yields no files.
func yamlFiles(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var paths []string
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, de.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

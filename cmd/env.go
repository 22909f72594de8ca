package cmd

import (
	"context"
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/catalog"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/config"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/model"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/pipeline"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/registry"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/storage"
	"github.com/spf13/viper"
)

func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// openStore opens the bbolt store named by the settings. Callers close it.
func openStore(s *config.Settings) (storage.Storage, error) {
	store := storage.NewBoltDBStorage(&storage.BoltOptions{Path: s.Store})
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

// loadCatalog reads the catalog directory when one is configured, the store otherwise
func loadCatalog(ctx context.Context, s *config.Settings) (*catalog.Catalog, error) {
	if s.Catalog != "" {
		return catalog.LoadDir(s.Catalog)
	}

	store, err := openStore(s)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	c, err := catalog.LoadStore(ctx, store)
	if err != nil {
		return nil, err
	}
	if len(c.Entries) == 0 {
		return nil, fmt.Errorf("catalog is empty: import one with 'dshpipe catalog import <dir>' or pass --catalog")
	}
	return c, nil
}

func loadRegistry(ctx context.Context, s *config.Settings) (*registry.Registry, error) {
	c, err := loadCatalog(ctx, s)
	if err != nil {
		return nil, err
	}
	return c.Registry()
}

// compile loads a pipeline file and builds it against the configured catalog
func compile(ctx context.Context, s *config.Settings, file string) (*pipeline.Pipeline, error) {
	if err := s.RequireTenant(); err != nil {
		return nil, err
	}
	reg, err := loadRegistry(ctx, s)
	if err != nil {
		return nil, err
	}
	cfg, err := model.LoadPipelineFromFile(file)
	if err != nil {
		return nil, err
	}
	return pipeline.Create(cfg, s.Tenant, reg, reg)
}

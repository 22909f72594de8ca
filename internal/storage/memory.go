package storage

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"go.uber.org/zap"
)

// MemoryStorage is an in-memory implementation of Storage for testing
type MemoryStorage struct {
	mu      sync.RWMutex
	catalog map[string]*CatalogEntry
	records map[uuid.UUID]*CompiledRecord
}

// NewMemoryStorage creates a new in-memory storage for testing
func NewMemoryStorage() Storage {
	return &MemoryStorage{
		catalog: make(map[string]*CatalogEntry),
		records: make(map[uuid.UUID]*CompiledRecord),
	}
}

// Open initializes the storage
func (s *MemoryStorage) Open() error {
	logger.Debug("Opening memory storage")
	return nil
}

// Close closes the storage
func (s *MemoryStorage) Close() error {
	logger.Debug("Closing memory storage")
	return nil
}

// PutCatalogEntry stores a catalog entry
func (s *MemoryStorage) PutCatalogEntry(ctx context.Context, entry *CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("Storing catalog entry in memory", zap.String("kind", entry.Kind), zap.String("id", entry.ID))
	putCatalogEntry(s.catalog, entry)
	return nil
}

// GetCatalogEntry retrieves a catalog entry by kind and id
func (s *MemoryStorage) GetCatalogEntry(ctx context.Context, kind, id string) (*CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := catalogKey(kind, id)
	entry, ok := s.catalog[key]
	if !ok {
		return nil, ErrNotFound{Kind: "catalog entry", Key: key}
	}
	copied := *entry
	return &copied, nil
}

// ListCatalogEntries retrieves catalog entries ordered by kind and id
func (s *MemoryStorage) ListCatalogEntries(ctx context.Context, kind string) ([]*CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listCatalogEntries(s.catalog, kind), nil
}

// DeleteCatalogEntry removes a catalog entry
func (s *MemoryStorage) DeleteCatalogEntry(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteCatalogEntry(s.catalog, kind, id)
}

// SaveRecord stores a compiled record
func (s *MemoryStorage) SaveRecord(ctx context.Context, record *CompiledRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("Saving compiled record in memory", zap.String("id", record.ID.String()))
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

// GetRecord retrieves a compiled record by its ID
func (s *MemoryStorage) GetRecord(ctx context.Context, id uuid.UUID) (*CompiledRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound{Kind: "record", Key: id.String()}
	}
	copied := *record
	return &copied, nil
}

// ListRecords retrieves compiled records newest first
func (s *MemoryStorage) ListRecords(ctx context.Context, pipelineID string, limit int) ([]*CompiledRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*CompiledRecord
	for _, record := range s.records {
		if pipelineID == "" || record.PipelineID == pipelineID {
			copied := *record
			records = append(records, &copied)
		}
	}
	return newestFirst(records, limit), nil
}

// DeleteRecord removes a compiled record
func (s *MemoryStorage) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound{Kind: "record", Key: id.String()}
	}
	delete(s.records, id)
	return nil
}

// WithTransaction executes fn against a copy of the catalog and keeps the copy
// only if fn succeeds
func (s *MemoryStorage) WithTransaction(ctx context.Context, fn func(txn Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := &memoryTransaction{catalog: maps.Clone(s.catalog)}
	if err := fn(txn); err != nil {
		return err
	}
	s.catalog = txn.catalog
	return nil
}

// memoryTransaction implements the Transaction interface for memory storage
type memoryTransaction struct {
	catalog map[string]*CatalogEntry
}

func (t *memoryTransaction) PutCatalogEntry(entry *CatalogEntry) error {
	putCatalogEntry(t.catalog, entry)
	return nil
}

func (t *memoryTransaction) ListCatalogEntries(kind string) ([]*CatalogEntry, error) {
	return listCatalogEntries(t.catalog, kind), nil
}

func (t *memoryTransaction) DeleteCatalogEntry(kind, id string) error {
	return deleteCatalogEntry(t.catalog, kind, id)
}

func putCatalogEntry(catalog map[string]*CatalogEntry, entry *CatalogEntry) {
	copied := *entry
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = time.Now().UTC()
	}
	catalog[catalogKey(entry.Kind, entry.ID)] = &copied
}

func listCatalogEntries(catalog map[string]*CatalogEntry, kind string) []*CatalogEntry {
	var entries []*CatalogEntry
	for key, entry := range catalog {
		if kind == "" || strings.HasPrefix(key, catalogKey(kind, "")) {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	slices.SortFunc(entries, func(a, b *CatalogEntry) int {
		return cmp.Compare(catalogKey(a.Kind, a.ID), catalogKey(b.Kind, b.ID))
	})
	return entries
}

func deleteCatalogEntry(catalog map[string]*CatalogEntry, kind, id string) error {
	key := catalogKey(kind, id)
	if _, ok := catalog[key]; !ok {
		return ErrNotFound{Kind: "catalog entry", Key: key}
	}
	delete(catalog, key)
	return nil
}

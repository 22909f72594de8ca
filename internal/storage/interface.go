package storage

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Catalog entry kinds
const (
	KindProcessor = "processor"
	KindResource  = "resource"
)

// CatalogEntry is one realization file kept in the catalog store
type CatalogEntry struct {
	// Kind is KindProcessor or KindResource
	Kind string `json:"kind"`
	// ID is the realization id
	ID string `json:"id"`
	// Data holds the realization file as YAML
	Data      []byte    `json:"data"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompiledRecord is the outcome of one successful pipeline compilation
type CompiledRecord struct {
	ID         uuid.UUID `json:"id"`
	PipelineID string    `json:"pipeline_id"`
	Tenant     string    `json:"tenant"`
	// Graph is the rendered pipeline graph
	Graph     string    `json:"graph"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogStorage persists realization catalog entries
type CatalogStorage interface {
	// PutCatalogEntry stores an entry, replacing any entry with the same kind and id
	PutCatalogEntry(ctx context.Context, entry *CatalogEntry) error

	// GetCatalogEntry retrieves an entry by kind and id
	GetCatalogEntry(ctx context.Context, kind, id string) (*CatalogEntry, error)

	// ListCatalogEntries retrieves entries of one kind, or all entries when kind is empty,
	// ordered by kind and id
	ListCatalogEntries(ctx context.Context, kind string) ([]*CatalogEntry, error)

	// DeleteCatalogEntry removes an entry
	DeleteCatalogEntry(ctx context.Context, kind, id string) error
}

// RecordStorage persists compiled pipeline records
type RecordStorage interface {
	// SaveRecord stores a compiled record
	SaveRecord(ctx context.Context, record *CompiledRecord) error

	// GetRecord retrieves a compiled record by its ID
	GetRecord(ctx context.Context, id uuid.UUID) (*CompiledRecord, error)

	// ListRecords retrieves records newest first, optionally filtered by pipeline id.
	// A limit of zero or less returns all matching records.
	ListRecords(ctx context.Context, pipelineID string, limit int) ([]*CompiledRecord, error)

	// DeleteRecord removes a compiled record
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}

// Storage is the complete store used by the CLI
type Storage interface {
	CatalogStorage
	RecordStorage

	// Open initializes the storage and makes it ready for use
	Open() error

	// Close closes the storage and releases any resources
	Close() error

	// WithTransaction executes the given function within a transaction
	// The transaction is committed if the function returns nil, or rolled back if it returns an error
	WithTransaction(ctx context.Context, fn func(txn Transaction) error) error
}

// Transaction represents a storage transaction over catalog entries
type Transaction interface {
	PutCatalogEntry(entry *CatalogEntry) error
	ListCatalogEntries(kind string) ([]*CatalogEntry, error)
	DeleteCatalogEntry(kind, id string) error
}

// ErrNotFound is returned when a catalog entry or record does not exist
type ErrNotFound struct {
	Kind string
	Key  string
}

// Error implements the error interface
func (e ErrNotFound) Error() string {
	return e.Kind + " not found: " + e.Key
}

// IsNotFound returns true if err is or wraps ErrNotFound
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

func catalogKey(kind, id string) string {
	return kind + "/" + id
}

// newestFirst orders records by creation time, newest first, and applies limit
func newestFirst(records []*CompiledRecord, limit int) []*CompiledRecord {
	slices.SortFunc(records, func(a, b *CompiledRecord) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

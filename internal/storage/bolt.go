package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// DefaultBoltFilePath is the default path for the BoltDB file
	DefaultBoltFilePath = "dshpipe.db"

	// DefaultBoltFileMode is the default file mode for the BoltDB file
	DefaultBoltFileMode = 0600

	// DefaultBoltTimeout is the default timeout for BoltDB operations
	DefaultBoltTimeout = 1 * time.Second
)

var (
	catalogBucket = []byte("catalog")
	recordBucket  = []byte("records")
)

// BoltDBStorage implements the Storage interface using BoltDB
type BoltDBStorage struct {
	db      *bolt.DB
	path    string
	options *BoltOptions
}

// BoltOptions configures the BoltDB storage
type BoltOptions struct {
	// Path to the BoltDB file
	Path string
	// File mode for the BoltDB file
	FileMode os.FileMode
	// Timeout for BoltDB operations
	Timeout time.Duration
}

// NewBoltDBStorage creates a new BoltDBStorage with the given options
func NewBoltDBStorage(opts *BoltOptions) *BoltDBStorage {
	if opts == nil {
		opts = &BoltOptions{}
	}

	// Set default options if not provided
	if opts.Path == "" {
		opts.Path = DefaultBoltFilePath
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultBoltFileMode
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultBoltTimeout
	}

	return &BoltDBStorage{
		path:    opts.Path,
		options: opts,
	}
}

// Open initializes the BoltDB database
func (s *BoltDBStorage) Open() error {
	logger.Info("Opening BoltDB database", zap.String("path", s.path))

	// Make sure the directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}

	db, err := bolt.Open(s.path, s.options.FileMode, &bolt.Options{Timeout: s.options.Timeout})
	if err != nil {
		return fmt.Errorf("failed to open BoltDB: %w", err)
	}
	s.db = db

	// Initialize the buckets
	err = s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{catalogBucket, recordBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		// Close the database if initialization fails
		s.db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	logger.Info("BoltDB database opened successfully")
	return nil
}

// Close closes the BoltDB database
func (s *BoltDBStorage) Close() error {
	if s.db != nil {
		logger.Info("Closing BoltDB database")
		return s.db.Close()
	}
	return nil
}

// PutCatalogEntry stores a catalog entry
func (s *BoltDBStorage) PutCatalogEntry(ctx context.Context, entry *CatalogEntry) error {
	logger.Debug("Storing catalog entry", zap.String("kind", entry.Kind), zap.String("id", entry.ID))
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCatalogEntryTx(tx, entry)
	})
}

// putCatalogEntryTx is the transaction version of PutCatalogEntry
func putCatalogEntryTx(tx *bolt.Tx, entry *CatalogEntry) error {
	b := tx.Bucket(catalogBucket)
	if b == nil {
		return fmt.Errorf("catalog bucket not found")
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}

	if err := b.Put([]byte(catalogKey(entry.Kind, entry.ID)), data); err != nil {
		return fmt.Errorf("failed to store catalog entry: %w", err)
	}
	return nil
}

// GetCatalogEntry retrieves a catalog entry by kind and id
func (s *BoltDBStorage) GetCatalogEntry(ctx context.Context, kind, id string) (*CatalogEntry, error) {
	logger.Debug("Getting catalog entry", zap.String("kind", kind), zap.String("id", id))
	var entry *CatalogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(catalogBucket)
		if b == nil {
			return fmt.Errorf("catalog bucket not found")
		}

		key := catalogKey(kind, id)
		data := b.Get([]byte(key))
		if data == nil {
			return ErrNotFound{Kind: "catalog entry", Key: key}
		}

		entry = &CatalogEntry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("failed to unmarshal catalog entry: %w", err)
		}
		return nil
	})
	return entry, err
}

// ListCatalogEntries retrieves catalog entries ordered by kind and id
func (s *BoltDBStorage) ListCatalogEntries(ctx context.Context, kind string) ([]*CatalogEntry, error) {
	logger.Debug("Listing catalog entries", zap.String("kind", kind))
	var entries []*CatalogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		entries, err = listCatalogEntriesTx(tx, kind)
		return err
	})
	return entries, err
}

// listCatalogEntriesTx is the transaction version of ListCatalogEntries
func listCatalogEntriesTx(tx *bolt.Tx, kind string) ([]*CatalogEntry, error) {
	b := tx.Bucket(catalogBucket)
	if b == nil {
		return nil, fmt.Errorf("catalog bucket not found")
	}

	var prefix []byte
	if kind != "" {
		prefix = []byte(catalogKey(kind, ""))
	}

	var entries []*CatalogEntry
	c := b.Cursor()
	k, v := c.First()
	if len(prefix) > 0 {
		k, v = c.Seek(prefix)
	}
	for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var entry CatalogEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog entry %s: %w", k, err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// DeleteCatalogEntry removes a catalog entry
func (s *BoltDBStorage) DeleteCatalogEntry(ctx context.Context, kind, id string) error {
	logger.Debug("Deleting catalog entry", zap.String("kind", kind), zap.String("id", id))
	return s.db.Update(func(tx *bolt.Tx) error {
		return deleteCatalogEntryTx(tx, kind, id)
	})
}

// deleteCatalogEntryTx is the transaction version of DeleteCatalogEntry
func deleteCatalogEntryTx(tx *bolt.Tx, kind, id string) error {
	b := tx.Bucket(catalogBucket)
	if b == nil {
		return fmt.Errorf("catalog bucket not found")
	}

	key := []byte(catalogKey(kind, id))
	if b.Get(key) == nil {
		return ErrNotFound{Kind: "catalog entry", Key: string(key)}
	}
	if err := b.Delete(key); err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	return nil
}

// SaveRecord stores a compiled record
func (s *BoltDBStorage) SaveRecord(ctx context.Context, record *CompiledRecord) error {
	logger.Debug("Saving compiled record",
		zap.String("id", record.ID.String()),
		zap.String("pipeline", record.PipelineID))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordBucket)
		if b == nil {
			return fmt.Errorf("records bucket not found")
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if err := b.Put([]byte(record.ID.String()), data); err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}
		return nil
	})
}

// GetRecord retrieves a compiled record by its ID
func (s *BoltDBStorage) GetRecord(ctx context.Context, id uuid.UUID) (*CompiledRecord, error) {
	logger.Debug("Getting compiled record", zap.String("id", id.String()))
	var record *CompiledRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordBucket)
		if b == nil {
			return fmt.Errorf("records bucket not found")
		}

		data := b.Get([]byte(id.String()))
		if data == nil {
			return ErrNotFound{Kind: "record", Key: id.String()}
		}

		record = &CompiledRecord{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return nil
	})
	return record, err
}

// ListRecords retrieves compiled records newest first
func (s *BoltDBStorage) ListRecords(ctx context.Context, pipelineID string, limit int) ([]*CompiledRecord, error) {
	logger.Debug("Listing compiled records", zap.String("pipeline", pipelineID), zap.Int("limit", limit))
	var records []*CompiledRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordBucket)
		if b == nil {
			return fmt.Errorf("records bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			var record CompiledRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			if pipelineID == "" || record.PipelineID == pipelineID {
				records = append(records, &record)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return newestFirst(records, limit), nil
}

// DeleteRecord removes a compiled record
func (s *BoltDBStorage) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	logger.Debug("Deleting compiled record", zap.String("id", id.String()))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(recordBucket)
		if b == nil {
			return fmt.Errorf("records bucket not found")
		}

		key := []byte(id.String())
		if b.Get(key) == nil {
			return ErrNotFound{Kind: "record", Key: id.String()}
		}
		if err := b.Delete(key); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		return nil
	})
}

// WithTransaction executes the given function within a transaction
func (s *BoltDBStorage) WithTransaction(ctx context.Context, fn func(txn Transaction) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTransaction{tx: tx})
	})
}

// boltTransaction implements the Transaction interface
type boltTransaction struct {
	tx *bolt.Tx
}

func (t *boltTransaction) PutCatalogEntry(entry *CatalogEntry) error {
	return putCatalogEntryTx(t.tx, entry)
}

func (t *boltTransaction) ListCatalogEntries(kind string) ([]*CatalogEntry, error) {
	return listCatalogEntriesTx(t.tx, kind)
}

func (t *boltTransaction) DeleteCatalogEntry(kind, id string) error {
	return deleteCatalogEntryTx(t.tx, kind, id)
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func setupTestStorage(t *testing.T) *BoltDBStorage {
	t.Helper()

	storage := NewBoltDBStorage(&BoltOptions{
		Path: filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	if err := storage.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	return storage
}

func createTestEntry(kind, id string) *CatalogEntry {
	return &CatalogEntry{
		Kind:   kind,
		ID:     id,
		Data:   []byte("id: " + id + "\n"),
		Source: "catalog/" + kind + "s/" + id + ".yaml",
	}
}

func createTestRecord(pipelineID string, createdAt time.Time) *CompiledRecord {
	return &CompiledRecord{
		ID:         uuid.New(),
		PipelineID: pipelineID,
		Tenant:     "greenbox@poc",
		Graph:      "pipeline: " + pipelineID + "\n",
		CreatedAt:  createdAt,
	}
}

func TestBoltDBStorage_CatalogEntries(t *testing.T) {
	testCatalogEntries(t, setupTestStorage(t))
}

func TestBoltDBStorage_Records(t *testing.T) {
	testRecords(t, setupTestStorage(t))
}

func TestBoltDBStorage_TransactionRollback(t *testing.T) {
	testTransactionRollback(t, setupTestStorage(t))
}

func TestBoltDBStorage_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	first := NewBoltDBStorage(&BoltOptions{Path: path})
	if err := first.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	if err := first.PutCatalogEntry(ctx, createTestEntry(KindResource, "rk")); err != nil {
		t.Fatalf("Failed to store entry: %v", err)
	}
	record := createTestRecord("p", time.Now())
	if err := first.SaveRecord(ctx, record); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Failed to close storage: %v", err)
	}

	second := NewBoltDBStorage(&BoltOptions{Path: path})
	if err := second.Open(); err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer second.Close()

	entry, err := second.GetCatalogEntry(ctx, KindResource, "rk")
	if err != nil {
		t.Fatalf("Failed to get entry after reopen: %v", err)
	}
	if string(entry.Data) != "id: rk\n" {
		t.Errorf("Entry data = %q", entry.Data)
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}

	got, err := second.GetRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("Failed to get record after reopen: %v", err)
	}
	if got.Graph != record.Graph {
		t.Errorf("Record graph = %q, want %q", got.Graph, record.Graph)
	}
}

func TestNotFoundError(t *testing.T) {
	err := ErrNotFound{Kind: "record", Key: "abc"}
	if err.Error() != "record not found: abc" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match ErrNotFound")
	}
	if !IsNotFound(errors.Join(errors.New("context"), err)) {
		t.Error("IsNotFound should match wrapped ErrNotFound")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound should not match other errors")
	}
}

// Shared behaviour checks for both Storage implementations

func testCatalogEntries(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	for _, e := range []*CatalogEntry{
		createTestEntry(KindResource, "rk"),
		createTestEntry(KindProcessor, "pk"),
		createTestEntry(KindProcessor, "aggregator"),
	} {
		if err := s.PutCatalogEntry(ctx, e); err != nil {
			t.Fatalf("Failed to store entry %s: %v", e.ID, err)
		}
	}

	entry, err := s.GetCatalogEntry(ctx, KindProcessor, "pk")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if entry.Source != "catalog/processors/pk.yaml" {
		t.Errorf("Source = %s", entry.Source)
	}

	processors, err := s.ListCatalogEntries(ctx, KindProcessor)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(processors) != 2 || processors[0].ID != "aggregator" || processors[1].ID != "pk" {
		t.Errorf("Processor entries not filtered and ordered: %v", processors)
	}

	all, err := s.ListCatalogEntries(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(all) != 3 || all[2].Kind != KindResource {
		t.Errorf("Unexpected entries: %v", all)
	}

	// Replace keeps a single entry per kind and id
	replacement := createTestEntry(KindProcessor, "pk")
	replacement.Data = []byte("id: pk\nlabel: New\n")
	if err := s.PutCatalogEntry(ctx, replacement); err != nil {
		t.Fatalf("Failed to replace entry: %v", err)
	}
	entry, _ = s.GetCatalogEntry(ctx, KindProcessor, "pk")
	if string(entry.Data) != "id: pk\nlabel: New\n" {
		t.Errorf("Entry not replaced: %q", entry.Data)
	}

	if err := s.DeleteCatalogEntry(ctx, KindProcessor, "pk"); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, err := s.GetCatalogEntry(ctx, KindProcessor, "pk"); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if err := s.DeleteCatalogEntry(ctx, KindProcessor, "pk"); !IsNotFound(err) {
		t.Errorf("Expected not found deleting twice, got %v", err)
	}
}

func testRecords(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	older := createTestRecord("keyring", base)
	newer := createTestRecord("keyring", base.Add(time.Hour))
	other := createTestRecord("billing", base.Add(2*time.Hour))
	for _, r := range []*CompiledRecord{older, newer, other} {
		if err := s.SaveRecord(ctx, r); err != nil {
			t.Fatalf("Failed to save record: %v", err)
		}
	}

	got, err := s.GetRecord(ctx, newer.ID)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if got.PipelineID != "keyring" || !got.CreatedAt.Equal(newer.CreatedAt) {
		t.Errorf("Unexpected record: %+v", got)
	}

	keyring, err := s.ListRecords(ctx, "keyring", 0)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(keyring) != 2 || keyring[0].ID != newer.ID || keyring[1].ID != older.ID {
		t.Errorf("Records not filtered or not newest first: %v", keyring)
	}

	limited, err := s.ListRecords(ctx, "", 1)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != other.ID {
		t.Errorf("Limit not applied: %v", limited)
	}

	if err := s.DeleteRecord(ctx, older.ID); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}
	if _, err := s.GetRecord(ctx, older.ID); !IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	if err := s.DeleteRecord(ctx, uuid.New()); !IsNotFound(err) {
		t.Errorf("Expected not found for unknown record, got %v", err)
	}
}

func testTransactionRollback(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if err := s.PutCatalogEntry(ctx, createTestEntry(KindResource, "rk")); err != nil {
		t.Fatalf("Failed to store entry: %v", err)
	}

	failure := errors.New("abort import")
	err := s.WithTransaction(ctx, func(txn Transaction) error {
		if err := txn.DeleteCatalogEntry(KindResource, "rk"); err != nil {
			return err
		}
		if err := txn.PutCatalogEntry(createTestEntry(KindResource, "bk")); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected transaction error, got %v", err)
	}

	entries, err := s.ListCatalogEntries(ctx, KindResource)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "rk" {
		t.Errorf("Transaction not rolled back: %v", entries)
	}

	err = s.WithTransaction(ctx, func(txn Transaction) error {
		existing, err := txn.ListCatalogEntries(KindResource)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if err := txn.DeleteCatalogEntry(e.Kind, e.ID); err != nil {
				return err
			}
		}
		return txn.PutCatalogEntry(createTestEntry(KindResource, "bk"))
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	entries, _ = s.ListCatalogEntries(ctx, KindResource)
	if len(entries) != 1 || entries[0].ID != "bk" {
		t.Errorf("Transaction not committed: %v", entries)
	}
}

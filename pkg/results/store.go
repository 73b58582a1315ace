// Package results persists run records in BadgerDB.
//
// Every completed run can be saved as a Record: what device ran it, the
// execution parameters, per-repetition timings, the final sum, and a
// checksum of the result vector. Records make runs comparable over time:
// the same parameters on the same device should produce the same digest,
// and timing history shows regressions.
package results

import (
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/ViktorB9898/vecrun/pkg/runner"
)

// Errors
var (
	ErrRecordNotFound = errors.New("results: record not found")
)

// recordPrefix namespaces record keys inside the database.
const recordPrefix = "run:"

// Record is one persisted run.
type Record struct {
	ID        string
	CreatedAt time.Time

	DeviceName string
	Backend    string

	VectorSize  int
	Repetitions int
	GlobalSize  int
	LocalSize   int

	CompileTime    time.Duration
	Times          []time.Duration
	Representative time.Duration
	Sum            float64
	Digest         string
}

// NewRecord builds a Record from a run report. ID and CreatedAt are
// assigned at save time if left empty.
func NewRecord(rep *runner.Report) *Record {
	return &Record{
		DeviceName:     rep.Device.Name,
		Backend:        string(rep.Device.Backend),
		VectorSize:     rep.VectorSize,
		Repetitions:    rep.Repetitions,
		GlobalSize:     rep.Grid.GlobalSize,
		LocalSize:      rep.Grid.LocalSize,
		CompileTime:    rep.CompileTime,
		Times:          rep.Times,
		Representative: rep.Representative(),
		Sum:            rep.Sum,
		Digest:         rep.Digest,
	}
}

// Store is a BadgerDB-backed record store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("results: opening store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store. Used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("results: opening in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a record, assigning ID and CreatedAt if unset.
func (s *Store) Save(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := serializeRecord(rec)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("results: saving record %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads one record by ID.
func (s *Store) Get(id string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = deserializeRecord(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("results: loading record %s: %w", id, err)
	}
	return rec, nil
}

// List returns records newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]*Record, error) {
	var records []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rec, err := deserializeRecord(val)
				if err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("results: listing records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

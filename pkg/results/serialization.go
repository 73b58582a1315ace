// Package results - Serialization helpers for BadgerDB.
package results

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ViktorB9898/vecrun/pkg/pool"
)

// serializeRecord converts a Record to gob bytes for BadgerDB storage.
// gob preserves Go types (time.Duration stays a duration, not a float).
func serializeRecord(rec *Record) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("results: encoding record: %w", err)
	}

	// Copy out: the pooled buffer is reused after return.
	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	return data, nil
}

// deserializeRecord converts gob bytes back to a Record.
func deserializeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("results: decoding record: %w", err)
	}
	return &rec, nil
}

package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViktorB9898/vecrun/pkg/compute"
	"github.com/ViktorB9898/vecrun/pkg/runner"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord() *Record {
	return &Record{
		DeviceName:     "Simulated CPU (2 workers)",
		Backend:        "cpu",
		VectorSize:     1000,
		Repetitions:    6,
		GlobalSize:     128 * 128,
		LocalSize:      128,
		CompileTime:    3 * time.Millisecond,
		Times:          []time.Duration{100, 90, 95, 92, 91, 93},
		Representative: 95,
		Sum:            192000,
		Digest:         "deadbeef",
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	rec := sampleRecord()
	require.NoError(t, store.Save(rec))

	assert.NotEmpty(t, rec.ID, "Save assigns an ID")
	assert.False(t, rec.CreatedAt.IsZero(), "Save assigns CreatedAt")

	got, err := store.Get(rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.DeviceName, got.DeviceName)
	assert.Equal(t, rec.Backend, got.Backend)
	assert.Equal(t, rec.VectorSize, got.VectorSize)
	assert.Equal(t, rec.Times, got.Times)
	assert.Equal(t, rec.Representative, got.Representative)
	assert.Equal(t, rec.Sum, got.Sum)
	assert.Equal(t, rec.Digest, got.Digest)
}

func TestSaveKeepsExplicitIdentity(t *testing.T) {
	store := newTestStore(t)

	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rec := sampleRecord()
	rec.ID = "explicit-id"
	rec.CreatedAt = created

	require.NoError(t, store.Save(rec))

	got, err := store.Get("explicit-id")
	require.NoError(t, err)
	assert.Equal(t, "explicit-id", got.ID)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("no-such-record")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := sampleRecord()
		rec.Sum = float64(i)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(rec))
	}

	records, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, records, 5)

	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].CreatedAt.After(records[i].CreatedAt),
			"records must be sorted newest first")
	}
	assert.Equal(t, 4.0, records[0].Sum)

	t.Run("limit", func(t *testing.T) {
		limited, err := store.List(2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, 4.0, limited[0].Sum)
		assert.Equal(t, 3.0, limited[1].Sum)
	})

	t.Run("empty store", func(t *testing.T) {
		empty := newTestStore(t)
		records, err := empty.List(10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestNewRecord(t *testing.T) {
	rep := &runner.Report{
		Device: compute.DeviceInfo{
			Name:    "Simulated CPU (4 workers)",
			Backend: compute.BackendCPU,
		},
		Grid:        compute.Grid{GlobalSize: 128 * 128, LocalSize: 128},
		VectorSize:  50_000_000,
		Repetitions: 6,
		CompileTime: 2 * time.Millisecond,
		Times:       []time.Duration{60, 10, 20, 30, 40, 50},
		Sum:         42,
		Digest:      "cafe",
	}

	rec := NewRecord(rep)

	assert.Empty(t, rec.ID, "identity is assigned at save time")
	assert.Equal(t, "Simulated CPU (4 workers)", rec.DeviceName)
	assert.Equal(t, "cpu", rec.Backend)
	assert.Equal(t, 50_000_000, rec.VectorSize)
	assert.Equal(t, 128*128, rec.GlobalSize)
	assert.Equal(t, 128, rec.LocalSize)
	assert.Equal(t, rep.Times, rec.Times)
	assert.Equal(t, time.Duration(30), rec.Representative, "index R/2 of the unsorted timings")
	assert.Equal(t, 42.0, rec.Sum)
	assert.Equal(t, "cafe", rec.Digest)
}

func TestSerializationRoundTrip(t *testing.T) {
	rec := sampleRecord()
	rec.ID = "round-trip"
	rec.CreatedAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	data, err := serializeRecord(rec)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := deserializeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	t.Run("corrupt data", func(t *testing.T) {
		_, err := deserializeRecord([]byte("not gob data"))
		assert.Error(t, err)
	})
}

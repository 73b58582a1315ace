// Package pool provides object pooling for vecrun host allocations.
//
// Object pooling reuses allocated objects instead of creating new ones,
// reducing GC pressure. The big win here is host-side staging vectors:
// a single run touches hundreds of megabytes of float64 data, and repeated
// runs (benchmark sweeps, tests) would otherwise reallocate them each time.
//
// Pooled objects:
// - Host vectors ([]float64 staging for upload and readback)
// - Byte buffers (record serialization)
//
// Usage:
//
//	x := pool.GetVector(n)
//	defer pool.PutVector(x)
package pool

import (
	"bytes"
	"sync"
)

// PoolConfig configures pooling behavior.
//
// Fields:
//   - Enabled: Controls whether pooling is active (disable for debugging)
//   - MaxVectorLen: Vectors longer than this are never pooled, so one huge
//     run cannot pin its working set for the life of the process
//
// ELI12:
//
// Think of the vector pool like a ski rental shop:
//   - Instead of buying new skis every trip (allocating memory),
//     you borrow a pair (GetVector) and hand them back (PutVector)
//   - The shop refuses to store skis that are absurdly long
//     (MaxVectorLen), because they'd crowd out everything else
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxVectorLen limits the element count of pooled vectors
	MaxVectorLen int
}

var globalConfig = PoolConfig{
	Enabled:      true,
	MaxVectorLen: 64 << 20, // 64M elements = 512 MB
}

// Configure sets global pool configuration.
//
// Call once during application initialization, before any pooled objects
// are allocated. Not thread-safe.
func Configure(config PoolConfig) {
	globalConfig = config
	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	vectorPool = sync.Pool{
		New: func() any {
			return make([]float64, 0, 1024)
		},
	}
	bufferPool = sync.Pool{
		New: func() any {
			return new(bytes.Buffer)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return globalConfig.Enabled
}

// =============================================================================
// Host Vector Pool
// =============================================================================

var vectorPool = sync.Pool{
	New: func() any {
		return make([]float64, 0, 1024)
	},
}

// GetVector returns a float64 slice of length n from the pool.
//
// Contents are unspecified: callers must initialize every element they
// read. Always call PutVector when done to return the slice to the pool.
func GetVector(n int) []float64 {
	if !globalConfig.Enabled {
		return make([]float64, n)
	}
	v := vectorPool.Get().([]float64)
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}

// PutVector returns a vector to the pool for reuse.
//
// Vectors longer than MaxVectorLen are dropped rather than pooled to
// prevent memory leaks. Don't use the slice after calling PutVector.
func PutVector(v []float64) {
	if !globalConfig.Enabled || v == nil {
		return
	}
	if cap(v) > globalConfig.MaxVectorLen {
		return
	}
	vectorPool.Put(v[:0])
}

// =============================================================================
// Byte Buffer Pool (record serialization)
// =============================================================================

// maxPooledBufferBytes keeps oversized encode buffers out of the pool.
const maxPooledBufferBytes = 1 << 20

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer returns an empty bytes.Buffer from the pool.
func GetBuffer() *bytes.Buffer {
	if !globalConfig.Enabled {
		return new(bytes.Buffer)
	}
	b := bufferPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// PutBuffer returns a buffer to the pool for reuse. Don't use the buffer
// after calling PutBuffer.
func PutBuffer(b *bytes.Buffer) {
	if !globalConfig.Enabled || b == nil {
		return
	}
	if b.Cap() > maxPooledBufferBytes {
		return
	}
	bufferPool.Put(b)
}

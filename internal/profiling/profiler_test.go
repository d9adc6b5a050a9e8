package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyWork() int {
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i % 7
	}
	return sum
}

func TestStart_AllProfiles(t *testing.T) {
	// Given: all three profiles requested
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Heap:  filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	require.True(t, opts.Enabled())

	// When: running some work between Start and Stop
	p, err := Start(opts)
	require.NoError(t, err)
	_ = busyWork()
	require.NoError(t, p.Stop())

	// Then: every file exists and is non-empty
	for _, path := range []string{opts.CPU, opts.Heap, opts.Trace} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestStop_Idempotent(t *testing.T) {
	heap := filepath.Join(t.TempDir(), "heap.prof")
	p, err := Start(Options{Heap: heap})
	require.NoError(t, err)

	require.NoError(t, p.Stop())
	require.NoError(t, os.Remove(heap))
	require.NoError(t, p.Stop())

	_, err = os.Stat(heap)
	assert.True(t, os.IsNotExist(err), "second Stop must not rewrite the heap profile")
}

func TestStart_NothingRequested(t *testing.T) {
	assert.False(t, Options{}.Enabled())

	p, err := Start(Options{})
	require.NoError(t, err)
	assert.NoError(t, p.Stop())
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	assert.Error(t, err)
}

func TestStop_NilProfiler(t *testing.T) {
	var p *Profiler
	assert.NoError(t, p.Stop())
}

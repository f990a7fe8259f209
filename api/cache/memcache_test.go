package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoadKeepsTheValue(t *testing.T) {
	mc := NewMemCache(time.Hour)
	defer mc.Close()

	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	first, err := mc.GetOrLoad("key", time.Minute, load)
	require.NoError(t, err)
	second, err := mc.GetOrLoad("key", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, mc.Len())
}

func TestGetOrLoadReloadsExpiredKeys(t *testing.T) {
	mc := NewMemCache(time.Hour)
	defer mc.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	_, err := mc.GetOrLoad("key", time.Minute, load)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	value, err := mc.GetOrLoad("key", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 2, value)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	mc := NewMemCache(time.Hour)
	defer mc.Close()

	boom := errors.New("boom")
	_, err := mc.GetOrLoad("key", time.Minute, func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, mc.Len())

	value, err := mc.GetOrLoad("key", time.Minute, func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestGetOrLoadSharesConcurrentMisses(t *testing.T) {
	mc := NewMemCache(time.Hour)
	defer mc.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = mc.GetOrLoad("key", time.Minute, load)
		}()
	}

	// Let the callers pile up on the running load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, result := range results {
		assert.Equal(t, "value", result)
	}
}

func TestForget(t *testing.T) {
	mc := NewMemCache(time.Hour)
	defer mc.Close()

	_, err := mc.GetOrLoad("key", time.Minute, func() (any, error) { return 1, nil })
	require.NoError(t, err)

	mc.Forget("key")
	assert.Zero(t, mc.Len())

	value, err := mc.GetOrLoad("key", time.Minute, func() (any, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestMemCacheCleanup(t *testing.T) {
	mc := NewMemCache(10 * time.Millisecond)
	defer mc.Close()

	_, err := mc.GetOrLoad("short", time.Millisecond, func() (any, error) { return 1, nil })
	require.NoError(t, err)
	_, err = mc.GetOrLoad("long", time.Hour, func() (any, error) { return 2, nil })
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return mc.Len() == 1
	}, time.Second, 10*time.Millisecond)
}

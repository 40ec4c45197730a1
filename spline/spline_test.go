package spline_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leptonweight.io/lw/spline"
	"leptonweight.io/lw/spline/splinetest"
	"leptonweight.io/lw/storage/localfs"
)

func TestCacheLoadsOnce(t *testing.T) {
	b := splinetest.NewBackend(map[string]spline.Table{"a": splinetest.Const(1, 2)})
	c := spline.NewCache(b, spline.CacheOptions{})

	for i := 0; i < 3; i++ {
		tab, err := c.Get("a")
		require.NoError(t, err)
		assert.Equal(t, 1, tab.Dims())
	}
	assert.EqualValues(t, 1, b.Loads("a"))
	assert.Equal(t, 1, c.Len())
}

func TestCacheConcurrentSingleLoad(t *testing.T) {
	release := make(chan struct{})
	var loads int
	var mu sync.Mutex
	backend := spline.BackendFunc(func(id string) (spline.Table, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return splinetest.Const(2, 1), nil
	})
	c := spline.NewCache(backend, spline.CacheOptions{})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get("shared")
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loads)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	b := splinetest.NewBackend(nil)
	c := spline.NewCache(b, spline.CacheOptions{})

	_, err := c.Get("late")
	require.Error(t, err)
	assert.True(t, errors.Is(err, spline.ErrLoad))
	assert.False(t, errors.Is(err, spline.ErrEvaluate))
	var se *spline.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "late", se.Table)

	b.Add("late", splinetest.Const(1, 0))
	_, err = c.Get("late")
	require.NoError(t, err)
}

func TestCacheEvaluate(t *testing.T) {
	sum := splinetest.Func{N: 2, F: func(x []float64) float64 { return x[0] + x[1] }}
	c := spline.NewCache(splinetest.NewBackend(map[string]spline.Table{"sum": sum}), spline.CacheOptions{})

	got, err := c.Evaluate("sum", [][]float64{{1, 2}, {3, 4}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, got)

	_, err = c.Evaluate("sum", [][]float64{{1}}, 0)
	assert.True(t, errors.Is(err, spline.ErrEvaluate))

	_, err = c.Evaluate("sum", [][]float64{{1, 2}}, spline.Gradient(0))
	assert.True(t, errors.Is(err, spline.ErrEvaluate))

	_, err = c.Evaluate("sum", [][]float64{{1, 2}}, spline.Gradient(3))
	assert.True(t, errors.Is(err, spline.ErrEvaluate))
}

func TestGradient(t *testing.T) {
	assert.Equal(t, uint32(0), spline.Gradient())
	assert.Equal(t, uint32(0b101), spline.Gradient(0, 2))
}

func TestStoreBackend(t *testing.T) {
	store, err := localfs.New(t.TempDir())
	require.NoError(t, err)
	ref, err := store.Put([]byte("0.5"))
	require.NoError(t, err)

	backend := spline.StoreBackend{
		Store: store,
		Decode: func(data []byte) (spline.Table, error) {
			if string(data) != "0.5" {
				return nil, errors.New("unexpected payload")
			}
			return splinetest.Const(1, 0.5), nil
		},
	}
	c := spline.NewCache(backend, spline.CacheOptions{})
	v, err := c.Evaluate(ref.Name(), [][]float64{{0}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, v)

	_, err = c.Get("not-a-table")
	assert.True(t, errors.Is(err, spline.ErrLoad))
}

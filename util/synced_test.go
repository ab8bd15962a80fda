package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeCounter(t *testing.T) {
	t.Run("Basic Operations", func(t *testing.T) {
		c := NewSafeCounter()
		assert.Equal(t, uint64(0), c.Current())

		first := c.Next()
		assert.Equal(t, uint64(1), first)
		assert.True(t, c.IsCurrent(first))

		second := c.Next()
		assert.False(t, c.IsCurrent(first))
		assert.True(t, c.IsCurrent(second))
	})

	t.Run("Concurrency", func(t *testing.T) {
		c := NewSafeCounter()
		var wg sync.WaitGroup
		iterations := 1000

		wg.Add(iterations)
		for i := 0; i < iterations; i++ {
			go func() {
				defer wg.Done()
				c.Next()
			}()
		}
		wg.Wait()
		assert.Equal(t, uint64(iterations), c.Current())
	})
}

func TestSafeFlag(t *testing.T) {
	t.Run("Basic Operations", func(t *testing.T) {
		f := NewSafeFlag()
		assert.False(t, f.Value())

		assert.True(t, f.TrySet())
		assert.True(t, f.Value())
		assert.False(t, f.TrySet())

		f.Clear()
		assert.False(t, f.Value())
		assert.True(t, f.TrySet())
	})

	t.Run("Concurrency", func(t *testing.T) {
		f := NewSafeFlag()
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		iterations := 100

		wg.Add(iterations)
		for i := 0; i < iterations; i++ {
			go func() {
				defer wg.Done()
				if f.TrySet() {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, winners)
	})
}

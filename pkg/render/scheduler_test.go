package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewer(t *testing.T) {
	p := NewPreviewer(NewRenderer(Options{}), 0)
	p.Start()

	src := createGradient(64, 64)
	var last uint64
	for i := 0; i < 5; i++ {
		last = p.Submit(PreviewJob{
			ID:      fmt.Sprintf("job-%d", i),
			Request: Request{Source: src, Look: warmLook(), Intensity: float64(i) / 4},
			Bounds:  crop.Size{Width: 32, Height: 32},
		})
	}
	assert.Equal(t, last, p.Latest())

	timeout := time.After(5 * time.Second)
	for {
		select {
		case res := <-p.Results():
			require.NoError(t, res.Err)
			if res.ID != "job-4" {
				continue
			}
			assert.Equal(t, last, res.Generation)
			assert.Equal(t, 32, res.Result.Width)
			p.Stop()
			_, open := <-p.Results()
			assert.False(t, open)
			return
		case <-timeout:
			t.Fatal("timed out waiting for latest preview")
		}
	}
}

func TestPreviewerStopTwice(t *testing.T) {
	p := NewPreviewer(NewRenderer(Options{}), 0)
	p.Start()
	p.Stop()
	assert.NotPanics(t, p.Stop)
	_, open := <-p.Results()
	assert.False(t, open)
}

func TestExporter(t *testing.T) {
	gate := make(chan struct{})
	var once sync.Once
	r := NewRenderer(Options{OnStage: func(s Stage) {
		if s == StageShading {
			once.Do(func() { <-gate })
		}
	}})
	e := NewExporter(r)

	done, err := e.Start(context.Background(), Request{Source: createGradient(16, 16), Intensity: 1})
	require.NoError(t, err)

	require.Eventually(t, e.Busy, time.Second, time.Millisecond)
	_, err = e.Start(context.Background(), Request{Source: createGradient(16, 16), Intensity: 1})
	assert.ErrorIs(t, err, ErrExportBusy)

	close(gate)
	res := <-done
	require.NoError(t, res.Err)
	assert.Equal(t, 16, res.Result.Width)
	e.Wait()
	assert.False(t, e.Busy())

	done, err = e.Start(context.Background(), Request{Source: createGradient(4, 4), Intensity: 1})
	require.NoError(t, err)
	assert.NoError(t, (<-done).Err)
}

func TestSourceCache(t *testing.T) {
	t.Run("SingleLoadForConcurrentMisses", func(t *testing.T) {
		var calls atomic.Int32
		gate := make(chan struct{})
		c := NewSourceCache(func(ctx context.Context, key string) (image.Image, error) {
			calls.Add(1)
			<-gate
			return createGradient(2, 2), nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				img, err := c.Get(context.Background(), "a")
				assert.NoError(t, err)
				assert.NotNil(t, img)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(gate)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, c.Len())

		c.Invalidate("a")
		assert.Equal(t, 0, c.Len())
		_, err := c.Get(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("FailuresAreNotCached", func(t *testing.T) {
		var calls atomic.Int32
		c := NewSourceCache(func(ctx context.Context, key string) (image.Image, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("boom")
			}
			return createGradient(1, 1), nil
		})

		_, err := c.Get(context.Background(), "b")
		assert.Error(t, err)
		_, err = c.Get(context.Background(), "b")
		assert.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("CallerCancellation", func(t *testing.T) {
		gate := make(chan struct{})
		defer close(gate)
		c := NewSourceCache(func(ctx context.Context, key string) (image.Image, error) {
			<-gate
			return createGradient(1, 1), nil
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := c.Get(ctx, "c")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("BytesLoader", func(t *testing.T) {
		data := encodePNG(t, createGradient(5, 5))
		c := NewSourceCache(BytesLoader(func(ctx context.Context, key string) ([]byte, error) {
			if key == "missing" {
				return nil, errors.New("not found")
			}
			return data, nil
		}))
		img, err := c.Get(context.Background(), "ok")
		require.NoError(t, err)
		assert.Equal(t, 5, img.Bounds().Dx())

		_, err = c.Get(context.Background(), "missing")
		assert.ErrorContains(t, err, "not found")
	})
}

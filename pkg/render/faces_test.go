package render

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullToFaces(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)
	face := func(x0, y0, x1, y1 int, q float32) Face {
		return Face{Rect: image.Rect(x0, y0, x1, y1), Quality: q}
	}

	tests := []struct {
		name   string
		window image.Rectangle
		faces  []Face
		want   image.Rectangle
	}{
		{
			name:   "NoFaces",
			window: image.Rect(10, 10, 60, 60),
			want:   image.Rect(10, 10, 60, 60),
		},
		{
			name:   "AlreadyCovered",
			window: image.Rect(0, 0, 50, 50),
			faces:  []Face{face(10, 10, 30, 30, 20)},
			want:   image.Rect(0, 0, 50, 50),
		},
		{
			name:   "MovesMinimally",
			window: image.Rect(0, 0, 50, 50),
			faces:  []Face{face(120, 20, 140, 40, 20)},
			want:   image.Rect(90, 0, 140, 50),
		},
		{
			name:   "CoversUnion",
			window: image.Rect(0, 0, 50, 50),
			faces:  []Face{face(100, 10, 110, 20, 30), face(130, 30, 140, 40, 15)},
			want:   image.Rect(90, 0, 140, 50),
		},
		{
			name:   "UnionTooWideKeepsBest",
			window: image.Rect(100, 0, 150, 50),
			faces:  []Face{face(10, 10, 20, 20, 40), face(180, 80, 190, 90, 12)},
			want:   image.Rect(10, 0, 60, 50),
		},
		{
			name:   "LargeFaceIsCentered",
			window: image.Rect(0, 0, 60, 60),
			faces:  []Face{face(50, 0, 150, 100, 25)},
			want:   image.Rect(70, 20, 130, 80),
		},
		{
			name:   "StaysInBounds",
			window: image.Rect(0, 0, 50, 50),
			faces:  []Face{face(190, 90, 200, 100, 25)},
			want:   image.Rect(150, 50, 200, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pullToFaces(tt.window, tt.faces, bounds)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.window.Size(), got.Size())
			assert.True(t, got.In(bounds))
		})
	}
}

func TestFaceDetector(t *testing.T) {
	t.Run("NilFindsNothing", func(t *testing.T) {
		var d *FaceDetector
		faces, err := d.Detect(context.Background(), createGradient(10, 10))
		require.NoError(t, err)
		assert.Empty(t, faces)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = d.Detect(ctx, createGradient(10, 10))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("CorruptModel", func(t *testing.T) {
		assert.NotPanics(t, func() {
			d, err := NewFaceDetector([]byte("not a cascade"), FaceOptions{})
			assert.Error(t, err)
			assert.Nil(t, d)
		})
	})

	t.Run("MissingModel", func(t *testing.T) {
		_, err := LoadFaceDetector(filepath.Join(t.TempDir(), "facefinder"), DefaultFaceOptions())
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestSuggestCropWithoutFaces(t *testing.T) {
	src := createGradient(120, 80)
	plain, err := SuggestCrop(context.Background(), src, 1)
	require.NoError(t, err)
	boosted, err := SuggestCropWithFaces(context.Background(), src, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, plain, boosted)
}

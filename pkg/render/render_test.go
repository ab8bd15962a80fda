package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/pkg/grade"
	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, width-1)),
				G: uint8(y * 255 / max(1, height-1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func warmLook() look.Look {
	l := look.NeutralLook()
	l.Adjustments.Exposure = 0.4
	l.Adjustments.Temperature = 0.8
	l.Adjustments.Contrast = 1.2
	l.ColorMix.Hue[look.Blue] = 0.2
	return l
}

func TestExport(t *testing.T) {
	r := NewRenderer(Options{Workers: 3})

	t.Run("NeutralLookKeepsPixels", func(t *testing.T) {
		src := createGradient(40, 30)
		src.SetNRGBA(3, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

		res, err := r.Export(context.Background(), Request{Source: src, Look: look.NeutralLook(), Intensity: 1})
		require.NoError(t, err)
		assert.Equal(t, 40, res.Width)
		assert.Equal(t, 30, res.Height)
		assert.Equal(t, crop.Full, res.Crop)
		assert.Equal(t, uint8(128), res.Image.NRGBAAt(3, 3).A)

		for i := range src.Pix {
			assert.InDelta(t, int(src.Pix[i]), int(res.Image.Pix[i]), 1)
		}

		decoded, err := jpeg.Decode(bytes.NewReader(res.JPEG))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 30), decoded.Bounds())
	})

	t.Run("NeutralLookIsNotDithered", func(t *testing.T) {
		tuning := grade.DefaultTuning()
		tuning.DitherAmplitude = 16.0 / 255.0
		noisy := NewRenderer(Options{Workers: 2, Tuning: tuning})
		src := createGradient(24, 12)

		res, err := noisy.Export(context.Background(), Request{Source: src, Look: look.NeutralLook(), Intensity: 1})
		require.NoError(t, err)
		assert.Equal(t, src.Pix, res.Image.Pix)

		preview, err := noisy.Preview(context.Background(), Request{Source: src, Look: look.NeutralLook(), Intensity: 1}, crop.Size{Width: 24, Height: 12})
		require.NoError(t, err)
		assert.Equal(t, src.Pix, preview.Image.Pix)

		graded, err := noisy.Export(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 1})
		require.NoError(t, err)
		assert.NotEqual(t, src.Pix, graded.Image.Pix)
	})

	t.Run("ZeroIntensityMatchesNeutral", func(t *testing.T) {
		src := createGradient(16, 16)
		graded, err := r.Export(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 0})
		require.NoError(t, err)
		plain, err := r.Export(context.Background(), Request{Source: src, Look: look.NeutralLook(), Intensity: 1})
		require.NoError(t, err)
		assert.Equal(t, plain.Image.Pix, graded.Image.Pix)
	})

	t.Run("CropDimensions", func(t *testing.T) {
		src := createGradient(101, 51)
		rect := crop.Rect{X: 0.333, Y: 0.1, W: 0.5, H: 0.5}
		res, err := r.Export(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 1, Crop: &rect})
		require.NoError(t, err)
		assert.Equal(t, 51, res.Width)
		assert.Equal(t, 26, res.Height)
	})

	t.Run("CropMatchesFullFrame", func(t *testing.T) {
		src := createGradient(64, 48)
		rect := crop.Rect{X: 0.25, Y: 0.5, W: 0.5, H: 0.25}
		full, err := r.Export(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 0.7})
		require.NoError(t, err)
		part, err := r.Export(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 0.7, Crop: &rect})
		require.NoError(t, err)

		origin, err := crop.PixelRect(rect, 64, 48)
		require.NoError(t, err)
		for y := 0; y < part.Height; y++ {
			for x := 0; x < part.Width; x++ {
				assert.Equal(t, full.Image.NRGBAAt(x+origin.Min.X, y+origin.Min.Y), part.Image.NRGBAAt(x, y))
			}
		}
	})

	t.Run("DegenerateCropFallsBackToFullFrame", func(t *testing.T) {
		src := createGradient(4, 4)
		rect := crop.Rect{X: 0.5, Y: 0.5, W: 0.05, H: 0.05}
		res, err := r.Export(context.Background(), Request{Source: src, Intensity: 1, Crop: &rect})
		require.NoError(t, err)
		assert.Equal(t, 4, res.Width)
		assert.Equal(t, 4, res.Height)
		assert.Equal(t, crop.Full, res.Crop)
	})

	t.Run("DecodesBytes", func(t *testing.T) {
		data := encodePNG(t, createGradient(20, 10))
		res, err := r.Export(context.Background(), Request{Data: data, Look: warmLook(), Intensity: 1})
		require.NoError(t, err)
		assert.Equal(t, 20, res.Width)
		assert.Equal(t, 10, res.Height)
	})

	t.Run("IgnoresCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := r.Export(ctx, Request{Source: createGradient(8, 8), Look: warmLook(), Intensity: 1})
		require.NoError(t, err)
		assert.NotEmpty(t, res.JPEG)
	})
}

func TestExportErrors(t *testing.T) {
	var stages []Stage
	r := NewRenderer(Options{OnStage: func(s Stage) { stages = append(stages, s) }})

	t.Run("DecodeError", func(t *testing.T) {
		stages = nil
		res, err := r.Export(context.Background(), Request{Data: []byte("not an image")})
		assert.Nil(t, res)
		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, []Stage{StageDecoding, StageFailed}, stages)
	})

	t.Run("NoSource", func(t *testing.T) {
		_, err := r.Export(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("EncodeError", func(t *testing.T) {
		_, err := EncodeJPEG(context.Background(), image.NewNRGBA(image.Rect(0, 0, 70000, 1)), 90)
		var encodeErr *EncodeError
		require.True(t, errors.As(err, &encodeErr))
		assert.Equal(t, "jpeg", encodeErr.Format)
	})
}

func TestStages(t *testing.T) {
	var stages []Stage
	r := NewRenderer(Options{OnStage: func(s Stage) { stages = append(stages, s) }})

	_, err := r.Export(context.Background(), Request{Source: createGradient(8, 8), Intensity: 1})
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageDecoding, StageCropping, StageShading, StageDithering, StageEncoding, StageDone}, stages)

	assert.Equal(t, "shading", StageShading.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestPreview(t *testing.T) {
	r := NewRenderer(Options{})
	src := createGradient(200, 100)

	t.Run("FitsBounds", func(t *testing.T) {
		res, err := r.Preview(context.Background(), Request{Source: src, Look: warmLook(), Intensity: 1}, crop.Size{Width: 100, Height: 100})
		require.NoError(t, err)
		assert.Equal(t, 100, res.Width)
		assert.Equal(t, 50, res.Height)
		assert.Nil(t, res.Clip)
		assert.Empty(t, res.JPEG)
	})

	t.Run("ReportsClip", func(t *testing.T) {
		rect := crop.Rect{X: 0, Y: 0, W: 0.5, H: 1}
		res, err := r.Preview(context.Background(), Request{Source: src, Intensity: 1, Crop: &rect}, crop.Size{Width: 100, Height: 100})
		require.NoError(t, err)
		require.NotNil(t, res.Clip)
		assert.InDelta(t, 50, res.Clip.W, 1e-9)
		assert.InDelta(t, 50, res.Clip.H, 1e-9)
	})

	t.Run("UpscalesToCanvas", func(t *testing.T) {
		rect := crop.Rect{X: 0, Y: 0, W: 0.5, H: 1}
		res, err := r.Preview(context.Background(), Request{Source: src, Intensity: 1, Crop: &rect}, crop.Size{Width: 800, Height: 800})
		require.NoError(t, err)
		assert.Equal(t, 800, res.Width)
		assert.Equal(t, 400, res.Height)
		require.NotNil(t, res.Clip)
		assert.InDelta(t, 400, res.Clip.W, 1e-9)
		assert.InDelta(t, 400, res.Clip.H, 1e-9)
	})

	t.Run("UpscalesFullFrame", func(t *testing.T) {
		res, err := r.Preview(context.Background(), Request{Source: createGradient(20, 10), Intensity: 1}, crop.Size{Width: 300, Height: 300})
		require.NoError(t, err)
		assert.Equal(t, 300, res.Width)
		assert.Equal(t, 150, res.Height)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Preview(ctx, Request{Source: src, Intensity: 1}, crop.Size{Width: 100, Height: 100})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("EmptyBounds", func(t *testing.T) {
		_, err := r.Preview(context.Background(), Request{Source: src, Intensity: 1}, crop.Size{})
		assert.ErrorIs(t, err, crop.ErrDegenerate)
	})
}

func TestDecode(t *testing.T) {
	img, format, err := Decode(context.Background(), encodePNG(t, createGradient(3, 2)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	_, _, err = Decode(context.Background(), nil)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestSuggestCrop(t *testing.T) {
	src := createGradient(120, 80)

	t.Run("Square", func(t *testing.T) {
		rect, err := SuggestCrop(context.Background(), src, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, (rect.W*120)/(rect.H*80), 0.1)
		assert.LessOrEqual(t, rect.X+rect.W, 1+1e-9)
		assert.LessOrEqual(t, rect.Y+rect.H, 1+1e-9)
	})

	t.Run("FreeRatio", func(t *testing.T) {
		rect, err := SuggestCrop(context.Background(), src, 0)
		require.NoError(t, err)
		assert.Equal(t, crop.Full, rect)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := SuggestCrop(ctx, src, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

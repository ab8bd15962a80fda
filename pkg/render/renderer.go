// Package render turns a source image, a look and a crop into output
// pixels. Export renders the cropped region at full resolution; Preview
// renders the whole frame fitted to display bounds.
package render

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/disintegration/imaging"
	cm "github.com/dixieflatline76/halook/pkg/colormodel"
	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/pkg/grade"
	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/dixieflatline76/halook/util/log"
	"golang.org/x/sync/errgroup"
)

// Options configures a Renderer.
type Options struct {
	Quality     int          // JPEG quality for exports. Default: 92
	Workers     int          // Parallel row bands. Default: runtime.NumCPU()
	MinCropSize float64      // Default: crop.DefaultMinSize
	Tuning      grade.Tuning // Default: grade.DefaultTuning()
	OnStage     StageFunc    // Optional stage observer
}

// Request is one render job. Source wins over Data when both are set.
type Request struct {
	Source       image.Image
	Data         []byte
	Look         look.Look
	Intensity    float64
	Crop         *crop.Rect
	TargetAspect *float64
}

// Result is a finished render.
type Result struct {
	Image  *image.NRGBA
	Width  int
	Height int
	// JPEG holds the encoded export. Previews leave it empty.
	JPEG []byte
	// Crop is the region that was applied, after clamping.
	Crop crop.Rect
	// Clip is the crop region in preview pixels. Nil for exports and for
	// uncropped previews.
	Clip *crop.Rect
}

// Renderer runs requests through decode, crop, shade, dither and encode.
// It holds no per-request state and is safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options with defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MinCropSize <= 0 {
		opts.MinCropSize = crop.DefaultMinSize
	}
	if opts.Tuning == (grade.Tuning{}) {
		opts.Tuning = grade.DefaultTuning()
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

func (r *Renderer) stage(s Stage) {
	log.Debugf("render: %s", s)
	if r.opts.OnStage != nil {
		r.opts.OnStage(s)
	}
}

func (r *Renderer) fail(err error) error {
	r.stage(StageFailed)
	return err
}

// Export renders the cropped region at full resolution and encodes it.
// Once started it runs to completion: cancelling ctx has no effect. On
// failure no partial output is returned.
func (r *Renderer) Export(ctx context.Context, req Request) (*Result, error) {
	ctx = context.WithoutCancel(ctx)

	src, err := r.source(ctx, req)
	if err != nil {
		return nil, r.fail(err)
	}

	r.stage(StageCropping)
	region := r.region(req.Crop)
	cropped, origin, region := r.cropSource(src, region)

	shader := grade.NewShader(req.Look.At(req.Intensity), r.opts.Tuning)
	out, err := r.shade(ctx, cropped, shader, ditherGrid{origin: origin, scaleX: 1, scaleY: 1})
	if err != nil {
		return nil, r.fail(err)
	}

	r.stage(StageEncoding)
	data, err := EncodeJPEG(ctx, out, r.opts.Quality)
	if err != nil {
		return nil, r.fail(err)
	}

	r.stage(StageDone)
	b := out.Bounds()
	return &Result{Image: out, Width: b.Dx(), Height: b.Dy(), JPEG: data, Crop: region}, nil
}

// Preview renders the whole frame scaled to fit the canvas picked for bounds
// and the target aspect, upscaling small sources. The crop is not
// applied to the pixels; Result.Clip locates it on the preview so the
// caller can mask outside it. Preview returns ctx.Err() once ctx is done.
func (r *Renderer) Preview(ctx context.Context, req Request, bounds crop.Size) (*Result, error) {
	src, err := r.source(ctx, req)
	if err != nil {
		return nil, r.fail(err)
	}

	r.stage(StageCropping)
	region := r.region(req.Crop)
	sb := src.Bounds()
	imageAspect := crop.Size{Width: float64(sb.Dx()), Height: float64(sb.Dy())}.Aspect()
	canvas := crop.FitWithinBounds(bounds, crop.TargetAspect(imageAspect, region, req.TargetAspect))
	if canvas.Width < 1 || canvas.Height < 1 {
		return nil, r.fail(fmt.Errorf("preview bounds %gx%g: %w", bounds.Width, bounds.Height, crop.ErrDegenerate))
	}

	// The whole frame is scaled, up or down, to the largest size that fits
	// the canvas, so the clip keeps its place on the frame.
	frame := crop.FitWithinBounds(canvas, imageAspect)
	fitted := imaging.Resize(src, max(1, int(math.Round(frame.Width))), max(1, int(math.Round(frame.Height))), imaging.Linear)
	if err := checkContext(ctx); err != nil {
		return nil, r.fail(err)
	}

	fb := fitted.Bounds()
	grid := ditherGrid{
		scaleX: float64(sb.Dx()) / float64(fb.Dx()),
		scaleY: float64(sb.Dy()) / float64(fb.Dy()),
	}
	shader := grade.NewShader(req.Look.At(req.Intensity), r.opts.Tuning)
	out, err := r.shade(ctx, fitted, shader, grid)
	if err != nil {
		return nil, r.fail(err)
	}

	res := &Result{Image: out, Width: fb.Dx(), Height: fb.Dy(), Crop: region}
	if clip, ok := crop.DisplayClip(region, crop.Size{Width: float64(fb.Dx()), Height: float64(fb.Dy())}); ok {
		res.Clip = &clip
	}
	r.stage(StageDone)
	return res, nil
}

func (r *Renderer) source(ctx context.Context, req Request) (image.Image, error) {
	r.stage(StageDecoding)
	if req.Source != nil {
		return req.Source, checkContext(ctx)
	}
	if len(req.Data) == 0 {
		return nil, ErrNoSource
	}
	img, _, err := Decode(ctx, req.Data)
	return img, err
}

func (r *Renderer) region(rect *crop.Rect) crop.Rect {
	if rect == nil {
		return crop.Full
	}
	return crop.Clamp(*rect, r.opts.MinCropSize)
}

// cropSource copies region out of src. A region that resolves to no pixels
// is logged and replaced by the full frame.
func (r *Renderer) cropSource(src image.Image, region crop.Rect) (*image.NRGBA, image.Point, crop.Rect) {
	if crop.IsFull(region) {
		return imaging.Clone(src), image.Point{}, crop.Full
	}

	b := src.Bounds()
	px, err := crop.PixelRect(region, b.Dx(), b.Dy())
	if err != nil {
		gerr := &GeometryError{Rect: region, Width: b.Dx(), Height: b.Dy(), Err: err}
		log.Printf("render: %v, using full frame", gerr)
		return imaging.Clone(src), image.Point{}, crop.Full
	}
	return imaging.Crop(src, px.Add(b.Min)), px.Min, region
}

// ditherGrid maps output pixels back to source pixels so a pixel dithers
// the same way in a preview, a crop and a full export.
type ditherGrid struct {
	origin         image.Point
	scaleX, scaleY float64
}

func (g ditherGrid) at(x, y int) (int, int) {
	if g.scaleX == 1 && g.scaleY == 1 {
		return x + g.origin.X, y + g.origin.Y
	}
	sx := int((float64(x) + 0.5) * g.scaleX)
	sy := int((float64(y) + 0.5) * g.scaleY)
	return sx + g.origin.X, sy + g.origin.Y
}

// shade runs the shader over img into a float buffer, then dithers and
// quantizes into a new image. Alpha is copied unchanged.
func (r *Renderer) shade(ctx context.Context, img *image.NRGBA, shader *grade.Shader, grid ditherGrid) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	r.stage(StageShading)
	buf := make([]float64, w*h*3)
	err := r.rows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := img.Pix[i : i+3 : i+3]
			c := shader.Pixel(cm.RGB{
				R: float64(p[0]) / 255,
				G: float64(p[1]) / 255,
				B: float64(p[2]) / 255,
			})
			o := (y*w + x) * 3
			buf[o], buf[o+1], buf[o+2] = c.R, c.G, c.B
		}
	})
	if err != nil {
		return nil, err
	}

	// The neutral look reproduces the source exactly, so it is not dithered.
	r.stage(StageDithering)
	identity := shader.Identity()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	err = r.rows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 3
			offset := 0.0
			if !identity {
				offset = shader.Dither(grid.at(x, y))
			}
			c := grade.Finish(cm.RGB{R: buf[o], G: buf[o+1], B: buf[o+2]}, offset)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = grade.Quantize(c.R)
			out.Pix[i+1] = grade.Quantize(c.G)
			out.Pix[i+2] = grade.Quantize(c.B)
			out.Pix[i+3] = img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// rows calls fn for every row in [0, h), spreading bands of rows over the
// configured number of workers. It stops early once ctx is done.
func (r *Renderer) rows(ctx context.Context, h int, fn func(y int)) error {
	if h == 0 {
		return checkContext(ctx)
	}
	bands := r.opts.Workers * 4
	band := (h + bands - 1) / bands

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for start := 0; start < h; start += band {
		start, end := start, min(start+band, h)
		g.Go(func() error {
			if err := checkContext(gctx); err != nil {
				return err
			}
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return checkContext(ctx)
}

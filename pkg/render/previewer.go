package render

import (
	"context"
	"sync"

	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/util"
	"github.com/dixieflatline76/halook/util/log"
	"golang.org/x/time/rate"
)

// DefaultPreviewFPS caps how often the previewer starts a new render.
const DefaultPreviewFPS = 30

// PreviewJob is a preview request plus the display bounds it targets.
type PreviewJob struct {
	ID      string
	Request Request
	Bounds  crop.Size
}

// PreviewResult is delivered for the latest job only.
type PreviewResult struct {
	ID         string
	Generation uint64
	Result     *Result
	Err        error
}

// Previewer renders previews on a single worker goroutine. A new Submit
// replaces any job that has not started and cancels the one in flight, so
// only the most recent request produces a result.
type Previewer struct {
	renderer *Renderer
	limiter  *rate.Limiter
	gen      *util.SafeCounter

	mu       sync.Mutex
	pending  *PreviewJob
	pendGen  uint64
	inflight context.CancelFunc

	wake    chan struct{}
	results chan PreviewResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stop    sync.Once
}

// NewPreviewer creates a previewer limited to fps renders per second. A
// non-positive fps disables the limit.
func NewPreviewer(r *Renderer, fps float64) *Previewer {
	limit := rate.Inf
	if fps > 0 {
		limit = rate.Limit(fps)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Previewer{
		renderer: r,
		limiter:  rate.NewLimiter(limit, 1),
		gen:      util.NewSafeCounter(),
		wake:     make(chan struct{}, 1),
		results:  make(chan PreviewResult, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the worker.
func (p *Previewer) Start() {
	p.wg.Add(1)
	go p.workerLoop()
}

// Stop cancels any render in flight, waits for the worker and closes the
// results channel. Calls after the first are no-ops.
func (p *Previewer) Stop() {
	p.stop.Do(func() {
		p.cancel()
		p.wg.Wait()
		close(p.results)
		log.Debugf("Previewer stopped at generation %d", p.gen.Current())
	})
}

// Results delivers finished previews. Only the newest job is delivered;
// superseded renders are dropped.
func (p *Previewer) Results() <-chan PreviewResult {
	return p.results
}

// Latest returns the generation of the most recent Submit.
func (p *Previewer) Latest() uint64 {
	return p.gen.Current()
}

// Submit queues job as the only pending preview and returns its generation.
func (p *Previewer) Submit(job PreviewJob) uint64 {
	gen := p.gen.Next()

	p.mu.Lock()
	p.pending = &job
	p.pendGen = gen
	if p.inflight != nil {
		p.inflight()
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return gen
}

func (p *Previewer) take() (*PreviewJob, uint64, context.Context, context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, gen := p.pending, p.pendGen
	p.pending = nil
	ctx, cancel := context.WithCancel(p.ctx)
	p.inflight = cancel
	return job, gen, ctx, cancel
}

func (p *Previewer) workerLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
		}

		if err := p.limiter.Wait(p.ctx); err != nil {
			return
		}

		job, gen, ctx, cancel := p.take()
		if job == nil {
			cancel()
			continue
		}

		res, err := p.renderer.Preview(ctx, job.Request, job.Bounds)
		cancel()

		if !p.gen.IsCurrent(gen) {
			log.Debugf("Previewer: dropping generation %d", gen)
			continue
		}

		select {
		case p.results <- PreviewResult{ID: job.ID, Generation: gen, Result: res, Err: err}:
		case <-p.ctx.Done():
			return
		}
	}
}

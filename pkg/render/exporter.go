package render

import (
	"context"
	"sync"

	"github.com/dixieflatline76/halook/util"
	"github.com/dixieflatline76/halook/util/log"
)

// ExportResult is the outcome of an asynchronous export.
type ExportResult struct {
	Result *Result
	Err    error
}

// Exporter runs one export at a time off the caller's goroutine.
type Exporter struct {
	renderer *Renderer
	busy     *util.SafeFlag
	wg       sync.WaitGroup
}

// NewExporter creates an exporter backed by r.
func NewExporter(r *Renderer) *Exporter {
	return &Exporter{renderer: r, busy: util.NewSafeFlag()}
}

// Busy reports whether an export is running.
func (e *Exporter) Busy() bool {
	return e.busy.Value()
}

// Start begins exporting req and returns a channel that receives exactly
// one result. It returns ErrExportBusy if another export is running.
// Cancelling ctx does not stop an export that has started.
func (e *Exporter) Start(ctx context.Context, req Request) (<-chan ExportResult, error) {
	if !e.busy.TrySet() {
		return nil, ErrExportBusy
	}

	done := make(chan ExportResult, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		res, err := e.renderer.Export(ctx, req)
		if err != nil {
			log.Printf("Export failed: %v", err)
		}
		e.busy.Clear()
		done <- ExportResult{Result: res, Err: err}
	}()
	return done, nil
}

// Wait blocks until the running export, if any, has finished.
func (e *Exporter) Wait() {
	e.wg.Wait()
}

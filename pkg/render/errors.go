package render

import (
	"errors"
	"fmt"

	"github.com/dixieflatline76/halook/pkg/crop"
)

var (
	// ErrNoSource is returned when a request carries neither an image nor
	// encoded bytes.
	ErrNoSource = errors.New("render request has no source")
	// ErrExportBusy is returned when an export is requested while another
	// one is still running.
	ErrExportBusy = errors.New("export already in progress")
)

// DecodeError reports source bytes that could not be turned into an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding source: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to encode the rendered image.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// GeometryError reports a crop that cannot be applied to the source. The
// pipeline recovers from it by rendering the full frame.
type GeometryError struct {
	Rect   crop.Rect
	Width  int
	Height int
	Err    error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("crop %+v on %dx%d: %v", e.Rect, e.Width, e.Height, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Package segment separates the subject of a photo from its background and
// turns the result into alpha.
package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	lpimage "laser-prep/internal/image"
	"laser-prep/internal/mask"
)

// ErrMaskSize is returned when a segmenter produces a mask that does not
// match its input.
var ErrMaskSize = errors.New("segmentation mask size mismatch")

// ProgressFunc receives a coarse completion percentage in [0, 100].
type ProgressFunc func(percent int)

// Segmenter produces a soft foreground mask for an image: an opaque gray
// buffer of the same size where 255 keeps a pixel and 0 removes it.
type Segmenter interface {
	Segment(ctx context.Context, buf *lpimage.Buffer, onProgress ProgressFunc) (*lpimage.Buffer, error)
}

// OpenFunc creates a segmenter. It may be slow, for example when it loads a
// model from disk.
type OpenFunc func() (Segmenter, error)

// Handle owns a segmenter that is created on first use and shared for the
// lifetime of the process. Callers pass the handle explicitly.
type Handle struct {
	open OpenFunc
	once sync.Once
	seg  Segmenter
	err  error
}

// NewHandle returns a handle that opens its segmenter lazily with open.
func NewHandle(open OpenFunc) *Handle {
	return &Handle{open: open}
}

// Acquire returns the segmenter, opening it on the first call. A failed
// open is remembered and returned on every later call.
func (h *Handle) Acquire() (Segmenter, error) {
	h.once.Do(func() {
		h.seg, h.err = h.open()
		if h.err != nil {
			h.err = fmt.Errorf("failed to open segmenter: %w", h.err)
		}
	})
	return h.seg, h.err
}

// Close releases the segmenter if it was opened and holds resources.
func (h *Handle) Close() error {
	if c, ok := h.seg.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RemoveBackground segments buf and scales its alpha by the mask. The input
// is not modified.
func RemoveBackground(ctx context.Context, h *Handle, buf *lpimage.Buffer, onProgress ProgressFunc) (*lpimage.Buffer, error) {
	buf.MustValidate()

	seg, err := h.Acquire()
	if err != nil {
		return nil, err
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	m, err := seg.Segment(ctx, buf, onProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to segment image: %w", err)
	}
	if m.Width != buf.Width || m.Height != buf.Height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrMaskSize, m.Width, m.Height, buf.Width, buf.Height)
	}

	return mask.ApplyMask(buf, m, mask.Placement{Scale: 1}), nil
}

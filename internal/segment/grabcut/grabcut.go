// Package grabcut segments images with OpenCV's GrabCut, initialised from a
// rectangle slightly inside the image border.
package grabcut

import (
	"context"
	"fmt"
	"image"

	lpimage "laser-prep/internal/image"
	"laser-prep/internal/segment"
	"laser-prep/pkg/colorutil"

	"gocv.io/x/gocv"
)

// GrabCut mask labels that count as foreground.
const (
	labelForeground         = 1
	labelProbableForeground = 3
)

// Segmenter runs GrabCut and softens the resulting hard mask.
type Segmenter struct {
	Iterations int     // GrabCut iterations, each reported as progress
	Inset      float64 // Fraction of each side assumed to be background
	Feather    int     // Gaussian kernel radius applied to the mask
}

var _ segment.Segmenter = (*Segmenter)(nil)

// New returns a Segmenter with default settings.
func New() *Segmenter {
	return &Segmenter{
		Iterations: 5,
		Inset:      0.05,
		Feather:    3,
	}
}

// Open adapts New to segment.OpenFunc.
func Open() (segment.Segmenter, error) {
	return New(), nil
}

// Segment implements segment.Segmenter. Cancellation is checked between
// iterations.
func (s *Segmenter) Segment(ctx context.Context, buf *lpimage.Buffer, onProgress segment.ProgressFunc) (*lpimage.Buffer, error) {
	buf.MustValidate()
	if onProgress == nil {
		onProgress = func(int) {}
	}

	w, h := buf.Width, buf.Height
	rect := s.rect(w, h)
	if rect.Empty() {
		return nil, fmt.Errorf("image %dx%d too small for grabcut", w, h)
	}

	img := bufferToMat(lpimage.Flatten(buf, colorutil.White))
	defer img.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	iterations := max(1, s.Iterations)
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := gocv.GCEval
		if i == 0 {
			mode = gocv.GCInitWithRect
		}
		gocv.GrabCut(img, &labels, rect, &bgdModel, &fgdModel, 1, mode)
		onProgress((i + 1) * 90 / iterations)
	}

	hard := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer hard.Close()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch labels.GetUCharAt(y, x) {
			case labelForeground, labelProbableForeground:
				hard.SetUCharAt(y, x, 255)
			}
		}
	}

	soft := gocv.NewMat()
	defer soft.Close()
	if s.Feather > 0 {
		k := 2*s.Feather + 1
		gocv.GaussianBlur(hard, &soft, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)
	} else {
		hard.CopyTo(&soft)
	}

	out := lpimage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			out.SetGray(p, soft.GetUCharAt(y, x))
			out.Data[p*4+3] = 255
		}
	}
	onProgress(100)
	return out, nil
}

// rect returns the initial foreground rectangle.
func (s *Segmenter) rect(w, h int) image.Rectangle {
	dx := max(1, int(float64(w)*s.Inset))
	dy := max(1, int(float64(h)*s.Inset))
	return image.Rect(dx, dy, w-dx, h-dy)
}

// bufferToMat converts an opaque buffer to a BGR Mat.
func bufferToMat(buf *lpimage.Buffer) gocv.Mat {
	mat := gocv.NewMatWithSize(buf.Height, buf.Width, gocv.MatTypeCV8UC3)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := buf.Index(x, y)
			mat.SetUCharAt(y, x*3+0, buf.Data[i+2])
			mat.SetUCharAt(y, x*3+1, buf.Data[i+1])
			mat.SetUCharAt(y, x*3+2, buf.Data[i])
		}
	}
	return mat
}

// Package app provides processing session management, file watching, and events.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	lpimage "laser-prep/internal/image"
	"laser-prep/internal/job"
	"laser-prep/internal/laser"
	"laser-prep/internal/mask"
	"laser-prep/internal/preset"
	"laser-prep/internal/segment"
	"laser-prep/internal/trace"
)

// ErrSuperseded is returned by Process when a newer change arrived while it
// was running. The stale result is discarded.
var ErrSuperseded = errors.New("result superseded by a newer change")

// ErrNoSource is returned by Process before an image has been loaded.
var ErrNoSource = errors.New("no source image loaded")

// Session holds the active job, the last-known-good source image, and the
// latest processing result.
type Session struct {
	mu sync.RWMutex

	// Job
	JobPath string
	Job     *job.File

	// Source image, already downsampled to the job's max size
	Source *lpimage.Source

	// Latest result and whether it is out of date
	Result *Result
	Dirty  bool

	generation uint64
	segmenters map[string]*segment.Handle

	// Event listeners
	listeners map[EventType][]EventListener
}

// Result is the output of one processing run.
type Result struct {
	Image  *lpimage.Buffer
	SVG    string       // Empty unless the job asks for SVG contours
	Paths  []trace.Path // Traced contours behind SVG
	Config preset.Config
	Size   laser.Size // Engraved size at the job DPI
}

// EventType identifies different session events.
type EventType int

const (
	EventJobLoaded EventType = iota
	EventSourceLoaded
	EventModified
	EventProgress
	EventProcessed
	EventSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewSession creates an empty session with the border background remover.
// Other removers are registered with SetSegmenter.
func NewSession() *Session {
	return &Session{
		segmenters: map[string]*segment.Handle{
			job.BackgroundBorder: segment.NewHandle(func() (segment.Segmenter, error) {
				return segment.NewBorderSegmenter(), nil
			}),
		},
		listeners: make(map[EventType][]EventListener),
	}
}

// SetSegmenter replaces the background remover used for method.
func (s *Session) SetSegmenter(method string, h *segment.Handle) {
	s.mu.Lock()
	s.segmenters[method] = h
	s.mu.Unlock()
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// MarkDirty records that the job or source changed. Any run in progress
// becomes stale.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	s.Dirty = true
	s.generation++
	s.mu.Unlock()
	s.Emit(EventModified, true)
}

// IsDirty reports whether the latest result is out of date.
func (s *Session) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dirty
}

// LoadJob loads a job file and its input image.
func (s *Session) LoadJob(path string) error {
	f, err := job.Load(path)
	if err != nil {
		return err
	}
	s.SetJob(path, f)
	s.Emit(EventJobLoaded, path)

	return s.LoadSource(f.InputPath(path))
}

// ReloadJob re-reads the job file. The input image is reloaded when the job
// points at a different file or reloadSource is set; otherwise the cached
// source is kept.
func (s *Session) ReloadJob(reloadSource bool) error {
	s.mu.RLock()
	path := s.JobPath
	oldInput := ""
	if s.Job != nil {
		oldInput = s.Job.InputPath(path)
	}
	s.mu.RUnlock()

	f, err := job.Load(path)
	if err != nil {
		return err
	}
	s.SetJob(path, f)
	s.Emit(EventJobLoaded, path)

	if input := f.InputPath(path); reloadSource || input != oldInput || s.source() == nil {
		return s.LoadSource(input)
	}
	return nil
}

// SetJob installs a job without touching the source image.
func (s *Session) SetJob(path string, f *job.File) {
	s.mu.Lock()
	s.JobPath = path
	s.Job = f
	s.mu.Unlock()
	s.MarkDirty()
}

// LoadSource decodes an image and caches it as the processing source. On
// failure the previous source is kept.
func (s *Session) LoadSource(path string) error {
	src, err := lpimage.Load(path)
	if err != nil {
		return err
	}
	log.Printf("Loaded %s image: %dx%d", path, src.Buffer.Width, src.Buffer.Height)

	s.mu.RLock()
	maxSize := 0
	if s.Job != nil {
		maxSize = s.Job.MaxSize
	}
	s.mu.RUnlock()

	if maxSize > 0 {
		src.Buffer = lpimage.Fit(src.Buffer, maxSize)
		log.Printf("Downsampled to %dx%d", src.Buffer.Width, src.Buffer.Height)
	}

	s.SetSource(src)
	return nil
}

// SetSource installs an already decoded source image.
func (s *Session) SetSource(src *lpimage.Source) {
	s.mu.Lock()
	s.Source = src
	s.mu.Unlock()
	s.MarkDirty()
	s.Emit(EventSourceLoaded, src)
}

func (s *Session) source() *lpimage.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Source
}

// Process runs the job on the cached source. If the job or source changes
// while it runs, the result is dropped and ErrSuperseded returned.
func (s *Session) Process(ctx context.Context) (*Result, error) {
	s.mu.RLock()
	f, src, gen := s.Job, s.Source, s.generation
	var seg *segment.Handle
	if f != nil {
		seg = s.segmenters[f.RemoveBackground]
	}
	jobPath := s.JobPath
	s.mu.RUnlock()

	if src == nil {
		return nil, ErrNoSource
	}
	if f == nil {
		f = job.New("untitled", src.Path)
	}

	res, err := s.run(ctx, f, jobPath, src, seg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.Result = res
	s.Dirty = false
	s.mu.Unlock()

	s.Emit(EventProcessed, res)
	return res, nil
}

// run executes the pipeline: background removal, mask, then either a raster
// contour mode or the preset, plus optional SVG contours.
func (s *Session) run(ctx context.Context, f *job.File, jobPath string, src *lpimage.Source, seg *segment.Handle) (*Result, error) {
	cfg, err := f.ProcessConfig()
	if err != nil {
		return nil, err
	}

	buf := src.Buffer
	if f.RemoveBackground != job.BackgroundNone {
		if seg == nil {
			return nil, fmt.Errorf("no segmenter for %q", f.RemoveBackground)
		}
		progress := func(p int) { s.Emit(EventProgress, p) }
		if buf, err = segment.RemoveBackground(ctx, seg, buf, progress); err != nil {
			return nil, err
		}
	}

	if m := f.Mask; m != nil {
		if m.File != "" {
			mb, err := mask.LoadMask(f.MaskPath(jobPath))
			if err != nil {
				return nil, err
			}
			buf = mask.ApplyMask(buf, mb, m.Placement())
		} else {
			buf = mask.ApplyShapeMask(buf, m.Shape, m.ShapeOptions())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Config: cfg}
	c := f.Contour
	switch {
	case c != nil && c.Mode == job.ContourEdges:
		res.Image = lineWeight(trace.ExtractContours(buf, c.ThresholdFor(buf)), c.LineWeight)
	case c != nil && c.Mode == job.ContourCanny:
		res.Image = lineWeight(trace.CannyEdgeDetection(buf, c.Low, c.High), c.LineWeight)
	default:
		res.Image = preset.Run(buf, cfg)
	}

	if c != nil && c.Mode == job.ContourSVG {
		res.Paths = trace.TraceContours(buf, c.ThresholdFor(buf), c.Options())
		res.SVG = trace.PathsToSVG(res.Paths, buf.Width, buf.Height)
	}

	dpi := f.DPI
	if dpi == 0 && src.DPI > 0 {
		dpi = int(src.DPI)
	}
	res.Size = laser.PhysicalSize(res.Image.Width, res.Image.Height, dpi)
	return res, nil
}

// lineWeight thickens (w > 0) or thins (w < 0) rendered edges.
func lineWeight(b *lpimage.Buffer, w int) *lpimage.Buffer {
	switch {
	case w > 0:
		return trace.DilateContour(b, w)
	case w < 0:
		return trace.ErodeContour(b, -w)
	default:
		return b
	}
}

// SaveResult writes the latest result to the job's output paths.
func (s *Session) SaveResult() error {
	s.mu.RLock()
	res, f, jobPath := s.Result, s.Job, s.JobPath
	s.mu.RUnlock()

	if res == nil || f == nil {
		return fmt.Errorf("nothing to save")
	}

	out := f.OutputPath(jobPath)
	if err := lpimage.Save(res.Image, out); err != nil {
		return err
	}
	log.Printf("Saved %s (%s)", out, res.Size)

	if svgPath := f.SVGOutputPath(jobPath); svgPath != "" && res.SVG != "" {
		if err := os.WriteFile(svgPath, []byte(res.SVG), 0644); err != nil {
			return fmt.Errorf("failed to write svg: %w", err)
		}
		log.Printf("Saved %s (%d paths)", svgPath, len(res.Paths))
	}

	s.Emit(EventSaved, out)
	return nil
}

// Close releases background removers that were opened.
func (s *Session) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for _, h := range s.segmenters {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

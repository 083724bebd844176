package canvas

import (
	"image"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core/annotation"
	"github.com/trezcool/markmywords/core/document"
)

// Raster is a transparent RGBA drawing surface rendered with gg.
type Raster struct {
	mu     sync.Mutex
	dc     *gg.Context
	origin document.Point
}

var _ annotation.Surface = (*Raster)(nil) // interface compliance check

func NewRaster(width, height int) *Raster {
	return &Raster{dc: newContext(width, height)}
}

func newContext(width, height int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return dc
}

func (r *Raster) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Width(), r.dc.Height()
}

// Origin is where the raster's top-left corner sits in pointer coordinates.
func (r *Raster) Origin() document.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.origin
}

// SetOrigin moves the raster, eg. after the page scrolled or was resized.
func (r *Raster) SetOrigin(p document.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origin = p
}

func (r *Raster) DrawSegment(from, to document.Point, c annotation.Colour, width float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dc.SetColor(c.RGBA())
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

// Replay draws committed strokes, eg. when a task is opened again.
func (r *Raster) Replay(annotations []document.Annotation, c annotation.Colour) {
	for _, a := range annotations {
		for i := 1; i < len(a.Path); i++ {
			r.DrawSegment(a.Path[i-1], a.Path[i], c, annotation.StrokeWidth)
		}
	}
}

// Clear wipes every stroke.
func (r *Raster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc = newContext(r.dc.Width(), r.dc.Height())
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.dc.Image().(*image.RGBA)
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func (r *Raster) EncodePNG(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Wrap(r.dc.EncodePNG(w), "encoding canvas")
}

package annotation

import (
	"context"
	"sync"

	"github.com/kat-co/vala"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
)

// StrokeWidth is the width of every drawn segment.
const StrokeWidth = 2.0

type (
	// Surface is what strokes are drawn on.
	Surface interface {
		// Origin is the surface's top-left corner in pointer coordinates.
		Origin() document.Point
		DrawSegment(from, to document.Point, c Colour, width float64)
	}

	Committer interface {
		CommitAnnotation(ctx context.Context, taskID string, path []document.Point) (document.Annotation, error)
	}

	TaskSelector interface {
		SelectedTask() (string, bool)
	}
)

// Pad turns pointer gestures into annotations.
// A gesture is pointer down, any number of moves, then pointer up (or leaving the surface).
type Pad struct {
	mu        sync.Mutex
	surface   Surface
	committer Committer
	selector  TaskSelector
	colour    Colour
	drawing   bool
	path      []document.Point
}

func NewPad(committer Committer, selector TaskSelector) *Pad {
	vala.BeginValidation().Validate(
		core.IsSet(committer, "committer"),
		core.IsSet(selector, "selector"),
	).CheckAndPanic()

	return &Pad{committer: committer, selector: selector, colour: DefaultColour}
}

// Bind attaches the surface gestures are drawn on. Without one, Begin is ignored.
func (p *Pad) Bind(s Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
}

func (p *Pad) Unbind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = nil
	p.reset()
}

func (p *Pad) Colour() Colour {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colour
}

func (p *Pad) SetColour(c Colour) error {
	if !c.Valid() {
		return ErrUnknownColour
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.colour = c
	return nil
}

func (p *Pad) Drawing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawing
}

// Path returns the in-progress gesture in surface coordinates.
func (p *Pad) Path() []document.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]document.Point(nil), p.path...)
}

func (p *Pad) local(pt document.Point) document.Point {
	o := p.surface.Origin()
	return document.Point{X: pt.X - o.X, Y: pt.Y - o.Y}
}

// Begin starts a gesture at pt (pointer coordinates).
func (p *Pad) Begin(pt document.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.surface == nil {
		return
	}
	p.drawing = true
	p.path = []document.Point{p.local(pt)}
}

// Extend adds pt to the gesture and draws the segment from the previous point.
func (p *Pad) Extend(pt document.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.drawing || p.surface == nil {
		return
	}
	next := p.local(pt)
	prev := p.path[len(p.path)-1]
	p.path = append(p.path, next)
	p.surface.DrawSegment(prev, next, p.colour, StrokeWidth)
}

// End finishes the gesture. The path is committed to the selected task, if any,
// and discarded otherwise. committed reports whether an annotation was stored.
func (p *Pad) End(ctx context.Context) (ann document.Annotation, committed bool, err error) {
	p.mu.Lock()
	path := p.path
	p.reset()
	p.mu.Unlock()

	if len(path) == 0 {
		return document.Annotation{}, false, nil
	}
	taskID, ok := p.selector.SelectedTask()
	if !ok {
		return document.Annotation{}, false, nil
	}
	ann, err = p.committer.CommitAnnotation(ctx, taskID, path)
	if err != nil {
		return document.Annotation{}, false, err
	}
	return ann, true, nil
}

// Reset drops any gesture in progress.
func (p *Pad) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Pad) reset() {
	p.drawing = false
	p.path = nil
}

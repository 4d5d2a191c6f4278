package visibility

import (
	"fmt"
	"sync"
)

// Rect is an axis-aligned box in page coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

func (r Rect) intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Ratio returns the fraction of region inside view.
func Ratio(region, view Rect) float64 {
	a := region.area()
	if a == 0 {
		return 0
	}
	return float64(region.intersect(view).area()) / float64(a)
}

type viewportSub struct {
	v      *Viewport
	region Region
	fn     func(float64)
	last   float64
	seeded bool
}

func (s *viewportSub) Unsubscribe() {
	s.v.mu.Lock()
	defer s.v.mu.Unlock()
	delete(s.v.subs, s)
}

// Viewport is a geometric Observer: regions are placed in page coordinates
// and the visible window is moved by scrolling. Subscribers hear about a
// region only while it is placed, and only when its ratio changes.
type Viewport struct {
	mu      sync.Mutex
	bounds  Rect
	regions map[Region]Rect
	subs    map[*viewportSub]struct{}
}

// NewViewport returns a viewport of the given size at the page origin.
func NewViewport(w, h int) *Viewport {
	return &Viewport{
		bounds:  Rect{W: w, H: h},
		regions: make(map[Region]Rect),
		subs:    make(map[*viewportSub]struct{}),
	}
}

// Observe implements Observer. If region is already placed, fn receives
// its current ratio right away.
func (v *Viewport) Observe(region Region, fn func(ratio float64)) (Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("observe %s: nil callback", region)
	}
	sub := &viewportSub{v: v, region: region, fn: fn}

	v.mu.Lock()
	v.subs[sub] = struct{}{}
	calls := v.collect()
	v.mu.Unlock()

	run(calls)
	return sub, nil
}

// Place sets the geometry of region, attaching it to the page.
func (v *Viewport) Place(region Region, r Rect) {
	v.mu.Lock()
	v.regions[region] = r
	calls := v.collect()
	v.mu.Unlock()
	run(calls)
}

// Remove detaches region from the page. Subscribers that last saw a
// non-zero ratio are told 0, then hear nothing until it is placed again.
func (v *Viewport) Remove(region Region) {
	v.mu.Lock()
	delete(v.regions, region)
	var calls []func()
	for s := range v.subs {
		if s.region != region {
			continue
		}
		if s.seeded && s.last != 0 {
			fn := s.fn
			calls = append(calls, func() { fn(0) })
		}
		s.seeded = false
	}
	v.mu.Unlock()
	run(calls)
}

// ScrollTo moves the top-left corner of the viewport.
func (v *Viewport) ScrollTo(x, y int) {
	v.mu.Lock()
	v.bounds.X, v.bounds.Y = x, y
	calls := v.collect()
	v.mu.Unlock()
	run(calls)
}

// Resize changes the viewport size.
func (v *Viewport) Resize(w, h int) {
	v.mu.Lock()
	v.bounds.W, v.bounds.H = w, h
	calls := v.collect()
	v.mu.Unlock()
	run(calls)
}

// Bounds returns the visible window in page coordinates.
func (v *Viewport) Bounds() Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bounds
}

func (v *Viewport) collect() []func() {
	var calls []func()
	for s := range v.subs {
		r, ok := v.regions[s.region]
		if !ok {
			continue
		}
		ratio := Ratio(r, v.bounds)
		if s.seeded && ratio == s.last {
			continue
		}
		s.seeded = true
		s.last = ratio
		fn := s.fn
		calls = append(calls, func() { fn(ratio) })
	}
	return calls
}

func run(calls []func()) {
	for _, call := range calls {
		call()
	}
}

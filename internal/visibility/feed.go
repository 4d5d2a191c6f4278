package visibility

import "sync"

// Feed is an Observer driven by externally reported ratios, such as
// beacons posted by a browser's IntersectionObserver.
type Feed struct {
	mu   sync.Mutex
	subs map[Region]map[*feedSub]struct{}
}

type feedSub struct {
	f      *Feed
	region Region
	fn     func(float64)
}

func (s *feedSub) Unsubscribe() {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if set, ok := s.f.subs[s.region]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.f.subs, s.region)
		}
	}
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[Region]map[*feedSub]struct{})}
}

// Observe implements Observer.
func (f *Feed) Observe(region Region, fn func(ratio float64)) (Subscription, error) {
	s := &feedSub{f: f, region: region, fn: fn}
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[region]
	if !ok {
		set = make(map[*feedSub]struct{})
		f.subs[region] = set
	}
	set[s] = struct{}{}
	return s, nil
}

// Publish delivers ratio to every subscriber of region and returns how
// many were notified. Ratios are clamped to [0, 1].
func (f *Feed) Publish(region Region, ratio float64) int {
	ratio = min(max(ratio, 0), 1)

	f.mu.Lock()
	fns := make([]func(float64), 0, len(f.subs[region]))
	for s := range f.subs[region] {
		fns = append(fns, s.fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ratio)
	}
	return len(fns)
}

// Subscribers reports how many live subscriptions region has.
func (f *Feed) Subscribers(region Region) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[region])
}

package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/visibility"
)

const sessionCookie = "folio_session"

// Page sections reported by the browser, with the fraction of each that
// has to be on screen before it counts as seen.
var sectionThresholds = map[visibility.Region]float64{
	"home":     0.2,
	"projects": 0.1,
	"contact":  0.1,
}

// visitorSession is the server-side state of one browser tab: its contact
// form and one visibility detector per section.
type visitorSession struct {
	id       string
	form     *contact.Controller
	feed     *visibility.Feed
	sections map[visibility.Region]*visibility.Detector
	lastSeen time.Time
}

func (s *visitorSession) close() {
	s.form.Close()
	for _, d := range s.sections {
		d.Close()
	}
}

// visible reports the per-section visibility, for rendering entrance
// animations without waiting for the next beacon.
func (s *visitorSession) visible() map[string]bool {
	out := make(map[string]bool, len(s.sections))
	for region, d := range s.sections {
		out[string(region)] = d.Visible()
	}
	return out
}

// sessionStore holds at most limit sessions. Reading pages never creates
// one; only form edits, submissions and beacons do.
type sessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*visitorSession
	submitter contact.Submitter
	ttl       time.Duration
	limit     int
	now       func() time.Time
}

func newSessionStore(submitter contact.Submitter, ttl time.Duration, limit int) *sessionStore {
	return &sessionStore{
		sessions:  make(map[string]*visitorSession),
		submitter: submitter,
		ttl:       ttl,
		limit:     max(limit, 1),
		now:       time.Now,
	}
}

// peek returns the caller's session, or nil if it has none.
func (st *sessionStore) peek(c *gin.Context) *visitorSession {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = st.now()
	return s
}

// get returns the caller's session, creating one and setting the cookie
// when needed. At the limit the least recently seen session is evicted.
func (st *sessionStore) get(c *gin.Context) *visitorSession {
	id, _ := c.Cookie(sessionCookie)

	st.mu.Lock()
	if s, ok := st.sessions[id]; ok {
		s.lastSeen = st.now()
		st.mu.Unlock()
		return s
	}

	var evicted *visitorSession
	if len(st.sessions) >= st.limit {
		for _, s := range st.sessions {
			if evicted == nil || s.lastSeen.Before(evicted.lastSeen) {
				evicted = s
			}
		}
		delete(st.sessions, evicted.id)
	}
	s := st.create(uuid.NewString())
	st.sessions[s.id] = s
	st.mu.Unlock()

	if evicted != nil {
		evicted.close()
	}
	c.SetCookie(sessionCookie, s.id, int(st.ttl.Seconds()), "/", "", false, true)
	return s
}

func (st *sessionStore) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *sessionStore) create(id string) *visitorSession {
	s := &visitorSession{
		id:       id,
		form:     contact.NewController(st.submitter),
		feed:     visibility.NewFeed(),
		sections: make(map[visibility.Region]*visibility.Detector, len(sectionThresholds)),
		lastSeen: st.now(),
	}
	for region, threshold := range sectionThresholds {
		seen := false
		section := string(region)
		d, err := visibility.NewDetector(s.feed, threshold, visibility.OnChange(func(visible bool) {
			if visible && !seen {
				seen = true
				recordSectionView(section, id)
			}
		}))
		if err != nil {
			log.Printf("Error creating detector for %s: %v", section, err)
			continue
		}
		if err := d.Attach(region); err != nil {
			log.Printf("Error attaching detector for %s: %v", section, err)
			continue
		}
		s.sections[region] = d
	}
	return s
}

// sweep disposes sessions idle for longer than the ttl.
func (st *sessionStore) sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*visitorSession
	for id, s := range st.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	return len(expired)
}

func (st *sessionStore) runJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				log.Printf("Expired %d idle sessions", n)
			}
		}
	}
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*visitorSession)
	st.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// Package termui renders the portfolio in a terminal. The screen is the
// viewport: sections are laid out on a tall page and scrolled into view.
package termui

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/typing"
	"github.com/Zachkp/folio/internal/visibility"
)

const (
	regionHero     visibility.Region = "home"
	regionProjects visibility.Region = "projects"
	regionContact  visibility.Region = "contact"
)

// Options tune the hero animation. Zero values give the site defaults.
type Options struct {
	TitleSpeed, TitleDelay       time.Duration
	SubtitleSpeed, SubtitleDelay time.Duration
	Clock                        typing.Clock
}

func (o Options) withDefaults() Options {
	if o.TitleSpeed == 0 && o.TitleDelay == 0 && o.SubtitleSpeed == 0 && o.SubtitleDelay == 0 {
		o.TitleSpeed, o.TitleDelay = 80*time.Millisecond, 500*time.Millisecond
		o.SubtitleSpeed, o.SubtitleDelay = 30*time.Millisecond, time.Second
	}
	if o.Clock == nil {
		o.Clock = typing.RealClock
	}
	return o
}

type section struct {
	region    visibility.Region
	threshold float64
	rect      visibility.Rect
	detector  *visibility.Detector
	draw      func(a *App, top int)
}

// App is one terminal session of the portfolio.
type App struct {
	screen   tcell.Screen
	viewport *visibility.Viewport
	sections []*section

	title    *typing.Animator
	subtitle *typing.Animator
	hero     *typing.Sequence

	projects []portfolio.Project
	form     *contact.Controller
	focus    int // index into contact.Fields, -1 when not editing
	notice   string

	scroll int
	ctx    context.Context

	results   chan submitResult
	done      chan struct{}
	closeOnce sync.Once
}

// New builds the app on an initialised screen.
func New(screen tcell.Screen, projects []portfolio.Project, submitter contact.Submitter, opts Options) (*App, error) {
	opts = opts.withDefaults()
	w, h := screen.Size()

	a := &App{
		screen:   screen,
		viewport: visibility.NewViewport(w, h),
		projects: portfolio.Showcase(projects),
		focus:    -1,
		ctx:      context.Background(),
		results:  make(chan submitResult, 1),
		done:     make(chan struct{}),
	}

	redraw := func(typing.State) { a.requestRedraw() }
	a.title = typing.New(portfolio.HeroTitle, opts.TitleSpeed, opts.TitleDelay,
		typing.WithClock(opts.Clock), typing.OnChange(redraw))
	a.subtitle = typing.New(portfolio.HeroSubtitle, opts.SubtitleSpeed, opts.SubtitleDelay,
		typing.WithClock(opts.Clock), typing.OnChange(redraw))
	a.hero = typing.NewSequence(a.title, a.subtitle)

	a.form = contact.NewController(submitter, contact.OnChange(func(contact.FormState) { a.requestRedraw() }))

	a.sections = []*section{
		{region: regionHero, threshold: 0.2, draw: (*App).drawHero},
		{region: regionProjects, threshold: 0.1, draw: (*App).drawProjects},
		{region: regionContact, threshold: 0.1, draw: (*App).drawContact},
	}
	for _, s := range a.sections {
		d, err := visibility.NewDetector(a.viewport, s.threshold,
			visibility.OnChange(func(bool) { a.requestRedraw() }))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("section %s: %w", s.region, err)
		}
		s.detector = d
	}

	a.layout()
	for _, s := range a.sections {
		if err := s.detector.Attach(s.region); err != nil {
			a.Close()
			return nil, fmt.Errorf("section %s: %w", s.region, err)
		}
	}
	return a, nil
}

// Start begins the hero animation.
func (a *App) Start() {
	a.hero.Start()
}

// Close releases every timer and subscription the app holds.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.hero.Cancel()
		a.form.Close()
		for _, s := range a.sections {
			if s.detector != nil {
				s.detector.Close()
			}
		}
	})
}

// Run drives the event loop until ctx ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	defer a.Close()

	events := make(chan tcell.Event, 64)
	go a.pump(events)

	a.Start()
	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-a.results:
			a.applySubmitResult(res)
			a.Draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.HandleEvent(ev) {
				return nil
			}
			a.Draw()
		}
	}
}

// pump forwards screen events until the screen is finalised or the app
// is closed. events is closed only in the first case.
func (a *App) pump(events chan<- tcell.Event) {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-a.done:
			return
		}
	}
}

func (a *App) requestRedraw() {
	// a full queue already holds a pending redraw
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// layout stacks the sections on the page and places them on the viewport.
func (a *App) layout() {
	w, h := a.screen.Size()
	heights := map[visibility.Region]int{
		regionHero:     max(h, 8),
		regionProjects: 3 + 5*len(a.projects),
		regionContact:  16,
	}
	y := 0
	for _, s := range a.sections {
		s.rect = visibility.Rect{X: 0, Y: y, W: w, H: heights[s.region]}
		a.viewport.Place(s.region, s.rect)
		y += s.rect.H
	}
	a.viewport.Resize(w, h)
	a.scrollTo(a.scroll)
}

func (a *App) pageHeight() int {
	last := a.sections[len(a.sections)-1].rect
	return last.Y + last.H
}

func (a *App) scrollTo(y int) {
	_, h := a.screen.Size()
	y = min(y, a.pageHeight()-h)
	y = max(y, 0)
	a.scroll = y
	a.viewport.ScrollTo(0, y)
}

func (a *App) section(r visibility.Region) *section {
	for _, s := range a.sections {
		if s.region == r {
			return s
		}
	}
	return nil
}

// HandleEvent applies one terminal event and reports whether the app
// should keep running.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.layout()
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	_, h := a.screen.Size()

	// some terminals report Ctrl+letter as a modified rune
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 {
		switch unicode.ToLower(ev.Rune()) {
		case 'c':
			return false
		case 'r':
			a.resetForm()
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if a.focus < 0 {
			return false
		}
		a.focus = -1
	case tcell.KeyUp:
		a.scrollTo(a.scroll - 1)
	case tcell.KeyDown:
		a.scrollTo(a.scroll + 1)
	case tcell.KeyPgUp:
		a.scrollTo(a.scroll - h)
	case tcell.KeyPgDn:
		a.scrollTo(a.scroll + h)
	case tcell.KeyHome:
		a.scrollTo(0)
	case tcell.KeyEnd:
		a.scrollTo(a.pageHeight())
	case tcell.KeyTab:
		a.focusField(1)
	case tcell.KeyBacktab:
		a.focusField(-1)
	case tcell.KeyEnter:
		if a.focus >= 0 {
			a.submit()
		}
	case tcell.KeyCtrlR:
		a.resetForm()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.focus >= 0 {
			f := contact.Fields[a.focus]
			v := []rune(a.form.State().Values.Get(f))
			if len(v) > 0 {
				_ = a.form.SetField(f, string(v[:len(v)-1]))
			}
		}
	case tcell.KeyRune:
		if a.focus >= 0 {
			f := contact.Fields[a.focus]
			_ = a.form.SetField(f, a.form.State().Values.Get(f)+string(ev.Rune()))
		}
	}
	return true
}

func (a *App) resetForm() {
	if err := a.form.Reset(); err == nil {
		a.notice = ""
	}
}

func (a *App) focusField(step int) {
	n := len(contact.Fields)
	if a.focus < 0 {
		a.focus = 0
		if step < 0 {
			a.focus = n - 1
		}
	} else {
		a.focus = (a.focus + step + n) % n
	}
	if s := a.section(regionContact); s != nil {
		a.scrollTo(s.rect.Y)
	}
}

type submitResult struct {
	outcome contact.Outcome
	err     error
}

// submit sends the form off the event loop. The result is handed back on
// a.results so that only the loop touches App fields.
func (a *App) submit() {
	a.notice = ""
	ctx := a.ctx
	go func() {
		out, err := a.form.Submit(ctx)
		select {
		case a.results <- submitResult{outcome: out, err: err}:
		case <-a.done:
		}
	}()
}

func (a *App) applySubmitResult(res submitResult) {
	switch res.outcome {
	case contact.OutcomeFailed:
		log.Printf("Contact submission failed: %v", res.err)
		a.notice = portfolio.ContactFailure
	case contact.OutcomeSent:
		a.focus = -1
	}
}

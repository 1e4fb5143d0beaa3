// Package carousel implements the slide carousel controller: a wraparound
// slide index driven by an auto-advance timer, directional buttons,
// indicator dots, hover pause and hover-scoped arrow keys.
//
// The controller is not safe for concurrent use. Every method must run on
// the same goroutine (see Loop), which mirrors the run-to-completion model
// of a browser UI thread and keeps the index free of locking.
package carousel

import "time"

// DefaultInterval is the auto-advance period.
const DefaultInterval = 5 * time.Second

// Key names understood by KeyDown.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Markup describes the carousel elements found in a page.
type Markup struct {
	Slides     []string
	Indicators []string
	PrevButton bool
	NextButton bool
}

// Document is the query layer the controller reads once at construction.
// ok is false when the page has no carousel root.
type Document interface {
	Carousel() (m Markup, ok bool)
}

// Renderer toggles the active state of slide and indicator elements.
type Renderer interface {
	SetSlideActive(index int, active bool)
	SetIndicatorActive(index int, active bool)
}

// Handle identifies a scheduled repeating timer. The zero Handle is never
// issued.
type Handle uint64

// Timers schedules repeating callbacks. Callbacks must be delivered on the
// controller's goroutine, and Cancel must take effect before the next tick.
type Timers interface {
	ScheduleRepeating(interval time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithObserver registers fn to be called with the new index after every
// SetActive.
func WithObserver(fn func(index int)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller owns the current slide index and the auto-play timer.
type Controller struct {
	slides     int
	indicators int
	hasPrev    bool
	hasNext    bool

	current int
	// paused is true while the pointer is over the carousel. The keyboard
	// guard reads the same flag.
	paused bool
	timer  Handle

	interval  time.Duration
	render    Renderer
	timers    Timers
	observers []func(int)
}

// New wires a controller to the carousel in doc and starts auto-play. It
// returns nil when the page has no carousel or the carousel has no slides;
// a nil *Controller ignores every event passed to Handle.
func New(doc Document, r Renderer, t Timers, opts ...Option) *Controller {
	m, ok := doc.Carousel()
	if !ok || len(m.Slides) == 0 {
		return nil
	}
	c := &Controller{
		slides:     len(m.Slides),
		indicators: len(m.Indicators),
		hasPrev:    m.PrevButton,
		hasNext:    m.NextButton,
		interval:   DefaultInterval,
		render:     r,
		timers:     t,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetActive(0)
	c.Start()
	return c
}

// Len returns the number of slides.
func (c *Controller) Len() int { return c.slides }

// Current returns the active slide index.
func (c *Controller) Current() int { return c.current }

// Paused reports whether the pointer is over the carousel.
func (c *Controller) Paused() bool { return c.paused }

// Running reports whether an auto-advance timer is scheduled.
func (c *Controller) Running() bool { return c.timer != 0 }

// Interval returns the auto-advance period.
func (c *Controller) Interval() time.Duration { return c.interval }

// Wrap maps any integer onto [0, n). n must be positive.
func Wrap(k, n int) int {
	return ((k % n) + n) % n
}

// SetActive makes slide k (wrapped) the only active slide and indicator.
func (c *Controller) SetActive(k int) {
	c.current = Wrap(k, c.slides)
	for i := 0; i < c.slides; i++ {
		c.render.SetSlideActive(i, i == c.current)
	}
	for i := 0; i < c.indicators; i++ {
		c.render.SetIndicatorActive(i, i == c.current)
	}
	for _, fn := range c.observers {
		fn(c.current)
	}
}

// Next advances one slide, wrapping from the last to the first.
func (c *Controller) Next() { c.SetActive(c.current + 1) }

// Previous goes back one slide, wrapping from the first to the last.
func (c *Controller) Previous() { c.SetActive(c.current - 1) }

// Start schedules auto-advance unless a timer is already pending.
func (c *Controller) Start() {
	if c.timer != 0 {
		return
	}
	c.timer = c.timers.ScheduleRepeating(c.interval, c.Next)
}

// Stop cancels auto-advance. It is a no-op when nothing is scheduled.
func (c *Controller) Stop() {
	if c.timer == 0 {
		return
	}
	c.timers.Cancel(c.timer)
	c.timer = 0
}

// restart gives manual navigation a full period before the next
// auto-advance.
func (c *Controller) restart() {
	c.Stop()
	if !c.paused {
		c.Start()
	}
}

// ClickPrev handles the previous button. Ignored when the page has none.
func (c *Controller) ClickPrev() {
	if !c.hasPrev {
		return
	}
	c.Previous()
	c.restart()
}

// ClickNext handles the next button. Ignored when the page has none.
func (c *Controller) ClickNext() {
	if !c.hasNext {
		return
	}
	c.Next()
	c.restart()
}

// ClickIndicator selects slide i directly.
func (c *Controller) ClickIndicator(i int) {
	c.SetActive(i)
	c.restart()
}

// PointerEnter pauses auto-play while the pointer hovers the carousel.
func (c *Controller) PointerEnter() {
	c.paused = true
	c.Stop()
}

// PointerLeave resumes auto-play.
func (c *Controller) PointerLeave() {
	c.paused = false
	c.Start()
}

// KeyDown handles a document-wide key press. Arrow keys navigate only while
// the pointer is over the carousel, so keyboard-only users cannot reach
// them; other keys are ignored.
func (c *Controller) KeyDown(key string) {
	if !c.paused {
		return
	}
	switch key {
	case KeyArrowLeft:
		c.Previous()
		c.restart()
	case KeyArrowRight:
		c.Next()
		c.restart()
	}
}

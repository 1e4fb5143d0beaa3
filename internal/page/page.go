// Package page holds the small pieces of page behaviour around the
// carousel: navigation scroll state, card parallax, staggered reveals,
// the mobile menu and dropdown, smooth-scroll targets and the resize
// debounce.
package page

import "time"

const (
	// MobileBreakpoint is the widest viewport treated as mobile.
	MobileBreakpoint = 768
	// NavScrollThreshold is the scroll offset past which the nav bar is
	// marked scrolled.
	NavScrollThreshold = 50
	// ParallaxFactor scales a card's distance into the viewport.
	ParallaxFactor = 0.05
	// StaggerStep is the transition delay added per card.
	StaggerStep = 100 * time.Millisecond
	// ResizeDebounce is the quiet period before resize handling runs.
	ResizeDebounce = 250 * time.Millisecond

	// RevealThreshold is the visible fraction that reveals a fade element.
	RevealThreshold = 0.15
	// RevealRootMargin shrinks the viewport bottom edge for reveal checks.
	RevealRootMargin = "0px 0px -50px 0px"
)

// IsMobile reports whether width is at or below the mobile breakpoint.
func IsMobile(width int) bool { return width <= MobileBreakpoint }

// NavScrolled reports whether the nav bar should carry the scrolled state.
func NavScrolled(scrollY float64) bool { return scrollY > NavScrollThreshold }

// Viewport is the window geometry at the time of a scroll event.
type Viewport struct {
	Width   int
	Height  float64
	ScrollY float64
}

// Rect is an element's bounding box relative to the viewport.
type Rect struct {
	Top    float64
	Bottom float64
}

// ParallaxOffset returns the vertical translation for a card. ok is false
// on mobile viewports and for cards outside the viewport, in which case the
// card's transform should be left alone.
func ParallaxOffset(card Rect, vp Viewport) (offset float64, ok bool) {
	if IsMobile(vp.Width) {
		return 0, false
	}
	if card.Top >= vp.Height || card.Bottom <= 0 {
		return 0, false
	}
	cardTop := card.Top + vp.ScrollY
	return (vp.ScrollY - cardTop + vp.Height) * ParallaxFactor, true
}

// StaggerDelay is the transition delay for the card at index.
func StaggerDelay(index int) time.Duration {
	return time.Duration(index) * StaggerStep
}

// ScrollTarget is where an in-page anchor scrolls to so the target clears
// the fixed nav bar.
func ScrollTarget(targetTop, navHeight float64) float64 {
	return targetTop - navHeight
}

// ResetTransforms reports whether a resize to width should clear card
// parallax transforms.
func ResetTransforms(width int) bool { return IsMobile(width) }

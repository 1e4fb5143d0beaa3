package page

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Settings are the page tuning values published to the browser scripts so
// they share one source with the server.
type Settings struct {
	MobileBreakpoint   int     `json:"mobileBreakpoint"`
	NavScrollThreshold int     `json:"navScrollThreshold"`
	ParallaxFactor     float64 `json:"parallaxFactor"`
	StaggerStepMS      int64   `json:"staggerStepMs"`
	ResizeDebounceMS   int64   `json:"resizeDebounceMs"`
	RevealThreshold    float64 `json:"revealThreshold"`
	RevealRootMargin   string  `json:"revealRootMargin"`
	CarouselIntervalMS int64   `json:"carouselIntervalMs"`
}

// DefaultSettings returns the package constants with the given carousel
// auto-advance period.
func DefaultSettings(carouselInterval time.Duration) Settings {
	return Settings{
		MobileBreakpoint:   MobileBreakpoint,
		NavScrollThreshold: NavScrollThreshold,
		ParallaxFactor:     ParallaxFactor,
		StaggerStepMS:      StaggerStep.Milliseconds(),
		ResizeDebounceMS:   ResizeDebounce.Milliseconds(),
		RevealThreshold:    RevealThreshold,
		RevealRootMargin:   RevealRootMargin,
		CarouselIntervalMS: carouselInterval.Milliseconds(),
	}
}

// RegisterRoutes mounts GET /api/page-config.
func RegisterRoutes(r chi.Router, s Settings) {
	body, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	r.Get("/api/page-config", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Write(body)
	})
}

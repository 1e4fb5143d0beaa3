package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nermi/website/internal/carousel"
)

var (
	previewSlides   int
	previewInterval time.Duration
)

var carouselCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Preview the homepage carousel in the terminal",
	Long: `Runs the slide carousel against a terminal renderer. Type commands on
stdin to drive it:

  next, prev      click the next/previous button
  dot N           click indicator N (1-based)
  enter, leave    move the pointer onto/off the carousel
  left, right     press an arrow key (only acts while the pointer is over it)
  quit            exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := previewInterval
		if interval == 0 {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			interval = cfg.CarouselInterval()
		}
		if previewSlides < 1 {
			return fmt.Errorf("--slides must be at least 1")
		}
		return runPreview(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), previewSlides, interval)
	},
}

// termDocument is a page whose carousel has n slides, n indicators and both
// buttons.
type termDocument struct{ n int }

func (d termDocument) Carousel() (carousel.Markup, bool) {
	m := carousel.Markup{PrevButton: true, NextButton: true}
	for i := 0; i < d.n; i++ {
		m.Slides = append(m.Slides, fmt.Sprintf("slide-%d", i+1))
		m.Indicators = append(m.Indicators, fmt.Sprintf("dot-%d", i+1))
	}
	return m, true
}

// termRenderer records the active flags and draws the indicator strip.
type termRenderer struct {
	slides []bool
	dots   []bool
}

func newTermRenderer(n int) *termRenderer {
	return &termRenderer{slides: make([]bool, n), dots: make([]bool, n)}
}

func (r *termRenderer) SetSlideActive(i int, active bool)     { r.slides[i] = active }
func (r *termRenderer) SetIndicatorActive(i int, active bool) { r.dots[i] = active }

func (r *termRenderer) strip() string {
	var b strings.Builder
	for i, on := range r.dots {
		if i > 0 {
			b.WriteByte(' ')
		}
		if on {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}

// runPreview drives a carousel from the commands read from in until quit or
// EOF. Quitting is posted to the loop so earlier commands are applied first.
func runPreview(ctx context.Context, in io.Reader, out, errOut io.Writer, n int, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := carousel.NewLoop(16)
	timers := carousel.NewClockTimers(loop)
	render := newTermRenderer(n)

	var c *carousel.Controller
	c = carousel.New(termDocument{n: n}, render, timers,
		carousel.WithInterval(interval),
		carousel.WithObserver(func(i int) {
			state := "auto"
			if c != nil && c.Paused() {
				state = "paused"
			}
			fmt.Fprintf(out, "[%s]  slide %d/%d  %s\n", render.strip(), i+1, n, state)
		}),
	)

	go func() {
		defer loop.Post(cancel)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ev, quit, err := parsePreviewCommand(sc.Text())
			if quit {
				return
			}
			if err != nil {
				fmt.Fprintln(errOut, err)
				continue
			}
			if ev.Kind == 0 {
				continue
			}
			if !loop.Dispatch(c, ev) {
				return
			}
		}
	}()

	err := loop.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// parsePreviewCommand maps one stdin line to a carousel event. Blank lines
// yield a zero Event.
func parsePreviewCommand(line string) (ev carousel.Event, quit bool, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return carousel.Event{}, false, nil
	}
	switch fields[0] {
	case "next", "n":
		ev.Kind = carousel.NextClick
	case "prev", "p":
		ev.Kind = carousel.PrevClick
	case "enter":
		ev.Kind = carousel.PointerEnter
	case "leave":
		ev.Kind = carousel.PointerLeave
	case "left":
		ev = carousel.Event{Kind: carousel.KeyDown, Key: carousel.KeyArrowLeft}
	case "right":
		ev = carousel.Event{Kind: carousel.KeyDown, Key: carousel.KeyArrowRight}
	case "dot":
		if len(fields) != 2 {
			return ev, false, fmt.Errorf("usage: dot N")
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil || n < 1 {
			return ev, false, fmt.Errorf("dot: %q is not a slide number", fields[1])
		}
		ev = carousel.Event{Kind: carousel.IndicatorClick, Index: n - 1}
	case "quit", "q", "exit":
		return ev, true, nil
	default:
		return ev, false, fmt.Errorf("unknown command %q", fields[0])
	}
	return ev, false, nil
}

func init() {
	carouselCmd.Flags().IntVar(&previewSlides, "slides", 5, "number of slides")
	carouselCmd.Flags().DurationVar(&previewInterval, "interval", 0, "auto-play interval (defaults to carousel.interval_ms)")
	rootCmd.AddCommand(carouselCmd)
}

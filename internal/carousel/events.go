package carousel

import "fmt"

// EventKind identifies an input source.
type EventKind int

const (
	PrevClick EventKind = iota + 1
	NextClick
	IndicatorClick
	KeyDown
	PointerEnter
	PointerLeave
)

func (k EventKind) String() string {
	switch k {
	case PrevClick:
		return "prev_click"
	case NextClick:
		return "next_click"
	case IndicatorClick:
		return "indicator_click"
	case KeyDown:
		return "key_down"
	case PointerEnter:
		return "pointer_enter"
	case PointerLeave:
		return "pointer_leave"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one user input. Index is set for IndicatorClick and Key for
// KeyDown.
type Event struct {
	Kind  EventKind
	Index int
	Key   string
}

// Handle routes ev to the matching handler. Unknown kinds are ignored.
func (c *Controller) Handle(ev Event) {
	if c == nil {
		return
	}
	switch ev.Kind {
	case PrevClick:
		c.ClickPrev()
	case NextClick:
		c.ClickNext()
	case IndicatorClick:
		c.ClickIndicator(ev.Index)
	case KeyDown:
		c.KeyDown(ev.Key)
	case PointerEnter:
		c.PointerEnter()
	case PointerLeave:
		c.PointerLeave()
	}
}

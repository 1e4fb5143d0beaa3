package page

// BarStyle is the inline style of one hamburger bar.
type BarStyle struct {
	Transform string
	Opacity   string
}

var (
	openBars = [3]BarStyle{
		{Transform: "rotate(45deg) translateY(8px)"},
		{Opacity: "0"},
		{Transform: "rotate(-45deg) translateY(-8px)"},
	}
	closedBars = [3]BarStyle{
		{Transform: "none"},
		{Opacity: "1"},
		{Transform: "none"},
	}
)

// Menu is the mobile navigation menu behind the hamburger toggle.
type Menu struct {
	open bool
}

// Open reports whether the menu is shown.
func (m *Menu) Open() bool { return m.open }

// Toggle flips the menu.
func (m *Menu) Toggle() { m.open = !m.open }

// Close hides the menu; following any menu link does this.
func (m *Menu) Close() { m.open = false }

// Bars returns the three hamburger bar styles: an X while open.
func (m *Menu) Bars() [3]BarStyle {
	if m.open {
		return openBars
	}
	return closedBars
}

// Dropdown is the navigation dropdown. It only reacts on mobile viewports;
// on wider screens it opens on hover through CSS.
type Dropdown struct {
	mobile bool
	active bool
	menu   *Menu
}

// NewDropdown binds a dropdown for a viewport of the given width. Clicking
// one of its links also closes menu, which may be nil.
func NewDropdown(width int, menu *Menu) *Dropdown {
	return &Dropdown{mobile: IsMobile(width), menu: menu}
}

// Active reports whether the dropdown is expanded.
func (d *Dropdown) Active() bool { return d.active }

// ClickToggle handles a click on the dropdown toggle.
func (d *Dropdown) ClickToggle() {
	if d.mobile {
		d.active = !d.active
	}
}

// ClickOutside handles a document click outside the dropdown.
func (d *Dropdown) ClickOutside() {
	if d.mobile {
		d.active = false
	}
}

// ClickLink handles a click on a link inside the dropdown.
func (d *Dropdown) ClickLink() {
	if !d.mobile {
		return
	}
	d.active = false
	if d.menu != nil {
		d.menu.Close()
	}
}

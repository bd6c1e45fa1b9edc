// Package loading attaches a masking overlay to a rendered region while
// data is being fetched.
package loading

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Mask identifiers.
const (
	TestID = "loading"
	Class  = "loading-mask"
)

// BorderInset is subtracted from the host size so the mask sits inside
// the host's border.
const BorderInset = 2

// Mask is the overlay element. A zero-size mask is valid and draws nothing.
type Mask struct {
	TestID string
	Class  string
	Width  int
	Height int
}

// Host is an element that can carry a mask as its first child.
type Host interface {
	Size() (width, height int)
	Mask() *Mask
	SetMask(m *Mask)
}

// Controller toggles a host's mask from a loading signal.
type Controller struct {
	logger *slog.Logger
}

// NewController returns a controller logging through logger, or the
// default logger if nil.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{logger: logger}
}

// Apply attaches a mask sized to the host when on is true and removes it
// otherwise. Applying true to a host that already has a mask is a no-op.
func (c *Controller) Apply(h Host, on bool) {
	if !on {
		c.Detach(h)
		return
	}

	if h.Mask() != nil {
		return
	}

	w, hgt := h.Size()
	m := &Mask{
		TestID: TestID,
		Class:  Class,
		Width:  max(w-BorderInset, 0),
		Height: max(hgt-BorderInset, 0),
	}
	h.SetMask(m)

	c.logger.Debug("loading mask attached", slog.Int("width", m.Width), slog.Int("height", m.Height))
}

// Detach removes the host's mask if present.
func (c *Controller) Detach(h Host) {
	if h.Mask() == nil {
		return
	}

	h.SetMask(nil)
	c.logger.Debug("loading mask detached")
}

// Region is a rendered terminal block acting as a Host.
type Region struct {
	mask    *Mask
	Content string
}

// NewRegion wraps rendered content.
func NewRegion(content string) *Region {
	return &Region{Content: content}
}

// Size returns the rendered width and height of the content.
func (r *Region) Size() (width, height int) {
	if r.Content == "" {
		return 0, 0
	}

	return lipgloss.Width(r.Content), lipgloss.Height(r.Content)
}

// Mask returns the attached mask, or nil.
func (r *Region) Mask() *Mask { return r.mask }

// SetMask replaces the attached mask.
func (r *Region) SetMask(m *Mask) { r.mask = m }

// Render returns the content with the mask, if any, drawn over it.
func (r *Region) Render(maskContent string) string {
	return Composite(r.Content, r.mask, maskContent)
}

// Composite draws m over base at the border inset, with content centered
// inside the mask. Cells outside the mask are preserved.
func Composite(base string, m *Mask, content string) string {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return base
	}

	offset := BorderInset / 2
	box := strings.Split(lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content), "\n")
	lines := strings.Split(base, "\n")

	for i := 0; i < m.Height && i < len(box); i++ {
		row := offset + i
		if row >= len(lines) {
			break
		}

		target := lines[row]
		if w := ansi.StringWidth(target); w < offset+m.Width {
			target += strings.Repeat(" ", offset+m.Width-w)
		}

		cell := ansi.Truncate(box[i], m.Width, "")
		if w := ansi.StringWidth(cell); w < m.Width {
			cell += strings.Repeat(" ", m.Width-w)
		}

		lines[row] = ansi.Truncate(target, offset, "") + cell + ansi.TruncateLeft(target, offset+m.Width, "")
	}

	return strings.Join(lines, "\n")
}

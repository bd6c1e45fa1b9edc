package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/AntoineGS/tidyfiles/internal/page"
	filetable "github.com/AntoineGS/tidyfiles/internal/table"
)

// segment is the horizontal extent of a clickable control.
type segment struct {
	focus Focus
	start int
	end   int
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	controls, _ := m.renderControls()
	b.WriteString(controls)
	b.WriteString("\n\n")
	b.WriteString(m.renderTableRegion())

	if msg := m.state.ErrorMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(msg))
		b.WriteString(controlsGap)
		b.WriteString(MutedTextStyle.Render(RetryHint))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Download failed: " + m.err.Error()))
	}

	if m.alert != nil {
		body := AlertTitleStyle.Render(m.alert.Title) + "\n" + strings.TrimRight(m.alert.Message, "\n")
		b.WriteString("\n")
		b.WriteString(AlertStyle.Render(body))
		b.WriteString("\n")
		b.WriteString(alertHelp())
	} else {
		b.WriteString("\n")
		b.WriteString(tableHelp())
	}

	return b.String()
}

func checkboxGlyph(c filetable.Checkbox) string {
	switch {
	case c.Checked:
		return CheckboxChecked
	case c.Indeterminate:
		return CheckboxIndeterminate
	case c.Disabled:
		return CheckboxDisabled
	}

	return CheckboxUnchecked
}

func (m Model) controlStyle(f Focus, disabled bool, base lipgloss.Style) lipgloss.Style {
	if m.focus == f && m.alert == nil {
		return AccessibleFocusStyle
	}

	if disabled {
		return DisabledButtonStyle
	}

	return base
}

// renderControls renders the controls bar and the extents of its controls.
func (m Model) renderControls() (string, []segment) {
	c := m.state.Controls()

	var parts []string
	var segs []segment
	x := 0

	add := func(s string, f Focus, clickable bool) {
		if len(parts) > 0 {
			x += lipgloss.Width(controlsGap)
		}

		w := lipgloss.Width(s)
		if clickable {
			segs = append(segs, segment{focus: f, start: x, end: x + w})
		}

		parts = append(parts, s)
		x += w
	}

	if c.SelectAll != nil {
		base := UncheckedStyle
		if c.SelectAll.Checked || c.SelectAll.Indeterminate {
			base = CheckedStyle
		}

		label := checkboxGlyph(*c.SelectAll) + " " + SelectAllLabel
		add(m.controlStyle(FocusSelectAll, c.SelectAll.Disabled, base).Render(label), FocusSelectAll, true)
	}

	button := "[ " + c.Download.Label + " ]"
	add(m.controlStyle(FocusDownload, c.Download.Disabled, ButtonStyle).Render(button), FocusDownload, true)

	summary := fmt.Sprintf("%d selected · %d total", c.Selected, c.TotalRows)
	add(MutedTextStyle.Render(summary), FocusDownload, false)

	return strings.Join(parts, controlsGap), segs
}

// controlAt returns the control at column x of the controls bar.
func (m Model) controlAt(x int) (Focus, bool) {
	_, segs := m.renderControls()
	for _, s := range segs {
		if x >= s.start && x < s.end {
			return s.focus, true
		}
	}

	return 0, false
}

// bodyTop is the screen line of the first body row.
func (m Model) bodyTop() int {
	top := tableTop + 1
	if v, err := m.state.Table(); err == nil && len(v.Header) > 0 {
		top += 2
	}

	return top
}

// rowAt returns the data row rendered at screen line y.
func (m Model) rowAt(y int) (int, bool) {
	v, err := m.state.Table()
	if err != nil || v.Loading || v.NoData {
		return 0, false
	}

	row := y - m.bodyTop()
	if row < 0 || row >= len(v.Rows) {
		return 0, false
	}

	return row, true
}

func fit(text string, width int) string {
	if width <= 0 {
		return text
	}

	return ansi.Truncate(text, width, "…")
}

// renderTableRegion renders the table and keeps its loading mask in sync
// with the loading signal.
func (m Model) renderTableRegion() string {
	v, err := m.state.Table()
	if err != nil {
		m.overlay.Detach(m.region)
		return ErrorStyle.Render(err.Error())
	}

	m.region.Content = m.renderTable(v)
	m.overlay.Apply(m.region, v.Loading)

	return m.region.Render(m.spinner.View() + " " + LoadingText)
}

func (m Model) renderTable(v filetable.View[string]) string {
	headers := make([]string, 0, len(v.Header))
	for _, h := range v.Header {
		headers = append(headers, fit(h.Label, h.Width))
	}

	cols := max(len(headers), 1)

	var rows [][]string

	switch {
	case v.Loading:
		for range loadingRows {
			rows = append(rows, make([]string, cols))
		}

	case v.NoData:
		row := make([]string, cols)
		idx := 0
		if v.Selectable && cols > 1 {
			idx = 1
		}
		row[idx] = filetable.NoDataText
		rows = append(rows, row)

	default:
		for _, rv := range v.Rows {
			row := make([]string, 0, len(rv.Cells)+1)
			if rv.Checkbox != nil {
				row = append(row, checkboxGlyph(*rv.Checkbox))
			}

			for _, cell := range rv.Cells {
				text := cell.Text
				if cell.Success {
					text = SuccessCircle + " " + text
				}
				row = append(row, fit(text, cell.Width))
			}

			rows = append(rows, row)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(primaryColor)).
		BorderHeader(true).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderCellStyle
			}

			if v.Loading || row < 0 || row >= len(v.Rows) {
				if v.NoData {
					return NoDataStyle
				}
				return CellStyle
			}

			rv := v.Rows[row]
			if m.focus == FocusRows && row == m.cursor && m.alert == nil {
				return CursorRowStyle
			}

			if rv.Checkbox != nil {
				if rv.Checkbox.Disabled {
					return DisabledCellStyle
				}
				if rv.Checkbox.Checked {
					return SelectedRowStyle
				}
			}

			cellIdx := col
			if rv.Checkbox != nil {
				cellIdx--
			}
			if cellIdx >= 0 && cellIdx < len(rv.Cells) && rv.Cells[cellIdx].Success {
				return CellStyle.Foreground(secondaryColor)
			}

			return CellStyle
		})

	if len(headers) > 0 {
		t = t.Headers(headers...)
	}

	return t.Render()
}

// Summary renders a non-interactive listing, used by the list command.
func Summary(s page.State) (string, error) {
	v, err := s.Table()
	if err != nil {
		return "", err
	}

	m := Model{state: s, focus: -1}

	return m.renderTable(v), nil
}

package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/notify"
	"github.com/AntoineGS/tidyfiles/internal/page"
)

var discard = slog.New(slog.DiscardHandler)

type failingSource struct{}

func (failingSource) Fetch(context.Context) (catalog.Result, error) {
	return catalog.Result{}, errors.New("connection refused")
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case KeyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case KeyShiftTab:
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case KeyUp:
		return tea.KeyMsg{Type: tea.KeyUp}
	case KeyDown:
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}

	return nm, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()

	for _, k := range keys {
		m, _ = update(t, m, keyMsg(k))
	}

	return m
}

func newTestModel(t *testing.T, source catalog.Source, rec *notify.Recorder) Model {
	t.Helper()

	d := notify.NewDispatcher(rec, nil, nil, discard)
	d.NewID = func() string { return "req-1" }

	return NewModel(Options{Source: source, Dispatcher: d, Logger: discard})
}

func loadedModel(t *testing.T, files []catalog.File, rec *notify.Recorder) Model {
	t.Helper()

	m := newTestModel(t, catalog.Static{Files: files}, rec)
	m, _ = update(t, m, m.fetch()())

	if m.State().Phase != page.PhaseLoaded {
		t.Fatalf("phase = %v after fetch", m.State().Phase)
	}

	return m
}

// runDownload activates the download button and feeds back the result.
func runDownload(t *testing.T, m Model, via func(Model) (Model, tea.Cmd)) Model {
	t.Helper()

	m, cmd := via(m)
	if cmd == nil {
		t.Fatal("expected a download command")
	}

	m, _ = update(t, m, cmd())

	return m
}

func plainView(m Model) string {
	lipgloss.SetColorProfile(termenv.Ascii)
	return normalizeOutput(stripAnsiCodes(m.View()))
}

func TestNewModel_StartsLoading(t *testing.T) {
	m := newTestModel(t, catalog.Static{Files: catalog.Sample()}, &notify.Recorder{})

	if !m.State().Loading() {
		t.Fatal("mount should raise the loading signal")
	}
	if m.Init() == nil {
		t.Error("Init should issue the fetch")
	}

	view := plainView(m)
	if !strings.Contains(view, LoadingText) {
		t.Errorf("loading view should show the mask content:\n%s", view)
	}
	if m.region.Mask() == nil {
		t.Error("the table region should carry a mask while loading")
	}
	if strings.Contains(view, "netsh.exe") {
		t.Error("rows must not render while loading")
	}
}

func TestFetch_ResolvedDetachesMask(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})

	view := plainView(m)
	if m.region.Mask() != nil {
		t.Error("mask should be detached once loaded")
	}
	if strings.Contains(view, LoadingText) {
		t.Error("loaded view should not show the loading text")
	}
	for _, name := range []string{"smss.exe", "netsh.exe", "uxtheme.dll", "cryptbase.dll", "7za.exe"} {
		if !strings.Contains(view, name) {
			t.Errorf("view should contain %s", name)
		}
	}
	if !strings.Contains(view, SuccessCircle+" Available") {
		t.Error("available files carry the success marker")
	}
	if !strings.Contains(view, "Scheduled") {
		t.Error("status should be capitalized")
	}
}

func TestFetch_Empty(t *testing.T) {
	m := loadedModel(t, nil, &notify.Recorder{})

	view := plainView(m)
	if !strings.Contains(view, "No Data") {
		t.Errorf("empty listing should show No Data:\n%s", view)
	}

	c := m.State().Controls()
	if !c.SelectAll.Disabled || !c.Download.Disabled {
		t.Error("controls should be disabled with nothing to select")
	}

	m = press(t, m, KeyEnter)
	if !m.State().Selected.Empty() {
		t.Error("select all with no rows selects nothing")
	}
}

func TestFetch_FailedAndRetry(t *testing.T) {
	m := newTestModel(t, failingSource{}, &notify.Recorder{})
	m, _ = update(t, m, m.fetch()())

	if m.State().Loading() {
		t.Fatal("failure should clear the loading signal")
	}

	view := plainView(m)
	if !strings.Contains(view, "Failed to load files: connection refused") {
		t.Errorf("expected the failure message:\n%s", view)
	}
	if !strings.Contains(view, RetryHint) {
		t.Error("expected the retry hint")
	}

	m.source = catalog.Static{Files: catalog.Sample()}
	m, cmd := update(t, m, keyMsg("r"))
	if cmd == nil || !m.State().Loading() {
		t.Fatal("r should start a new fetch")
	}

	m, _ = update(t, m, m.fetch()())
	if m.State().Phase != page.PhaseLoaded || len(m.State().Files) != 5 {
		t.Errorf("retry should load the listing, phase=%v", m.State().Phase)
	}
}

func TestFocusRing(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})

	if m.Focus() != FocusSelectAll {
		t.Fatalf("initial focus = %v", m.Focus())
	}

	want := []Focus{FocusRows, FocusDownload, FocusSelectAll}
	for _, f := range want {
		m = press(t, m, KeyTab)
		if m.Focus() != f {
			t.Errorf("after tab focus = %v, want %v", m.Focus(), f)
		}
	}

	m = press(t, m, KeyShiftTab)
	if m.Focus() != FocusDownload {
		t.Errorf("shift+tab focus = %v, want download", m.Focus())
	}

	m = press(t, m, KeyDown, KeyDown, KeyDown, KeyDown, KeyDown, KeyDown)
	if m.Focus() != FocusRows || m.Cursor() != 4 {
		t.Errorf("down should focus rows and clamp at the last row, cursor=%d", m.Cursor())
	}

	m = press(t, m, KeyUp)
	if m.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", m.Cursor())
	}
}

func TestRowToggle_EnterSpaceClickParity(t *testing.T) {
	base := loadedModel(t, catalog.Sample(), &notify.Recorder{})
	base = press(t, base, KeyDown) // row 1: netsh.exe, available

	viaEnter := press(t, base, KeyEnter)
	viaSpace := press(t, base, " ")
	viaClick, _ := update(t, base, click(1, base.bodyTop()+1))

	for name, m := range map[string]Model{"enter": viaEnter, "space": viaSpace, "click": viaClick} {
		sel := m.State().Selected
		if sel.Len() != 1 || !sel.Has(page.FileKey(m.State().Files[1])) {
			t.Errorf("%s: selection = %v", name, sel.Keys())
		}
	}

	if !viaEnter.State().Selected.Equal(viaClick.State().Selected) {
		t.Error("enter and click must produce the same selection")
	}
}

func TestRowToggle_DisabledIgnored(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})
	m = press(t, m, KeyTab) // rows, cursor 0: smss.exe, scheduled

	m = press(t, m, KeyEnter)
	if !m.State().Selected.Empty() {
		t.Error("scheduled files cannot be selected")
	}

	m, _ = update(t, m, click(1, m.bodyTop()))
	if !m.State().Selected.Empty() {
		t.Error("clicking a scheduled file selects nothing")
	}
}

func TestSelectAll_KeyAndClick(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})

	viaKey := press(t, m, KeyEnter)
	viaClick, _ := update(t, m, click(0, controlsTop))

	for name, got := range map[string]Model{"enter": viaKey, "click": viaClick} {
		c := got.State().Controls()
		if got.State().Selected.Len() != 2 || !c.SelectAll.Checked {
			t.Errorf("%s: select all should select both available files", name)
		}
	}

	view := plainView(viaKey)
	if !strings.Contains(view, CheckboxChecked+" "+SelectAllLabel) {
		t.Errorf("select all should render checked:\n%s", view)
	}

	cleared := press(t, viaKey, KeyEnter)
	if !cleared.State().Selected.Empty() {
		t.Error("second activation clears the selection")
	}
}

func TestSelectAll_Indeterminate(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})
	m = press(t, m, KeyDown, KeyEnter)

	view := plainView(m)
	if !strings.Contains(view, CheckboxIndeterminate+" "+SelectAllLabel) {
		t.Errorf("one of two selected should render indeterminate:\n%s", view)
	}
	if !strings.Contains(view, "1 selected · 5 total") {
		t.Errorf("summary missing:\n%s", view)
	}
}

func TestDownload_GatedAndAlert(t *testing.T) {
	rec := &notify.Recorder{}
	m := loadedModel(t, catalog.Sample(), rec)

	m = press(t, m, KeyShiftTab) // download
	m, cmd := update(t, m, keyMsg(KeyEnter))
	if cmd != nil {
		t.Error("download must do nothing with an empty selection")
	}

	m = press(t, m, KeyTab, KeyEnter, KeyShiftTab) // select all, back to download
	m = runDownload(t, m, func(m Model) (Model, tea.Cmd) { return update(t, m, keyMsg(KeyEnter)) })

	n, ok := m.Alert()
	if !ok {
		t.Fatal("expected the alert")
	}
	if n.RequestID != "req-1" || len(n.Files) != 2 {
		t.Errorf("alert = %+v", n)
	}

	last, ok := rec.Last()
	if !ok || len(last.Files) != 2 || last.Files[0].Name != "netsh.exe" {
		t.Errorf("recorder got %+v", last)
	}

	view := plainView(m)
	if !strings.Contains(view, notify.DefaultTitle) || !strings.Contains(view, "Lannister: ") {
		t.Errorf("alert should list the selected files:\n%s", view)
	}

	m = press(t, m, KeyTab)
	if m.Focus() != FocusDownload {
		t.Error("keys other than dismiss are ignored while the alert is shown")
	}

	m = press(t, m, KeyEsc)
	if _, ok := m.Alert(); ok {
		t.Error("esc should dismiss the alert")
	}
}

func TestDownload_ClickParity(t *testing.T) {
	recKey, recClick := &notify.Recorder{}, &notify.Recorder{}

	viaKey := press(t, loadedModel(t, catalog.Sample(), recKey), KeyEnter, KeyShiftTab)
	runDownload(t, viaKey, func(m Model) (Model, tea.Cmd) { return update(t, m, keyMsg(" ")) })

	viaClick := press(t, loadedModel(t, catalog.Sample(), recClick), KeyEnter)
	_, segs := viaClick.renderControls()

	x := -1
	for _, s := range segs {
		if s.focus == FocusDownload {
			x = s.start
		}
	}
	if x < 0 {
		t.Fatal("download button not found in the controls bar")
	}

	runDownload(t, viaClick, func(m Model) (Model, tea.Cmd) { return update(t, m, click(x, controlsTop)) })

	if len(recKey.Notifications()) != 1 || len(recClick.Notifications()) != 1 {
		t.Errorf("key=%d click=%d notifications, want 1 each", len(recKey.Notifications()), len(recClick.Notifications()))
	}
}

func TestReload_ResetsSelection(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})
	m = press(t, m, KeyEnter)

	m = press(t, m, "r")
	if !m.State().Selected.Empty() || !m.State().Loading() {
		t.Fatal("reload should clear the selection and show loading")
	}
	if !strings.Contains(plainView(m), LoadingText) || m.region.Mask() == nil {
		t.Error("reload should attach the mask again")
	}

	m, _ = update(t, m, m.fetch()())
	if !m.State().Selected.Empty() {
		t.Error("new data starts with an empty selection")
	}
}

func TestWindowResize_ReattachesMask(t *testing.T) {
	m := newTestModel(t, catalog.Static{Files: catalog.Sample()}, &notify.Recorder{})
	_ = m.View()

	first := *m.region.Mask()

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.region.Mask() != nil {
		t.Fatal("resize should drop the stale mask")
	}

	_ = m.View()
	if got := m.region.Mask(); got == nil || got.Width != first.Width {
		t.Errorf("mask should be re-attached with the table size, got %+v", got)
	}
}

func TestQuit(t *testing.T) {
	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})

	m, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestSummary(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := loadedModel(t, catalog.Sample(), &notify.Recorder{})
	summary, err := Summary(m.State())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	out := stripAnsiCodes(summary)

	if !strings.Contains(out, "Name") || !strings.Contains(out, "7za.exe") {
		t.Errorf("summary table:\n%s", out)
	}
}

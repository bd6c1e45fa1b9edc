package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/loading"
	"github.com/AntoineGS/tidyfiles/internal/notify"
	"github.com/AntoineGS/tidyfiles/internal/page"
)

// Focus identifies the control that receives Activate.
type Focus int

// Focus ring, in tab order.
const (
	// FocusSelectAll is the select-all checkbox.
	FocusSelectAll Focus = iota
	// FocusRows is the row under the cursor.
	FocusRows
	// FocusDownload is the download button.
	FocusDownload
	focusCount
)

func (f Focus) String() string {
	switch f {
	case FocusSelectAll:
		return "select-all"
	case FocusRows:
		return "rows"
	case FocusDownload:
		return "download"
	case focusCount:
	}

	return "unknown"
}

// RowToggledMsg reports a click or Activate on a row checkbox.
type RowToggledMsg struct {
	Key string
}

// SelectAllToggledMsg reports a click or Activate on the select-all control.
type SelectAllToggledMsg struct{}

// ActionInvokedMsg reports a click or Activate on the download button.
type ActionInvokedMsg struct{}

// ReloadMsg requests a new fetch of the listing.
type ReloadMsg struct{}

type fetchDoneMsg struct {
	err    error
	result catalog.Result
}

type downloadDoneMsg struct {
	err          error
	notification notify.Notification
}

// Options configures a Model.
type Options struct {
	Context    context.Context
	Source     catalog.Source
	Dispatcher *notify.Dispatcher
	Logger     *slog.Logger
	AriaLabel  string
}

// Model is the bubbletea model of the file table page.
type Model struct {
	err        error
	ctx        context.Context
	source     catalog.Source
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	overlay    *loading.Controller
	region     *loading.Region
	alert      *notify.Notification
	state      page.State
	spinner    spinner.Model
	width      int
	height     int
	cursor     int
	focus      Focus
	quitting   bool
}

// NewModel mounts the page. The listing fetch starts at Init.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	source := opts.Source
	if source == nil {
		source = catalog.Static{Files: catalog.Sample()}
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(notify.LogNotifier{Logger: logger}, nil, nil, logger)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := Model{
		ctx:        ctx,
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
		overlay:    loading.NewController(logger),
		region:     loading.NewRegion(""),
		spinner:    sp,
		width:      80,
		height:     24,
	}

	m.state, _ = page.Mount(opts.AriaLabel)

	return m
}

// State returns the page state snapshot.
func (m Model) State() page.State {
	return m.state
}

// Focus returns the focused control.
func (m Model) Focus() Focus {
	return m.focus
}

// Cursor returns the row cursor.
func (m Model) Cursor() int {
	return m.cursor
}

// Alert returns the visible download confirmation, if any.
func (m Model) Alert() (notify.Notification, bool) {
	if m.alert == nil {
		return notify.Notification{}, false
	}

	return *m.alert, true
}

// Err returns the last download error.
func (m Model) Err() error {
	return m.err
}

// Init starts the fetch issued at mount.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m Model) fetch() tea.Cmd {
	ctx, source := m.ctx, m.source

	return func() tea.Msg {
		res, err := source.Fetch(ctx)
		return fetchDoneMsg{result: res, err: err}
	}
}

func (m Model) download(files []catalog.File) tea.Cmd {
	ctx, d := m.ctx, m.dispatcher

	return func() tea.Msg {
		n, err := d.Dispatch(ctx, files)
		return downloadDoneMsg{notification: n, err: err}
	}
}

// dispatch reduces e and turns its effect into commands.
func (m Model) dispatch(e page.Event) (Model, tea.Cmd) {
	var eff page.Effect
	m.state, eff = page.Reduce(m.state, e)

	if rows := len(m.state.Files); m.cursor >= rows {
		m.cursor = max(rows-1, 0)
	}

	var cmds []tea.Cmd
	if eff.Fetch {
		m.logger.Debug("fetching catalog")
		cmds = append(cmds, m.fetch(), m.spinner.Tick)
	}

	if eff.Download != nil {
		m.logger.Debug("download invoked", slog.Int("files", len(eff.Download)))
		cmds = append(cmds, m.download(eff.Download))
	}

	return m, tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// The mask is resized on the next render.
		m.overlay.Detach(m.region)

		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case fetchDoneMsg:
		if msg.err != nil {
			m.logger.Warn("catalog fetch failed", slog.String("error", msg.err.Error()))
			return m.dispatch(page.FetchFailed{Err: msg.err})
		}

		m.logger.Debug("catalog fetched", slog.Int("files", len(msg.result.Files)), slog.Int("total", msg.result.Total))

		return m.dispatch(page.FetchResolved{Result: msg.result})

	case downloadDoneMsg:
		if msg.err != nil {
			m.logger.Error("download failed", slog.String("error", msg.err.Error()))
			m.err = msg.err

			return m, nil
		}

		m.err = nil
		n := msg.notification
		m.alert = &n

		return m, nil

	case RowToggledMsg:
		return m.dispatch(page.RowToggled(msg))

	case SelectAllToggledMsg:
		return m.dispatch(page.SelectAllToggled{})

	case ActionInvokedMsg:
		return m.dispatch(page.ActionInvoked{})

	case ReloadMsg:
		m.alert = nil
		return m.dispatch(page.FetchStarted{})
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, SharedKeys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.alert != nil {
		if key.Matches(msg, AlertKeys.Dismiss) {
			m.alert = nil
		}

		return m, nil
	}

	switch {
	case key.Matches(msg, SharedKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, TableKeys.Next):
		m.focus = (m.focus + 1) % focusCount
		return m, nil

	case key.Matches(msg, TableKeys.Prev):
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m, nil

	case key.Matches(msg, TableKeys.Up):
		m.focus = FocusRows
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, TableKeys.Down):
		m.focus = FocusRows
		if m.cursor < len(m.state.Files)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, TableKeys.Reload):
		return m.Update(ReloadMsg{})

	case key.Matches(msg, TableKeys.Activate):
		return m.activate(m.focus, m.cursor)
	}

	return m, nil
}

// activate is the single path for Enter, space and click on a control.
func (m Model) activate(f Focus, row int) (tea.Model, tea.Cmd) {
	switch f {
	case FocusSelectAll:
		return m.Update(SelectAllToggledMsg{})

	case FocusRows:
		if row < 0 || row >= len(m.state.Files) {
			return m, nil
		}

		return m.Update(RowToggledMsg{Key: page.FileKey(m.state.Files[row])})

	case FocusDownload:
		return m.Update(ActionInvokedMsg{})

	case focusCount:
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease || m.alert != nil {
		return m, nil
	}

	if msg.Y == controlsTop {
		f, ok := m.controlAt(msg.X)
		if !ok {
			return m, nil
		}

		m.focus = f

		return m.activate(f, m.cursor)
	}

	row, ok := m.rowAt(msg.Y)
	if !ok {
		return m, nil
	}

	m.focus = FocusRows
	m.cursor = row

	return m.activate(FocusRows, row)
}

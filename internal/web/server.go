package web

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
	"github.com/AntoineGS/tidyfiles/internal/notify"
	"github.com/AntoineGS/tidyfiles/internal/page"
)

// Form actions accepted by POST /.
const (
	ActionToggle    = "toggle"
	ActionSelectAll = "select-all"
	ActionDownload  = "download"
	ActionReload    = "reload"
	ActionDismiss   = "dismiss"
)

// Title is the document title of the page.
const Title = "Files"

// Options configures a Server.
type Options struct {
	Context    context.Context
	Source     catalog.Source
	Dispatcher *notify.Dispatcher
	Renderer   *Renderer
	Logger     *slog.Logger
	AriaLabel  string
}

// Server is the page container behind the web route. Every reducer step
// runs under mu.
type Server struct {
	ctx        context.Context
	source     catalog.Source
	dispatcher *notify.Dispatcher
	renderer   *Renderer
	logger     *slog.Logger
	alert      *notify.Notification
	dlErr      error
	state      page.State
	fetches    sync.WaitGroup
	mu         sync.Mutex
}

// NewServer mounts the page and starts the first fetch.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	renderer := opts.Renderer
	if renderer == nil {
		var err error
		if renderer, err = NewRenderer(); err != nil {
			return nil, err
		}
	}

	source := opts.Source
	if source == nil {
		source = catalog.Static{Files: catalog.Sample()}
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(notify.LogNotifier{Logger: logger}, nil, nil, logger)
	}

	s := &Server{
		ctx:        ctx,
		source:     source,
		dispatcher: dispatcher,
		renderer:   renderer,
		logger:     logger,
	}

	var eff page.Effect
	s.state, eff = page.Mount(opts.AriaLabel)
	s.handle(eff)

	return s, nil
}

// Wait blocks until no fetch is in flight.
func (s *Server) Wait() {
	s.fetches.Wait()
}

// State returns a snapshot of the page state.
func (s *Server) State() page.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// reduce must be called with mu held.
func (s *Server) reduce(e page.Event) page.Effect {
	var eff page.Effect
	s.state, eff = page.Reduce(s.state, e)

	return eff
}

// handle performs an effect. It must be called without mu held.
func (s *Server) handle(eff page.Effect) {
	if eff.Fetch {
		s.fetches.Add(1)
		go s.fetch()
	}

	if eff.Download != nil {
		n, err := s.dispatcher.Dispatch(s.ctx, eff.Download)

		s.mu.Lock()
		if err != nil {
			s.logger.Error("download failed", slog.String("error", err.Error()))
			s.dlErr = err
		} else {
			s.dlErr = nil
			s.alert = &n
		}
		s.mu.Unlock()
	}
}

func (s *Server) fetch() {
	defer s.fetches.Done()

	res, err := s.source.Fetch(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("catalog fetch failed", slog.String("error", err.Error()))
		s.reduce(page.FetchFailed{Err: err})

		return
	}

	s.logger.Debug("catalog fetched", slog.Int("files", len(res.Files)))
	s.reduce(page.FetchResolved{Result: res})
}

// apply reduces a form action.
func (s *Server) apply(action, key string) bool {
	var e page.Event

	switch action {
	case ActionToggle:
		e = page.RowToggled{Key: key}
	case ActionSelectAll:
		e = page.SelectAllToggled{}
	case ActionDownload:
		e = page.ActionInvoked{}
	case ActionReload:
		e = page.FetchStarted{}
	case ActionDismiss:
		s.mu.Lock()
		s.alert = nil
		s.mu.Unlock()

		return true
	default:
		return false
	}

	s.mu.Lock()
	s.alert = nil
	eff := s.reduce(e)
	s.mu.Unlock()

	s.handle(eff)

	return true
}

func (s *Server) view() (PageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tv, err := s.state.Table()
	if err != nil {
		return PageView{}, err
	}

	v := PageView{
		Title:    Title,
		Alert:    s.alert,
		Error:    s.state.ErrorMessage(),
		Controls: s.state.Controls(),
		Table:    tv,
		Refresh:  s.state.Loading(),
	}

	if s.dlErr != nil && v.Error == "" {
		v.Error = "Download failed: " + s.dlErr.Error()
	}

	return v, nil
}

// ServeHTTP serves GET and POST on / only.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.serveGet(w)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		action := r.PostForm.Get("action")
		if !s.apply(action, r.PostForm.Get("key")) {
			http.Error(w, "unknown action "+action, http.StatusBadRequest)
			return
		}

		s.logger.Debug("form action", slog.String("action", action))
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveGet(w http.ResponseWriter) {
	v, err := s.view()
	if err != nil {
		s.logger.Error("building page", slog.String("error", err.Error()))
		http.Error(w, "building page", http.StatusInternalServerError)

		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, v); err != nil {
		s.logger.Error("rendering page", slog.String("error", err.Error()))
		http.Error(w, "rendering page", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w) //nolint:errcheck // client disconnects are not actionable
}

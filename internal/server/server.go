// Package server exposes an editor session over HTTP: the HTML editor, a
// JSON gesture API and a websocket that pushes re-rendered fragments.
//
// The session is not safe for concurrent use, so every handler hands its
// work to a single event-loop goroutine that owns it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-pagebuilder/components/catalog"
	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/renderers/html"
)

// ErrClosed is returned once the server has been closed.
var ErrClosed = errors.New("server: closed")

const maxGestureBody = 1 << 20

// Logger matches the log package's Printf.
type Logger interface {
	Printf(format string, args ...any)
}

// Frame is what the browser applies after a gesture: fresh sidebar and page
// fragments.
type Frame struct {
	Sidebar string `json:"sidebar"`
	Page    string `json:"page"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// Option customises the server.
type Option func(*Server)

// WithLogger sets the logger; log.Default() otherwise.
func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTMLRenderer replaces the default embedded-template renderer.
func WithHTMLRenderer(renderer *html.Renderer) Option {
	return func(s *Server) {
		s.html = renderer
	}
}

// WithRenderer registers an extra renderer reachable from
// /api/state?format=<name>.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		s.extra = append(s.extra, renderer)
	}
}

// WithRenderOptions sets the theme and locale used for every render.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(s *Server) {
		s.renderOptions = options
	}
}

// WithLabeler localises section and field labels.
func WithLabeler(labels render.Labeler) Option {
	return func(s *Server) {
		s.labels = labels
	}
}

// WithCatalog mounts the section catalog handler at /api/sections.
func WithCatalog(component *catalog.Component) Option {
	return func(s *Server) {
		s.catalog = component
	}
}

// WithTemplateWatch reloads templates when files under dir change and
// pushes a fresh frame to connected previews.
func WithTemplateWatch(dir string) Option {
	return func(s *Server) {
		s.watchDir = dir
	}
}

// Server serves one editor session.
type Server struct {
	session       *editor.Session
	html          *html.Renderer
	renderers     *render.Registry
	extra         []render.Renderer
	renderOptions render.RenderOptions
	labels        render.Labeler
	catalog       *catalog.Component
	watchDir      string
	watcher       *Watcher
	logger        Logger
	hub           *hub

	ops     chan func()
	quit    chan struct{}
	stopped chan struct{}

	// changed is only touched on the loop goroutine.
	changed bool
}

// New wires the server around session and starts its event loop. The
// caller must not touch session afterwards except through the server.
func New(session *editor.Session, options ...Option) (*Server, error) {
	if session == nil {
		return nil, errors.New("server: session is required")
	}
	s := &Server{
		session: session,
		logger:  log.Default(),
		ops:     make(chan func()),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.html == nil {
		renderer, err := html.New(html.WithLabeler(s.labels))
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.html = renderer
	}
	if s.catalog == nil {
		s.catalog = catalog.New(catalog.WithRegistry(session.Registry()))
	}
	renderers, err := render.NewRegistry(append([]render.Renderer{render.JSONRenderer{}, s.html}, s.extra...)...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.renderers = renderers
	s.hub = newHub(s.logger)

	if s.watchDir != "" {
		watcher, err := NewWatcher(s.watchDir, s.templatesChanged, s.logger)
		if err != nil {
			return nil, fmt.Errorf("server: watch %s: %w", s.watchDir, err)
		}
		s.watcher = watcher
		watcher.Start()
	}

	session.Subscribe(func(editor.Change) { s.changed = true })
	go s.loop()
	return s, nil
}

func (s *Server) loop() {
	defer close(s.stopped)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Server) do(ctx context.Context, fn func(*editor.Session)) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn(s.session)
	}
	select {
	case s.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.quit:
		return ErrClosed
	}
	<-done
	return nil
}

// Close stops the loop, the watcher and every websocket.
func (s *Server) Close() error {
	select {
	case <-s.quit:
		return nil
	default:
	}
	close(s.quit)
	<-s.stopped
	s.hub.close()
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDocument)
	mux.HandleFunc("GET /sidebar", s.handleFragment(render.TargetSidebar))
	mux.HandleFunc("GET /page", s.handleFragment(render.TargetPage))
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/gesture", s.handleGesture)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	if _, err := s.catalog.RegisterRoutes(mux, ""); err != nil {
		s.logger.Printf("server: catalog routes: %v", err)
	}
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Printf("server: editing %q on http://%s", s.session.PageID(), addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close()
}

func (s *Server) view(session *editor.Session) render.View {
	return render.BuildView(session, render.WithLabeler(s.labels))
}

func (s *Server) renderTarget(ctx context.Context, renderer render.Renderer, view render.View, target render.Target) ([]byte, error) {
	options := s.renderOptions
	options.Target = target
	return renderer.Render(ctx, view, options)
}

// frame renders the fragments. Must run on the loop goroutine.
func (s *Server) frame(ctx context.Context, session *editor.Session) (Frame, error) {
	view := s.view(session)
	sidebar, err := s.renderTarget(ctx, s.html, view, render.TargetSidebar)
	if err != nil {
		return Frame{}, err
	}
	page, err := s.renderTarget(ctx, s.html, view, render.TargetPage)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Sidebar: string(sidebar), Page: string(page)}, nil
}

// apply runs a gesture and renders the resulting frame. When the session
// changed the frame is also pushed to every websocket.
func (s *Server) apply(ctx context.Context, g Gesture) (Frame, error) {
	var (
		frame     Frame
		applyErr  error
		renderErr error
	)
	err := s.do(ctx, func(session *editor.Session) {
		s.changed = false
		applied, err := Apply(ctx, session, g)
		applyErr = err
		frame, renderErr = s.frame(ctx, session)
		frame.Applied = applied
		if err != nil {
			frame.Error = err.Error()
		}
		if s.changed && renderErr == nil {
			s.push(frame)
		}
	})
	if err != nil {
		return Frame{}, err
	}
	if renderErr != nil {
		return Frame{}, renderErr
	}
	return frame, applyErr
}

func (s *Server) push(frame Frame) {
	if s.hub.len() == 0 {
		return
	}
	frame.Applied = false
	frame.Error = ""
	msg, err := json.Marshal(frame)
	if err != nil {
		s.logger.Printf("server: encode frame: %v", err)
		return
	}
	s.hub.broadcast(msg)
}

func (s *Server) templatesChanged(path string) {
	s.html.Reload()
	err := s.do(context.Background(), func(session *editor.Session) {
		frame, err := s.frame(context.Background(), session)
		if err != nil {
			s.logger.Printf("server: re-render after %s: %v", path, err)
			return
		}
		s.push(frame)
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Printf("server: reload %s: %v", path, err)
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.serveRendered(w, r, s.html, render.TargetDocument)
}

func (s *Server) handleFragment(target render.Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveRendered(w, r, s.html, target)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	renderer, err := s.renderers.Resolve(r.URL.Query().Get("format"), r.Header.Get("Accept"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	target := render.Target(r.URL.Query().Get("target"))
	s.serveRendered(w, r, renderer, target)
}

func (s *Server) serveRendered(w http.ResponseWriter, r *http.Request, renderer render.Renderer, target render.Target) {
	var (
		out       []byte
		renderErr error
	)
	err := s.do(r.Context(), func(session *editor.Session) {
		out, renderErr = s.renderTarget(r.Context(), renderer, s.view(session), target)
	})
	if err == nil {
		err = renderErr
	}
	if err != nil {
		s.logger.Printf("server: render %s %s: %v", renderer.Name(), target, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	var g Gesture
	if err := json.NewDecoder(io.LimitReader(r.Body, maxGestureBody)).Decode(&g); err != nil {
		http.Error(w, fmt.Sprintf("invalid gesture: %v", err), http.StatusBadRequest)
		return
	}
	frame, err := s.apply(r.Context(), g)
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownAction):
		status = http.StatusBadRequest
	case frame.Sidebar == "" && frame.Page == "":
		s.logger.Printf("server: gesture %s: %v", g.Action, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	default:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, frame)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("server: websocket upgrade: %v", err)
		return
	}
	c := s.hub.add(conn)
	defer s.hub.remove(c)

	var initial Frame
	var renderErr error
	if err := s.do(r.Context(), func(session *editor.Session) {
		initial, renderErr = s.frame(r.Context(), session)
	}); err != nil {
		return
	}
	if renderErr == nil {
		if msg, err := json.Marshal(initial); err == nil {
			s.hub.sendTo(c, msg)
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("server: websocket read: %v", err)
			}
			return
		}
		var g Gesture
		if err := json.Unmarshal(message, &g); err != nil {
			s.logger.Printf("server: websocket gesture: %v", err)
			continue
		}
		frame, err := s.apply(r.Context(), g)
		if errors.Is(err, ErrClosed) {
			return
		}
		if frame.Sidebar == "" && frame.Page == "" {
			s.logger.Printf("server: websocket gesture %s: %v", g.Action, err)
			continue
		}
		if msg, err := json.Marshal(frame); err == nil {
			s.hub.sendTo(c, msg)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

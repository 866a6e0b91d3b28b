// Package server serves a wizard over HTTP: one session per cookie, one form
// per step, and a post/redirect/get cycle for every accepted action.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/internal/metrics"
	"github.com/goliatone/go-formwizard/internal/session"
	"github.com/goliatone/go-formwizard/pkg/contract"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// DefaultCookieName names the session cookie unless WithCookie overrides it.
const DefaultCookieName = "formwizard_session"

// SubmitFunc receives every accepted submission.
type SubmitFunc func(ctx context.Context, sub wizard.Submission) error

// Server wires a schema to sessions, renderers and the submission contract.
type Server struct {
	schema    *schema.Schema
	contract  *contract.Contract
	store     session.Store
	locker    *session.Locker
	renderers *render.Registry
	fallback  string
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	cookieName   string
	secureCookie bool
	cookieTTL    time.Duration
	csrfSecret   []byte

	theme      *theme.RendererConfig
	translator render.Translator
	locale     string
	onSubmit   SubmitFunc
	extra      []render.Renderer
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store session.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger injects the request and wizard event logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records wizard activity and serves it at /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRenderer registers an extra renderer selectable with ?format=<name>.
func WithRenderer(r render.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.extra = append(s.extra, r)
		}
	}
}

// WithTheme applies a resolved theme to every page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithTranslator localizes chrome labels for locale.
func WithTranslator(t render.Translator, locale string) Option {
	return func(s *Server) {
		s.translator = t
		s.locale = locale
	}
}

// WithCookie configures the session cookie. maxAge of zero makes it a
// browser-session cookie.
func WithCookie(name string, secure bool, maxAge time.Duration) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
		s.secureCookie = secure
		s.cookieTTL = maxAge
	}
}

// WithCSRFSecret fixes the key used to derive form tokens. Servers sharing a
// redis store need the same secret.
func WithCSRFSecret(secret []byte) Option {
	return func(s *Server) {
		if len(secret) > 0 {
			s.csrfSecret = append([]byte(nil), secret...)
		}
	}
}

// WithSubmitHandler is called with each submission before the session is
// dropped. A returned error keeps the session and reports 500.
func WithSubmitHandler(fn SubmitFunc) Option {
	return func(s *Server) {
		s.onSubmit = fn
	}
}

// New builds a server for sch.
func New(sch *schema.Schema, opts ...Option) (*Server, error) {
	if sch == nil {
		return nil, wizard.ErrNilSchema
	}
	s := &Server{
		schema:     sch,
		locker:     session.NewLocker(),
		renderers:  render.NewRegistry(),
		fallback:   html.Name,
		logger:     zerolog.Nop(),
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}
	if s.csrfSecret == nil {
		s.csrfSecret = randomSecret()
	}

	c, err := contract.Build(context.Background(), sch)
	if err != nil {
		return nil, fmt.Errorf("server: build contract: %w", err)
	}
	s.contract = c

	page, err := html.New(html.WithTranslator(s.translator))
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	if err := s.renderers.Register(page); err != nil {
		return nil, err
	}
	for _, r := range s.extra {
		if err := s.renderers.Register(r); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.metrics.Instrument)
	}

	r.Get("/", s.handlePage)
	r.Post("/", s.handlePost)
	r.Get("/schema.json", s.handleSchema)
	r.Get("/openapi.json", s.handleContract)
	r.Get("/options/{field}", s.handleChoices)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(html.AssetsFS()))))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.schema)
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.contract)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			s.writeError(w, r, StatusError{Code: http.StatusServiceUnavailable, Err: err})
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(append(data, '\n'))
}

package server

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/internal/session"
	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/contract"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// pageExtras carries per-response additions to the rendered page.
type pageExtras struct {
	errors     render.ErrorMapping
	submission *wizard.Submission
}

// handlePage renders the current screen, starting a session when the cookie
// is missing or points at an expired one.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := s.sessionID(r)
	var state wizard.State
	var err error
	if id != "" {
		state, err = s.store.Load(ctx, id)
	}
	if id == "" || errors.Is(err, session.ErrNotFound) {
		id, state, err = s.startSession(w, r)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.controller(id, state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, id, c, pageExtras{})
}

// handlePost applies the posted values of the current step, then the
// requested action. Accepted actions redirect back to GET /; validation
// failures re-render with 422.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	id := s.sessionID(r)
	if id == "" {
		s.redirect(w, r)
		return
	}
	unlock := s.locker.Lock(id)
	defer unlock()

	state, err := s.store.Load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		s.redirect(w, r)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !validCSRF(s.csrfSecret, id, r.PostForm.Get(render.HiddenCSRF)) {
		s.writeError(w, r, StatusError{Code: http.StatusForbidden, Err: errors.New("invalid form token")})
		return
	}

	action, err := render.ParseAction(r.PostForm.Get("action"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.controller(id, state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// A form rendered for another step (browser back, double submit) is
	// dropped and the current step shown instead.
	if posted := r.PostForm.Get(render.HiddenStep); posted != strconv.Itoa(c.Step()) {
		s.logger.Debug().Str("session", id).Str("posted_step", posted).Int("step", c.Step()).Msg("stale form ignored")
		s.redirect(w, r)
		return
	}

	if c.Phase() == wizard.PhaseEditing {
		if err := applyForm(c, r.PostForm); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	switch action.Kind {
	case render.ActionSave:
	case render.ActionNext:
		err = c.Next()
	case render.ActionBack:
		err = c.Back()
		if errors.Is(err, wizard.ErrFirstStep) {
			err = nil
		}
	case render.ActionAdd:
		err = c.AddGroup(action.Group)
	case render.ActionRemove:
		err = c.RemoveGroup(action.Group, action.Index)
	case render.ActionSubmit:
		s.submit(w, r, id, c)
		return
	}

	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		if saveErr := s.store.Save(ctx, id, c.Snapshot()); saveErr != nil {
			s.writeError(w, r, saveErr)
			return
		}
		s.renderPage(w, r, http.StatusUnprocessableEntity, id, c, pageExtras{errors: render.MapViolations(verr.Violations)})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Save(ctx, id, c.Snapshot()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.redirect(w, r)
}

// submit checks the record against the contract, emits it and drops the
// session.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, id string, c *wizard.Controller) {
	ctx := r.Context()
	if c.Phase() != wizard.PhasePreview {
		s.writeError(w, r, wizard.ErrNotInPreview)
		return
	}

	if err := s.contract.ValidatePayload(c.Answers()); err != nil {
		var payloadErr *contract.PayloadError
		if !errors.As(err, &payloadErr) {
			s.writeError(w, r, err)
			return
		}
		s.logger.Warn().Str("session", id).Err(err).Msg("submission rejected by contract")
		s.renderPage(w, r, http.StatusUnprocessableEntity, id, c, pageExtras{
			errors: s.previewErrors(render.MapErrorPayload(s.schema, payloadErr.Issues)),
		})
		return
	}

	sub, err := c.Submit()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.onSubmit != nil {
		if err := s.onSubmit(ctx, sub); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error().Str("session", id).Err(err).Msg("drop submitted session")
	}
	http.SetCookie(w, s.cookie("", -1))
	s.renderPage(w, r, http.StatusOK, id, c, pageExtras{submission: &sub})
}

// previewErrors folds field errors into form-level messages, since the
// preview renders no inputs to attach them to.
func (s *Server) previewErrors(mapping render.ErrorMapping) render.ErrorMapping {
	names := make([]string, 0, len(mapping.Fields))
	for name := range mapping.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	form := mapping.Form
	for _, name := range names {
		label := name
		if path, err := answers.ParsePath(name); err == nil && !path.IsNested() {
			if field, ok := s.schema.Lookup(name); ok {
				label = field.Label()
			}
		}
		for _, message := range mapping.Fields[name] {
			form = render.MergeFormErrors(form, label+": "+message)
		}
	}
	return render.ErrorMapping{Form: form}
}

// applyForm writes the posted values of the current step into c. Keys that
// were not posted are left untouched, and so are blank values for keys the
// record does not hold yet: browsers post every input, edited or not.
func applyForm(c *wizard.Controller, form url.Values) error {
	step, ok := c.CurrentStep()
	if !ok {
		return nil
	}
	record := c.Answers()
	for _, field := range step.Fields {
		switch f := field.(type) {
		case schema.Unknown:
			continue
		case schema.Repeatable:
			for i, entry := range record.Group(f.Name()) {
				for _, sub := range f.Fields {
					value, ok := formValue(sub, form, answers.Nested(f.Name(), i, sub.Name()).String())
					if !ok {
						continue
					}
					if _, set := entry[sub.Name()]; !set && blank(value) {
						continue
					}
					if err := c.HandleSubChange(f.Name(), i, sub.Name(), value); err != nil {
						return err
					}
				}
			}
		default:
			value, ok := formValue(field, form, field.Name())
			if !ok {
				continue
			}
			if _, set := record.Get(field.Name()); !set && blank(value) {
				continue
			}
			if err := c.HandleChange(answers.Top(field.Name()), value); err != nil {
				return err
			}
		}
	}
	return nil
}

// blank reports the value an untouched input posts.
func blank(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	}
	return false
}

// formValue reads the last posted value for key. Checkboxes post a hidden
// "false" ahead of the box itself, so the last value wins.
func formValue(field schema.Field, form url.Values, key string) (any, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return nil, false
	}
	last := values[len(values)-1]
	switch field.Type() {
	case schema.FieldTypeCheckbox:
		return last == "true" || last == "on", true
	case schema.FieldTypeRepeatable:
		return nil, false
	}
	if _, unknown := field.(schema.Unknown); unknown {
		return nil, false
	}
	return last, true
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) (string, wizard.State, error) {
	id := session.NewID()
	state := wizard.State{Answers: answers.Record{}}
	if err := s.store.Save(r.Context(), id, state); err != nil {
		return "", wizard.State{}, err
	}
	http.SetCookie(w, s.cookie(id, int(s.cookieTTL.Seconds())))
	if s.metrics != nil {
		s.metrics.Sessions.Inc()
	}
	s.logger.Info().Str("session", id).Msg("session started")
	return id, state, nil
}

func (s *Server) controller(id string, state wizard.State) (*wizard.Controller, error) {
	hooks := []wizard.Hooks{logging.Hooks(s.logger.With().Str("session", id).Logger())}
	if s.metrics != nil {
		hooks = append(hooks, s.metrics.Hooks())
	}
	return wizard.NewController(s.schema,
		wizard.WithState(state),
		wizard.WithHooks(chainHooks(hooks...)),
	)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, id string, c *wizard.Controller, extras pageExtras) {
	renderer, err := s.renderers.Resolve(r.URL.Query().Get("format"), s.fallback)
	if err != nil {
		s.writeError(w, r, StatusError{Code: http.StatusNotAcceptable, Err: err})
		return
	}

	opts := render.RenderOptions{
		Action:     "/",
		Locale:     s.locale,
		Translator: s.translator,
		Errors:     extras.errors.Fields,
		FormErrors: extras.errors.Form,
		Theme:      s.theme,
		Submission: extras.submission,
	}
	if extras.submission == nil {
		opts.Hidden = render.MergeHiddenFields(nil,
			render.StepField(c.Step()),
			render.CSRFToken(csrfToken(s.csrfSecret, id)),
		)
	}

	body, err := renderer.Render(r.Context(), render.BuildPage(c, opts))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if format := r.URL.Query().Get("format"); format != "" {
		target += "?format=" + url.QueryEscape(format)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func chainHooks(hooks ...wizard.Hooks) wizard.Hooks {
	return wizard.Hooks{
		OnStepChange: func(from, to int) {
			for _, h := range hooks {
				if h.OnStepChange != nil {
					h.OnStepChange(from, to)
				}
			}
		},
		OnValidationFailed: func(verr *wizard.ValidationError) {
			for _, h := range hooks {
				if h.OnValidationFailed != nil {
					h.OnValidationFailed(verr)
				}
			}
		},
		OnSubmit: func(sub wizard.Submission) {
			for _, h := range hooks {
				if h.OnSubmit != nil {
					h.OnSubmit(sub)
				}
			}
		},
	}
}

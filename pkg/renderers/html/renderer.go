package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formwizard/pkg/render"
	rendertemplate "github.com/goliatone/go-formwizard/pkg/render/template"
	gotemplate "github.com/goliatone/go-formwizard/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formwizard/pkg/renderers/html/components"
)

const (
	// Name identifies the renderer in a render.Registry.
	Name = "html"

	pageTemplate = "templates/page.tmpl"
	// PagePartialKey lets a theme replace the page layout.
	PagePartialKey = "layout.page"
)

type Option func(*config)

// templateText is the untranslated text of keys the embedded templates
// look up themselves.
var templateText = map[string]string{
	render.KeySteps: "Progress",
}

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	policy           *bluemonday.Policy
	funcs            map[string]any
	translator       render.Translator
	goTemplateOpts   []gotemplatepkg.Option
	stylesheetURL    string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default per-type components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithPolicy overrides the sanitizer applied to step descriptions and help
// text. The default is bluemonday's UGC policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithTemplateFuncs registers helpers on the built-in engine. They replace
// the translate and current_locale helpers when the names collide.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[name] = fn
		}
	}
}

// WithTranslator backs the translate template helper. Without one the
// helper prints its built-in English text.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithGoTemplateOptions forwards engine options to the built-in engine.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.goTemplateOpts = append(cfg.goTemplateOpts, opts...)
	}
}

// WithStylesheetURL sets where the page links the base stylesheet. An empty
// value drops the link.
func WithStylesheetURL(url string) Option {
	return func(cfg *config) {
		cfg.stylesheetURL = strings.TrimSpace(url)
	}
}

// Renderer turns a render.Page into a complete HTML document with a single
// POST form.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	registry      *components.Registry
	policy        *bluemonday.Policy
	stylesheetURL string
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:    TemplatesFS(),
		stylesheetURL: "/assets/" + StylesheetName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(gotemplate.DefaultExtension),
			gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{
				Fallbacks: templateText,
			})),
			gotemplate.WithTemplateFunc(cfg.funcs),
			gotemplate.WithGoTemplateOptions(cfg.goTemplateOpts...),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:     renderer,
		registry:      cfg.registry,
		policy:        cfg.policy,
		stylesheetURL: cfg.stylesheetURL,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var partials map[string]string
	if page.Theme != nil {
		partials = page.Theme.Partials
	}

	fields := newComponentRenderer(r.templates, r.registry, partials, r.policy)
	fieldsHTML, err := fields.renderAll(page.Fields)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	var stylesheets []string
	if r.stylesheetURL != "" {
		stylesheets = append(stylesheets, r.stylesheetURL)
	}
	stylesheets = append(stylesheets, fields.stylesheets()...)

	themeStyle := ""
	if page.Theme != nil {
		themeStyle = render.CSSVarsStyle(page.Theme.CSSVars)
		if page.Theme.AssetURL != nil {
			if href := page.Theme.AssetURL("stylesheet"); href != "" {
				stylesheets = append(stylesheets, href)
			}
		}
	}

	name := pageTemplate
	if candidate := strings.TrimSpace(partials[PagePartialKey]); candidate != "" {
		name = candidate
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"page":             page,
		"fields_html":      fieldsHTML,
		"description_html": fields.sanitize(page.Description),
		"stylesheets":      stylesheets,
		"theme_style":      themeStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/metrics"
	"github.com/goliatone/go-formwizard/internal/server"
	"github.com/goliatone/go-formwizard/internal/session"
	"github.com/goliatone/go-formwizard/pkg/preview"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

const shutdownTimeout = 5 * time.Second

// browserOpen is swapped in tests.
var browserOpen = browser.OpenURL

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [schema]",
		Short: "Serve the form wizard over HTTP",
		Long:  `Starts an HTTP server that renders one step per page, keeps answers in a session store and exposes the submission contract at /openapi.json.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}
	cmd.Flags().StringP("addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().Bool("open", false, "open the wizard in the default browser")
	cmd.Flags().String("store", "", "session backend (memory, redis)")
	cmd.Flags().String("redis-addr", "", "redis address for the redis session backend")
	cmd.Flags().String("theme", "", "go-theme manifest file (JSON or YAML)")
	cmd.Flags().String("variant", "", "theme variant")
	cmd.Flags().String("locale", "", "locale used for the wizard chrome")
	cmd.Flags().Bool("secure-cookie", false, "mark the session cookie Secure")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideString(cmd, "addr", &cfg.Addr)
	overrideString(cmd, "store", &cfg.Sess.Backend)
	overrideString(cmd, "redis-addr", &cfg.Sess.Redis.Addr)
	overrideString(cmd, "theme", &cfg.Theme.Manifest)
	overrideString(cmd, "variant", &cfg.Theme.Variant)
	overrideString(cmd, "locale", &cfg.Locale)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	s, path, err := loadSchema(cfg, args)
	if err != nil {
		return err
	}

	secure, _ := cmd.Flags().GetBool("secure-cookie")
	app, closeStore, err := buildServer(cmd.Context(), cfg, s, logger, server.WithCookie(cfg.Sess.Cookie, secure, cfg.Sess.TTL))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn().Err(err).Msg("close session store")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Str("schema", path).
			Str("store", cfg.Sess.Backend).
			Msg("formwizard server started")
		serverErrors <- srv.Serve(ln)
	}()

	if open, _ := cmd.Flags().GetBool("open"); open {
		url := localURL(ln.Addr())
		if err := browserOpen(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("could not open browser")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("shutting down")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Dur("timeout", shutdownTimeout).Msg("graceful shutdown did not complete")
			return srv.Close()
		}
		logger.Info().Msg("formwizard server stopped")
		return nil
	}
}

// buildServer wires the session store, metrics, theme, translations and the
// text renderer into a server. The returned func releases the store.
func buildServer(ctx context.Context, cfg config.Config, s *schema.Schema, logger zerolog.Logger, extra ...server.Option) (*server.Server, func() error, error) {
	store, closeStore, err := openStore(ctx, cfg.Sess)
	if err != nil {
		return nil, nil, err
	}

	text, err := tui.New(
		tui.WithOutput(io.Discard),
		tui.WithProfile(termenv.Ascii),
		tui.WithOutputFormat(preview.FormatText),
	)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	opts := []server.Option{
		server.WithStore(store),
		server.WithLogger(logger),
		server.WithMetrics(metrics.New()),
		server.WithRenderer(text),
	}

	if cfg.Theme.Manifest != "" {
		manifest, err := config.LoadManifest(cfg.Theme.Manifest)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		selector, err := render.NewManifestSelector(manifest)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		sel, err := selector.Select(manifest.Name, cfg.Theme.Variant)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		opts = append(opts, server.WithTheme(render.ThemeConfig(sel, nil)))
	}

	var translator render.Translator
	if cfg.Catalog != "" {
		catalog, err := config.LoadCatalog(cfg.Catalog)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		translator = catalog
	}
	if translator != nil || cfg.Locale != "" {
		opts = append(opts, server.WithTranslator(translator, cfg.Locale))
	}

	app, err := server.New(s, append(opts, extra...)...)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return app, closeStore, nil
}

func openStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		store := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			session.WithRedisTTL(cfg.TTL),
			session.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis session store %s: %w", cfg.Redis.Addr, err)
		}
		return store, store.Close, nil
	default:
		return session.NewMemoryStore(session.WithMemoryTTL(cfg.TTL)), func() error { return nil }, nil
	}
}

// localURL turns a listener address into a URL a local browser can reach.
func localURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

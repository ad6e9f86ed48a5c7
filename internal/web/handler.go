// Package web serves the error page over HTTP.
//
// GET {route_path} runs the query through a trust gate and renders the
// result as HTML, or as JSON when the client asks for application/json.
// The handler waits for the gate to settle, so a response never shows the
// verification placeholder.
//
// Import rules:
//   - CAN import: internal/config, internal/constants, internal/crypto,
//     internal/errorpage, internal/messages, internal/query, internal/trust,
//     std lib, chi, zerolog
//   - MUST NOT import: internal/cli
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/mrz1836/trustlink/internal/config"
	"github.com/mrz1836/trustlink/internal/constants"
	"github.com/mrz1836/trustlink/internal/crypto"
	"github.com/mrz1836/trustlink/internal/crypto/keys"
	"github.com/mrz1836/trustlink/internal/errorpage"
	"github.com/mrz1836/trustlink/internal/messages"
	"github.com/mrz1836/trustlink/internal/query"
	"github.com/mrz1836/trustlink/internal/trust"
)

//go:embed templates/error.html.tmpl
var templateFS embed.FS

//nolint:gochecknoglobals // Parsed once, read-only
var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/error.html.tmpl"))

// KeySource returns the verification key. Errors mean no key is available
// and every link on the page is untrusted.
type KeySource func(ctx context.Context) (*keys.Handle, error)

// GuestFunc reports whether a request comes from a guest viewer.
type GuestFunc func(r *http.Request) bool

// HeaderGuest treats a request as a guest when header is "1" or "true".
// An empty header name disables guest detection.
func HeaderGuest(header string) GuestFunc {
	if header == "" {
		return func(*http.Request) bool { return false }
	}
	return func(r *http.Request) bool {
		ok, err := strconv.ParseBool(r.Header.Get(header))
		return err == nil && ok
	}
}

// Options are the collaborators of the handler.
type Options struct {
	Verifier crypto.Verifier
	Keys     KeySource
	Guest    GuestFunc
	Logger   zerolog.Logger
}

type handler struct {
	cfg  *config.Config
	opts Options
}

// NewRouter builds the chi router serving the error route and the health check.
func NewRouter(cfg *config.Config, opts Options) http.Handler {
	if opts.Guest == nil {
		opts.Guest = HeaderGuest(cfg.Server.GuestHeader)
	}
	h := &handler{cfg: cfg, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(opts.Logger.With().Str("component", "web").Logger()))
	r.Use(requestIDField)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get(cfg.Verifier.RoutePath, h.errorPage)
	r.Get(constants.HealthPath, h.health)
	return r
}

// requestIDField copies chi's request id onto the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs the path only; the query carries the signature.
func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

func (h *handler) errorPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := hlog.FromRequest(r)

	var key *keys.Handle
	if h.opts.Keys != nil {
		k, err := h.opts.Keys(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("no verification key, link is untrusted")
		} else {
			key = k
		}
	}

	gate := trust.NewGate(h.cfg.Verifier.RoutePath, query.Parse(r.URL.RawQuery),
		trust.WithVerifier(h.opts.Verifier),
		trust.WithKey(key),
		trust.WithSignatureParam(h.cfg.Verifier.SignatureParam),
		trust.WithTimeout(h.cfg.Verifier.Timeout),
	)
	gate.Activate(ctx)
	if _, err := gate.Await(ctx); err != nil {
		logger.Debug().Err(err).Str("gate_id", gate.ID()).Msg("client went away before trust settled")
		return
	}

	view := errorpage.Build(gate, errorpage.Options{
		IsGuest:  h.opts.Guest(r),
		SiteName: h.cfg.Site.Name,
		Locale:   messages.Match(r.Header.Get("Accept-Language"), h.cfg.Site.Locale),
	})

	setPageHeaders(w)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", view.Locale)
	w.WriteHeader(http.StatusOK)
	if err := pageTemplate.Execute(w, view); err != nil {
		logger.Error().Err(err).Msg("failed to render error page")
	}
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// setPageHeaders keeps signed pages out of caches and referrers.
func setPageHeaders(w http.ResponseWriter) {
	hdr := w.Header()
	hdr.Set("Cache-Control", "no-store")
	hdr.Set("X-Content-Type-Options", "nosniff")
	hdr.Set("Referrer-Policy", "no-referrer")
	hdr.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
	hdr.Add("Vary", "Accept")
	hdr.Add("Vary", "Accept-Language")
}

// wantsJSON reports whether the first acceptable media type is JSON.
func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "application/json":
			return true
		case "text/html", "application/xhtml+xml":
			return false
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

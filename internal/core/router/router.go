// Package router serves rendered maps over HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/maply/internal/core/config"
	"github.com/mohammed-shakir/maply/internal/core/observability"
	"github.com/mohammed-shakir/maply/internal/geocell"
	mylog "github.com/mohammed-shakir/maply/internal/logger"
	"github.com/mohammed-shakir/maply/internal/mapdoc"
	"github.com/mohammed-shakir/maply/internal/rendercache"
	"github.com/mohammed-shakir/maply/internal/renderevents"
	"github.com/mohammed-shakir/maply/pkg/maply"
)

// Output parts, also used as cache key and metric label.
const (
	PartPage   = "page"
	PartHTML   = "html"
	PartJS     = "js"
	PartRender = "render"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>
`

type Renderer struct {
	log     *slog.Logger
	keys    maply.KeySource
	cache   *rendercache.Cache
	events  renderevents.Publisher
	h3Res   int
	env     string
	maxBody int64
}

// New wires the render handlers. cache may be nil to disable caching and
// events may be nil to disable publishing.
func New(logger *slog.Logger, cfg config.Config, keys maply.KeySource, cache *rendercache.Cache, events renderevents.Publisher) *Renderer {
	if events == nil {
		events = renderevents.Nop{}
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Renderer{
		log:     logger,
		keys:    keys,
		cache:   cache,
		events:  events,
		h3Res:   cfg.H3Res,
		env:     cfg.Env,
		maxBody: maxBody,
	}
}

// Mount registers the map routes on r.
func (rd *Renderer) Mount(r chi.Router) {
	r.Get("/maps/{id}", rd.HandleMap(PartPage, "/maps/{id}"))
	r.Get("/maps/{id}/html", rd.HandleMap(PartHTML, "/maps/{id}/html"))
	r.Get("/maps/{id}/js", rd.HandleMap(PartJS, "/maps/{id}/js"))
	r.Post("/render", rd.HandleRender())
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// HandleMap renders one part of a map described by the query string.
func (rd *Renderer) HandleMap(part, route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
		}()

		id := chi.URLParam(r, "id")
		doc, err := ParseMapQuery(id, r.URL.Query())
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			return
		}
		rd.serve(r.Context(), sw, doc, part, "text/html; charset=utf-8")
	}
}

// HandleRender renders a JSON document into {"html": ..., "javascript": ...}.
func (rd *Renderer) HandleRender() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, "/render", sw.code, time.Since(start).Seconds())
		}()

		body := http.MaxBytesReader(sw, r.Body, rd.maxBody)
		doc, err := mapdoc.Decode(body, mapdoc.FormatJSON)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				http.Error(sw, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(sw, err.Error(), http.StatusBadRequest)
			return
		}
		rd.serve(r.Context(), sw, doc, PartRender, "application/json")
	}
}

type renderResponse struct {
	HTML       string `json:"html"`
	JavaScript string `json:"javascript"`
}

type renderError struct {
	code int
	err  error
}

func (e *renderError) Error() string { return e.err.Error() }

func (rd *Renderer) serve(ctx context.Context, w http.ResponseWriter, doc *mapdoc.Document, part, contentType string) {
	ctx = mylog.WithMapID(ctx, doc.ID)

	out, cell, cached, err := rd.render(ctx, doc, part)
	if cell != "" {
		w.Header().Set("X-Maply-Cell", cell)
	}
	if err != nil {
		code := http.StatusInternalServerError
		var re *renderError
		if errors.As(err, &re) {
			code = re.code
		}
		if code >= http.StatusInternalServerError {
			rd.log.ErrorContext(ctx, "render failed", "part", part, "err", err)
		}
		http.Error(w, err.Error(), code)
		return
	}

	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	w.Header().Set("X-Cache", outcome)
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)

	rd.events.Publish(renderevents.Event{
		MapID:   doc.ID,
		Cell:    cell,
		Part:    part,
		Markers: len(doc.Markers),
		Cached:  cached,
		Env:     rd.env,
	})
	rd.log.DebugContext(mylog.WithCache(ctx, outcome), "map rendered", "part", part, "cell", cell, "markers", len(doc.Markers))
}

func (rd *Renderer) render(ctx context.Context, doc *mapdoc.Document, part string) ([]byte, string, bool, error) {
	if err := doc.ValidateUntrusted(); err != nil {
		return nil, "", false, &renderError{code: http.StatusBadRequest, err: err}
	}
	cell, err := geocell.CenterCell(string(doc.Latitude), string(doc.Longitude), rd.h3Res)
	if err != nil {
		return nil, "", false, &renderError{code: http.StatusBadRequest, err: err}
	}

	canonical, err := doc.Canonical()
	if err != nil {
		return nil, cell, false, err
	}
	key := rendercache.Key(rd.env, cell, canonical, part)
	if rd.cache != nil {
		if v, ok := rd.cache.Get(ctx, key); ok {
			return v, cell, true, nil
		}
	}

	start := time.Now()
	out, err := rd.build(doc, part)
	observability.ObserveRender(part, err, len(doc.Markers), time.Since(start).Seconds())
	if err != nil {
		return nil, cell, false, err
	}
	if rd.cache != nil {
		rd.cache.Set(ctx, key, out)
	}
	return out, cell, false, nil
}

func (rd *Renderer) build(doc *mapdoc.Document, part string) ([]byte, error) {
	m, err := doc.Build(rd.keys)
	if err != nil {
		return nil, fmt.Errorf("build map: %w", err)
	}
	switch part {
	case PartHTML:
		return []byte(m.HTML()), nil
	case PartJS:
		return []byte(m.JavaScript()), nil
	case PartPage:
		page := maply.NewPage(m)
		return fmt.Appendf(nil, pageTemplate, m.ID(), page.JavaScript(), page.HTML()), nil
	case PartRender:
		b, err := json.Marshal(renderResponse{HTML: m.HTML(), JavaScript: m.JavaScript()})
		if err != nil {
			return nil, fmt.Errorf("encode response: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown part %q", part)
	}
}

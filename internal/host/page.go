package host

import (
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/kdex-tech/kdex-splitscreen/internal/cache"
	kdexhttp "github.com/kdex-tech/kdex-splitscreen/internal/http"
	"github.com/kdex-tech/kdex-splitscreen/internal/page"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

const migrationTimeout = 30 * time.Second

func (hh *HostHandler) pageHandlerFunc(name string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := hh.Pages.Get(name)
		if !ok {
			hh.serveError(w, r, http.StatusNotFound, "not found")
			return
		}

		l := kdexhttp.GetLang(r, hh.pageLanguage(p), hh.languages)

		pageCache := hh.cacheManager.GetCache(pageCacheClass, cache.Options{})
		cacheKey := fmt.Sprintf("%s:%s", p.Name, l.String())

		hit, err := pageCache.Get(r.Context(), cacheKey)
		if err != nil {
			hh.log.Error(err, "failed to get from cache", "page", p.Name, "language", l)
		}

		if hit.Found {
			if hit.Stale {
				hh.log.V(1).Info("serving stale page, migrating in background", "page", p.Name, "lang", l.String())
				hh.migrate(pageCache, cacheKey, p.Name, l)
			}
			hh.serveRendered(w, r, l, p.Name, hit.Value)
			return
		}

		rendered, err := hh.RenderPage(r.Context(), p, l)
		if err != nil {
			hh.log.Error(err, "failed to render page", "page", p.Name, "language", l)
			hh.serveError(w, r, http.StatusInternalServerError, "failed to render page")
			return
		}

		if err := pageCache.Set(r.Context(), cacheKey, rendered); err != nil {
			hh.log.Error(err, "failed to set cache", "page", p.Name, "language", l)
		}

		hh.serveRendered(w, r, l, p.Name, rendered)
	}
}

// migrate renders a fresh copy of a page whose cached render is from the previous
// generation. One migration per key runs at a time.
func (hh *HostHandler) migrate(pageCache cache.Cache, cacheKey string, name string, l language.Tag) {
	if _, running := hh.migrating.LoadOrStore(cacheKey, struct{}{}); running {
		return
	}

	go func() {
		defer hh.migrating.Delete(cacheKey)

		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		p, ok := hh.Pages.Get(name)
		if !ok {
			return
		}
		rendered, err := hh.RenderPage(ctx, p, l)
		if err != nil {
			hh.log.Error(err, "background migration failed", "page", name)
			return
		}
		if err := pageCache.Set(ctx, cacheKey, rendered); err != nil {
			hh.log.Error(err, "failed to set cache", "page", name, "language", l)
		}
	}()
}

// RenderPage renders the page chrome around the page body and hydrates every block in
// it.
func (hh *HostHandler) RenderPage(ctx context.Context, p page.Page, l language.Tag) (string, error) {
	renderer := render.Renderer{
		Context:        ctx,
		HeadScript:     hh.HeadScriptToHTML(),
		Lang:           l.String(),
		MessagePrinter: hh.printer(l),
		Meta:           hh.MetaToString(p),
		Organization:   hh.organization,
	}

	out, err := renderer.RenderPage(render.Page{
		Body:            p.Body(),
		Label:           p.Label,
		TemplateContent: p.Template,
		TemplateName:    p.Name,
	})
	if err != nil {
		return "", err
	}

	hydrated, result, err := hh.hydrator.HydrateString(ctx, out)
	if err != nil {
		return "", err
	}
	hh.log.V(1).Info("hydrated", "page", p.Name, "found", result.Found, "hydrated", result.Hydrated)

	return hydrated, nil
}

func (hh *HostHandler) pageLanguage(p page.Page) string {
	if p.Lang != "" {
		return p.Lang
	}
	return hh.defaultLanguage
}

func (hh *HostHandler) serveRendered(w http.ResponseWriter, r *http.Request, l language.Tag, name string, rendered string) {
	etag := etagOf(rendered)

	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	w.Header().Set("Content-Language", l.String())
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept-Language")

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	hh.log.V(1).Info("serving", "page", name, "language", l.String())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(rendered)); err != nil {
		hh.log.Error(err, "failed to write response", "page", name, "language", l)
	}
}

func etagOf(content string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return fmt.Sprintf(`"%016x"`, h.Sum64())
}

func etagMatches(header, etag string) bool {
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func errorBody(code int, msg string) template.HTML {
	return template.HTML(fmt.Sprintf(`<section class="error"><h1>%d %s</h1><p>%s</p></section>`,
		code, html.EscapeString(http.StatusText(code)), html.EscapeString(msg)))
}

package host

import (
	"fmt"
	"html"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"

	"github.com/kdex-tech/kdex-splitscreen/internal/auth"
	"github.com/kdex-tech/kdex-splitscreen/internal/editor"
	"github.com/kdex-tech/kdex-splitscreen/internal/host/ico"
	kdexhttp "github.com/kdex-tech/kdex-splitscreen/internal/http"
	"github.com/kdex-tech/kdex-splitscreen/internal/markup"
	"github.com/kdex-tech/kdex-splitscreen/internal/page"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
	pkgauth "github.com/kdex-tech/kdex-splitscreen/pkg/auth"
)

func NewHostHandler(opts Options, log logr.Logger) (*HostHandler, error) {
	if opts.Block == nil || opts.Blocks == nil {
		return nil, fmt.Errorf("a registered block is required")
	}
	if opts.CacheManager == nil {
		return nil, fmt.Errorf("a cache manager is required")
	}

	composer := opts.Composer
	if composer == nil {
		composer = render.SplitComposer{}
	}

	defaultLanguage := opts.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	languages := []language.Tag{}
	for _, l := range opts.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", l, err)
		}
		languages = append(languages, tag)
	}
	if len(languages) == 0 {
		languages = append(languages, language.Make(defaultLanguage))
	}

	hydrator := markup.NewHydrator(composer, log.WithName("hydrator"))
	hydrator.Selector = markup.ClassSelector(markup.ContentClass, opts.Block.ClassName())

	hh := &HostHandler{
		assetsDir:       opts.AssetsDir,
		assetsPrefix:    opts.AssetsPrefix,
		block:           opts.Block,
		blocks:          opts.Blocks,
		cacheManager:    opts.CacheManager,
		defaultLanguage: defaultLanguage,
		editorIssuer:    opts.EditorIssuer,
		editorSecret:    opts.EditorSecret,
		favicon:         ico.New(opts.Organization),
		hydrator:        hydrator,
		languages:       languages,
		library:         opts.Library,
		log:             log,
		mediaPrefix:     opts.MediaPrefix,
		organization:    opts.Organization,
		pagesFile:       opts.PagesFile,
		sessions:        editor.NewSessions(composer, nil, log.WithName("sessions")),
	}
	translations, err := buildCatalog(defaultLanguage, opts.Translations)
	if err != nil {
		return nil, err
	}
	hh.translations = translations

	hh.Pages = page.NewPageStore(hh.pagesChanged, log.WithName("pages"))
	hh.RebuildMux()

	return hh, nil
}

// EditorEnabled reports whether the editing endpoints are served.
func (hh *HostHandler) EditorEnabled() bool {
	return len(hh.editorSecret) > 0
}

func (hh *HostHandler) HeadScriptToHTML() string {
	return hh.blocks.HeadTags()
}

func (hh *HostHandler) MetaToString(p page.Page) string {
	return fmt.Sprintf(kdexUIMetaTemplate, html.EscapeString(p.BasePath), p.Revision)
}

// RebuildMux registers one route per page plus the fixed endpoints and swaps the new
// mux in.
func (hh *HostHandler) RebuildMux() {
	hh.log.V(1).Info("rebuilding mux")

	mux := hh.muxWithDefaults()

	seen := map[string]bool{}
	for _, p := range hh.Pages.List() {
		final := toFinalPath(p.BasePath)
		if !validBasePath(p.BasePath) || reservedPath(p.BasePath, hh.assetsPrefix, hh.mediaPrefix) {
			hh.log.Error(fmt.Errorf("invalid basePath %q", p.BasePath), "skipping page", "page", p.Name)
			continue
		}
		if seen[final] {
			hh.log.Error(fmt.Errorf("duplicate basePath %q", p.BasePath), "skipping page", "page", p.Name)
			continue
		}
		seen[final] = true
		mux.HandleFunc("GET "+final, hh.pageHandlerFunc(p.Name))
	}

	hh.mu.Lock()
	hh.Mux = mux
	hh.mu.Unlock()
}

func (hh *HostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hh.mu.RLock()
	mux := hh.Mux
	hh.mu.RUnlock()

	if mux == nil {
		hh.serveError(w, r, http.StatusNotFound, "not found")
		return
	}

	mux.ServeHTTP(w, r)
}

// Close ends every open editing session.
func (hh *HostHandler) Close() {
	hh.sessions.CloseAll()
}

func (hh *HostHandler) muxWithDefaults() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /favicon.ico", hh.favicon.FaviconHandler)

	if hh.assetsDir != "" && hh.assetsPrefix != "" {
		prefix := strings.TrimSuffix(hh.assetsPrefix, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(hh.assetsDir))))
	}

	if hh.library != nil && hh.mediaPrefix != "" {
		mux.HandleFunc("GET "+strings.TrimSuffix(hh.mediaPrefix, "/")+"/{file}", hh.mediaFileHandler)
	}

	mux.HandleFunc("GET /~/schema", hh.schemaHandler)

	if hh.EditorEnabled() {
		protect := auth.WithAuthentication(hh.editorSecret, hh.editorIssuer, pkgauth.EditorRole)
		handle := func(pattern string, fn http.HandlerFunc) {
			mux.Handle(pattern, protect(fn))
		}

		handle("GET /~/pages", hh.pagesListHandler)
		handle("DELETE /~/pages/{page}/blocks/{id}", hh.blockRemoveHandler)
		handle("POST /~/blocks", hh.blockOpenHandler)
		handle("GET /~/blocks/{id}", hh.blockGetHandler)
		handle("DELETE /~/blocks/{id}", hh.blockCloseHandler)
		handle("POST /~/blocks/{id}/media/{side}", hh.blockMediaHandler)
		handle("POST /~/blocks/{id}/save", hh.blockSaveHandler)

		if hh.library != nil {
			handle("GET /~/media", hh.mediaListHandler)
			handle("POST /~/media", hh.mediaUploadHandler)
			handle("GET /~/media/{id}", hh.mediaGetHandler)
			handle("GET /~/media/{id}/pick", hh.mediaPickHandler)
		}
	}

	return mux
}

func (hh *HostHandler) pagesChanged() {
	hh.RebuildMux()
	generation := hh.Pages.Revision()
	if err := hh.cacheManager.Cycle(generation, false); err != nil {
		hh.log.Error(err, "failed to cycle caches", "generation", generation)
	}
}

func (hh *HostHandler) serveError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	hh.log.V(1).Info("error", "requestURI", r.URL.Path, "code", code, "msg", msg)

	if strings.HasPrefix(r.URL.Path, "/~/") {
		kdexhttp.WriteError(w, r, code, msg)
		return
	}

	l := kdexhttp.GetLang(r, hh.defaultLanguage, hh.languages)
	renderer := render.Renderer{
		Context:        r.Context(),
		Lang:           l.String(),
		MessagePrinter: hh.printer(l),
		Organization:   hh.organization,
	}
	rendered, err := renderer.RenderPage(render.Page{
		Body:         errorBody(code, msg),
		Label:        http.StatusText(code),
		TemplateName: "error",
	})
	if err != nil {
		http.Error(w, msg, code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", l.String())
	w.WriteHeader(code)
	_, _ = w.Write([]byte(rendered))
}

var basePathPattern = regexp.MustCompile(`^/[A-Za-z0-9._~/-]*$`)

func validBasePath(p string) bool {
	if !basePathPattern.MatchString(p) {
		return false
	}
	return p == "/" || path.Clean(p) == strings.TrimSuffix(p, "/")
}

func reservedPath(p string, prefixes ...string) bool {
	if strings.HasPrefix(p, "/~") || p == "/favicon.ico" {
		return true
	}
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix != "" && strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func toFinalPath(p string) string {
	if p == "/" {
		return "/{$}"
	}
	return strings.TrimSuffix(p, "/")
}

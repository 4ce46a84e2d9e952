package host

import (
	"net/http"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"

	"github.com/kdex-tech/kdex-splitscreen/internal/block"
	"github.com/kdex-tech/kdex-splitscreen/internal/cache"
	"github.com/kdex-tech/kdex-splitscreen/internal/editor"
	"github.com/kdex-tech/kdex-splitscreen/internal/host/ico"
	"github.com/kdex-tech/kdex-splitscreen/internal/library"
	"github.com/kdex-tech/kdex-splitscreen/internal/markup"
	"github.com/kdex-tech/kdex-splitscreen/internal/page"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

const (
	kdexUIMetaTemplate = `<meta
	name="kdex-ui"
	data-page-basepath="%s"
	data-page-revision="%d"
	data-schema-endpoint="/~/schema"
	/>`

	pageCacheClass = "page"
)

// Options wires a HostHandler to its collaborators.
type Options struct {
	AssetsDir       string
	AssetsPrefix    string
	Block           *block.Definition
	Blocks          *block.Registry
	CacheManager    cache.Manager
	Composer        render.Composer
	DefaultLanguage string
	// EditorSecret enables the editing endpoints when set.
	EditorSecret []byte
	EditorIssuer string
	Languages    []string
	Library      *library.Library
	MediaPrefix  string
	Organization string
	// PagesFile, when set, receives the pages after every save.
	PagesFile string
	// Translations maps a language to message keys and their text. Page labels are
	// looked up as keys.
	Translations map[string]map[string]string
}

type HostHandler struct {
	Mux   *http.ServeMux
	Pages *page.PageStore

	assetsDir       string
	assetsPrefix    string
	block           *block.Definition
	blocks          *block.Registry
	cacheManager    cache.Manager
	defaultLanguage string
	editorIssuer    string
	editorSecret    []byte
	favicon         *ico.Ico
	hydrator        *markup.Hydrator
	languages       []language.Tag
	library         *library.Library
	log             logr.Logger
	mediaPrefix     string
	migrating       sync.Map
	mu              sync.RWMutex
	organization    string
	pagesFile       string
	sessions        *editor.Sessions
	translations    *catalog.Builder
}

package block

import (
	"errors"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

var (
	ErrAlreadyRegistered = errors.New("block already registered")
	ErrNotRegistered     = errors.New("block not registered")
)

type Registry struct {
	log    logr.Logger
	mu     sync.RWMutex
	blocks map[string]*Definition
}

func NewRegistry(log logr.Logger) *Registry {
	return &Registry{
		log:    log,
		blocks: map[string]*Definition{},
	}
}

func (r *Registry) Add(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[def.Name]; ok {
		return ErrAlreadyRegistered
	}
	r.blocks[def.Name] = def
	r.log.V(1).Info("register", "block", def.Name)
	return nil
}

func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.blocks[name]
	if !ok {
		return nil, ErrNotRegistered
	}
	return def, nil
}

func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defs := make([]*Definition, 0, len(r.blocks))
	for _, def := range r.blocks {
		defs = append(defs, def)
	}
	r.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// HeadTags renders the public runtime assets of every registered block.
func (r *Registry) HeadTags() string {
	tags := []string{}
	for _, def := range r.List() {
		tags = append(tags, def.Script.ToHeadTag())
	}
	return strings.Join(tags, "\n")
}

// Register reads the build manifests under assetsDir and adds the splitscreen block,
// its assets served under urlPrefix. A missing or unreadable manifest is an error and
// leaves the registry untouched.
func Register(registry *Registry, assetsDir string, urlPrefix string) (*Definition, error) {
	buildDir := filepath.Join(assetsDir, "build")

	editor, err := readManifest(filepath.Join(buildDir, "index.asset.json"))
	if err != nil {
		return nil, err
	}
	frontend, err := readManifest(filepath.Join(buildDir, "frontend.asset.json"))
	if err != nil {
		return nil, err
	}

	handle := strings.ReplaceAll(Name, "/", "-")

	def := newDefinition()
	def.EditorScript = ScriptDef{
		Dependencies: editor.Dependencies,
		Handle:       handle + "-block-editor",
		Src:          path.Join(urlPrefix, "build/index.js"),
		Version:      editor.Version,
	}
	def.Script = ScriptDef{
		Dependencies: frontend.Dependencies,
		Handle:       handle + "-block-frontend",
		Src:          path.Join(urlPrefix, "build/frontend.js"),
		Version:      frontend.Version,
	}
	def.EditorStyle = StyleDef{
		Handle:  handle + "-block-editor",
		Src:     path.Join(urlPrefix, "build/index.css"),
		Version: mtimeVersion(filepath.Join(buildDir, "index.css")),
	}

	if err := registry.Add(def); err != nil {
		return nil, err
	}
	return def, nil
}

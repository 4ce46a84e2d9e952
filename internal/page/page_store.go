package page

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

type PageStore struct {
	log      logr.Logger
	mu       sync.RWMutex
	onUpdate func()
	pages    map[string]Page
	revision int64
}

func NewPageStore(onUpdate func(), log logr.Logger) *PageStore {
	return &PageStore{
		log:      log,
		onUpdate: onUpdate,
		pages:    map[string]Page{},
	}
}

func (s *PageStore) Count() int {
	s.log.V(1).Info("count")
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

func (s *PageStore) Delete(name string) {
	s.log.V(1).Info("delete", "name", name)
	s.mu.Lock()
	delete(s.pages, name)
	s.revision++
	s.mu.Unlock()
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func (s *PageStore) Get(name string) (Page, bool) {
	s.log.V(1).Info("get", "name", name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[name]
	return page, ok
}

func (s *PageStore) GetByPath(basePath string) (Page, bool) {
	s.log.V(1).Info("get by path", "basePath", basePath)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, page := range s.pages {
		if page.BasePath == basePath {
			return page, true
		}
	}
	return Page{}, false
}

// List returns the pages ordered by base path.
func (s *PageStore) List() []Page {
	s.log.V(1).Info("list")
	s.mu.RLock()
	pages := make([]Page, 0, len(s.pages))
	for _, page := range s.pages {
		pages = append(pages, page)
	}
	s.mu.RUnlock()
	sort.Slice(pages, func(i, j int) bool { return pages[i].BasePath < pages[j].BasePath })
	return pages
}

// Revision changes whenever any page does. It is the generation of everything
// rendered from the store.
func (s *PageStore) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *PageStore) Set(page Page) {
	s.log.V(1).Info("set", "name", page.Name, "revision", page.Revision)
	s.mu.Lock()
	s.pages[page.Name] = page
	s.revision++
	s.mu.Unlock()
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

// Update applies fn to the named page under the store lock and stores the result.
func (s *PageStore) Update(name string, fn func(Page) Page) (Page, bool) {
	s.mu.Lock()
	page, ok := s.pages[name]
	if !ok {
		s.mu.Unlock()
		return Page{}, false
	}
	page = fn(page)
	s.pages[name] = page
	s.revision++
	s.mu.Unlock()

	s.log.V(1).Info("update", "name", name, "revision", page.Revision)
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return page, true
}

package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

var ErrSessionNotFound = errors.New("editor session not found")

// Session is one widget instance being edited. Each session owns its store and
// controller. Select, Snapshot and Save hold the session lock for their whole
// sequence, so concurrent requests on one instance apply one after another.
type Session struct {
	Controller *Controller
	ID         string
	Page       string
	Store      *attributes.Store

	mu sync.Mutex
}

// Snapshot is the JSON view of a session handed to the editing surface.
type Snapshot struct {
	Attributes attributes.WidgetAttributes `json:"attributes"`
	Committed  State                       `json:"committed"`
	Draft      State                       `json:"draft"`
	ID         string                      `json:"id"`
	Page       string                      `json:"page"`
	Preview    string                      `json:"preview"`
}

// Select applies a media picker result to side and returns the resulting snapshot.
func (s *Session) Select(side attributes.Side, raw media.RawMediaResult) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Controller.SelectMedia(side, raw)
	return s.snapshotLocked()
}

func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Save renders once so the height is measured, then hands the attributes to persist.
func (s *Session) Save(persist func(attributes.WidgetAttributes) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Controller.Render(); err != nil {
		return fmt.Errorf("failed to render before save: %w", err)
	}
	return persist(s.Store.Get())
}

func (s *Session) snapshotLocked() (Snapshot, error) {
	view, err := s.Controller.Render()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Attributes: s.Store.Get(),
		Committed:  s.Controller.Committed(),
		Draft:      s.Controller.Draft(),
		ID:         s.ID,
		Page:       s.Page,
		Preview:    string(view.HTML),
	}, nil
}

type Sessions struct {
	composer    render.Composer
	log         logr.Logger
	mu          sync.RWMutex
	newMeasurer func() Measurer
	sessions    map[string]*Session
}

func NewSessions(composer render.Composer, newMeasurer func() Measurer, log logr.Logger) *Sessions {
	if newMeasurer == nil {
		newMeasurer = func() Measurer { return IntrinsicMeasurer{} }
	}
	return &Sessions{
		composer:    composer,
		log:         log,
		newMeasurer: newMeasurer,
		sessions:    map[string]*Session{},
	}
}

// Open starts editing a new widget instance placed on page.
func (s *Sessions) Open(page string) *Session {
	return s.OpenWith(page, attributes.Defaults())
}

// OpenWith starts editing a new widget instance seeded with initial attributes.
func (s *Sessions) OpenWith(page string, initial attributes.WidgetAttributes) *Session {
	return s.Resume(uuid.NewString(), page, initial)
}

// Resume starts editing an instance that already has attributes, replacing any session
// open under the same id.
func (s *Sessions) Resume(id string, page string, initial attributes.WidgetAttributes) *Session {
	log := s.log.WithValues("session", id, "page", page)
	store := attributes.NewStore(initial, log.WithName("attributes"))
	session := &Session{
		Controller: NewController(store, s.composer, s.newMeasurer(), log.WithName("controller")),
		ID:         id,
		Page:       page,
		Store:      store,
	}

	s.mu.Lock()
	previous := s.sessions[id]
	s.sessions[id] = session
	s.mu.Unlock()

	if previous != nil {
		previous.Controller.Close()
	}

	log.V(1).Info("open")
	return session
}

func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Sessions) Close(id string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		session.Controller.Close()
		s.log.V(1).Info("close", "session", id)
	}
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll ends every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Controller.Close()
	}
	s.log.V(1).Info("close all", "count", len(sessions))
}

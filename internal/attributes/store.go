package attributes

import (
	"sync"

	"github.com/go-logr/logr"
)

// Observer is called after every Set with the value before and after it.
type Observer func(prev, next WidgetAttributes)

// Store owns the attributes of one widget instance.
type Store struct {
	log       logr.Logger
	mu        sync.RWMutex
	nextID    int
	observers map[int]Observer
	value     WidgetAttributes
}

func NewStore(initial WidgetAttributes, log logr.Logger) *Store {
	return &Store{
		log:       log,
		observers: map[int]Observer{},
		value:     initial,
	}
}

func (s *Store) Get() WidgetAttributes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set merges the patch into the current value and notifies observers synchronously.
// Observers run after the lock is released so they may call Set themselves.
func (s *Store) Set(p Patch) {
	s.mu.Lock()
	prev := s.value
	s.value = p.apply(prev)
	next := s.value
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	s.mu.Unlock()

	s.log.V(1).Info("set", "height", next.Height, "left", next.Left.ID, "right", next.Right.ID)

	for _, o := range observers {
		o(prev, next)
	}
}

// Subscribe registers an observer and returns the function that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

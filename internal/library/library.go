package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	_ "golang.org/x/image/webp"

	"github.com/kdex-tech/kdex-splitscreen/internal/media"
	"github.com/kdex-tech/kdex-splitscreen/internal/mime"
)

var ErrNotFound = errors.New("media not found")

// Item is one uploaded file.
type Item struct {
	Alt     string
	Created time.Time
	Data    []byte
	Height  *int
	ID      media.ID
	Kind    media.Kind
	MIME    string
	Name    string
	URL     string
	Width   *int
}

// Nested is the library (REST) shape of the item.
func (i *Item) Nested() *media.NestedDetailForm {
	return &media.NestedDetailForm{
		ID:        i.ID,
		MediaType: i.Kind,
		Details:   &media.Details{Width: i.Width, Height: i.Height},
		Alt:       i.Alt,
		URL:       i.URL,
	}
}

// Flat is the picker shape of the item.
func (i *Item) Flat() *media.FlatForm {
	return &media.FlatForm{
		ID:     i.ID,
		Type:   i.Kind,
		Width:  i.Width,
		Height: i.Height,
		Alt:    i.Alt,
		URL:    i.URL,
	}
}

// Library is an in-memory media library. Items get increasing numeric ids and are
// served under urlPrefix.
type Library struct {
	log       logr.Logger
	maxSize   int64
	mu        sync.RWMutex
	nextID    int
	items     map[media.ID]*Item
	urlPrefix string
}

func New(urlPrefix string, maxSize int64, log logr.Logger) *Library {
	return &Library{
		log:       log,
		maxSize:   maxSize,
		items:     map[media.ID]*Item{},
		urlPrefix: urlPrefix,
	}
}

// MaxSize is the largest accepted item in bytes, zero when unbounded.
func (l *Library) MaxSize() int64 {
	return l.maxSize
}

// Add stores the content of r. Intrinsic dimensions are recorded for images the
// decoders understand; other images are stored without them.
func (l *Library) Add(ctx context.Context, name string, alt string, r io.Reader) (*Item, error) {
	m, r, err := mime.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to sniff %s: %w", name, err)
	}

	if l.maxSize > 0 {
		r = io.LimitReader(r, l.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if l.maxSize > 0 && int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, l.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	item := &Item{
		Alt:     alt,
		Created: time.Now(),
		Data:    data,
		Kind:    media.KindFromMIME(mime.Essence(m)),
		MIME:    m.String(),
		Name:    name,
	}

	if mime.IsImage(m) {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			item.Width = media.Int(cfg.Width)
			item.Height = media.Int(cfg.Height)
		} else {
			l.log.V(1).Info("no intrinsic size", "name", name, "mime", item.MIME, "err", err.Error())
		}
	}

	l.mu.Lock()
	l.nextID++
	item.ID = media.ID(strconv.Itoa(l.nextID))
	item.URL = path.Join(l.urlPrefix, string(item.ID)+m.Extension())
	l.items[item.ID] = item
	l.mu.Unlock()

	l.log.V(1).Info("add", "id", item.ID, "name", name, "mime", item.MIME)
	return item, nil
}

func (l *Library) Get(id media.ID) (*Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	item, ok := l.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// Lookup resolves the id part of a served file name, e.g. "3.png".
func (l *Library) Lookup(file string) (*Item, error) {
	id := file[:len(file)-len(path.Ext(file))]
	item, err := l.Get(media.ID(id))
	if err != nil {
		return nil, err
	}
	if path.Base(item.URL) != file {
		return nil, ErrNotFound
	}
	return item, nil
}

func (l *Library) Delete(id media.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, id)
	l.log.V(1).Info("delete", "id", id)
}

// List returns the items in id order.
func (l *Library) List() []*Item {
	l.mu.RLock()
	items := make([]*Item, 0, len(l.items))
	for _, item := range l.items {
		items = append(items, item)
	}
	l.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		a, _ := strconv.Atoi(string(items[i].ID))
		b, _ := strconv.Atoi(string(items[j].ID))
		return a < b
	})
	return items
}

func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

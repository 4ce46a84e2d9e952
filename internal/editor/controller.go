package editor

import (
	"html/template"
	"sync"

	"github.com/go-logr/logr"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

// State is one descriptor per side.
type State struct {
	Left  media.Descriptor `json:"left"`
	Right media.Descriptor `json:"right"`
}

func (s State) Side(side attributes.Side) media.Descriptor {
	if side == attributes.Right {
		return s.Right
	}
	return s.Left
}

// View is the outcome of one render pass.
type View struct {
	HTML  template.HTML
	Left  *render.Image
	Right *render.Image
}

// Controller keeps the draft selection (whatever the attributes hold right now) apart
// from the committed selection (the last complete descriptor per side), and only ever
// renders the committed one.
type Controller struct {
	composer render.Composer
	log      logr.Logger
	measurer Measurer
	store    *attributes.Store

	mu          sync.Mutex
	committed   State
	dirty       bool
	unsubscribe func()
}

func NewController(
	store *attributes.Store,
	composer render.Composer,
	measurer Measurer,
	log logr.Logger,
) *Controller {
	c := &Controller{
		composer: composer,
		log:      log,
		measurer: measurer,
		store:    store,
		// the first render always measures
		dirty: true,
	}

	initial := store.Get()
	if initial.Left.IsComplete() {
		c.committed.Left = initial.Left
	}
	if initial.Right.IsComplete() {
		c.committed.Right = initial.Right
	}

	c.unsubscribe = store.Subscribe(c.observe)
	return c
}

// Close detaches the controller from its store.
func (c *Controller) Close() {
	c.unsubscribe()
}

func (c *Controller) Committed() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

func (c *Controller) Draft() State {
	attrs := c.store.Get()
	return State{Left: attrs.Left, Right: attrs.Right}
}

// SelectMedia is the completion callback of the media picker. A nil result, or one
// without an id or url, clears the side.
func (c *Controller) SelectMedia(side attributes.Side, raw media.RawMediaResult) media.Descriptor {
	d := media.Normalize(raw)
	c.log.V(1).Info("select media", "side", side, "id", d.ID, "clear", d.IsEmpty())
	c.store.Set(attributes.SidePatch(side, d))
	return d
}

// Render composes the committed panes. When the committed selection changed since the
// previous render the container is measured afterwards and the height written back.
func (c *Controller) Render() (View, error) {
	c.mu.Lock()
	committed := c.committed
	dirty := c.dirty
	c.dirty = false
	c.mu.Unlock()

	view := View{
		Left:  render.Pane(committed.Left),
		Right: render.Pane(committed.Right),
	}

	out, err := c.composer.Compose(view.Left, view.Right)
	if err != nil {
		if dirty {
			c.mu.Lock()
			c.dirty = true
			c.mu.Unlock()
		}
		return View{}, err
	}
	view.HTML = out

	if dirty {
		c.afterRender(view)
	}

	return view, nil
}

func (c *Controller) afterRender(view View) {
	if c.measurer == nil {
		return
	}

	height, mounted := c.measurer.Measure(view)
	if !mounted {
		c.log.V(1).Info("container not mounted, skipping height capture")
		return
	}

	c.store.Set(attributes.HeightPatch(height))
}

// observe commits from the store's current value rather than the notified one.
// Notifications of concurrent writes can arrive out of order; reading under c.mu makes
// the last commit reflect the last write.
func (c *Controller) observe(_, _ attributes.WidgetAttributes) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.store.Get()
	if next.Left.IsComplete() && !next.Left.Equal(c.committed.Left) {
		c.committed.Left = next.Left
		c.dirty = true
	}
	if next.Right.IsComplete() && !next.Right.Equal(c.committed.Right) {
		c.committed.Right = next.Right
		c.dirty = true
	}
}

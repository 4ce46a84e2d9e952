package editor

import (
	"errors"
	"html/template"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
	"github.com/kdex-tech/kdex-splitscreen/internal/render"
)

type failingComposer struct{}

func (failingComposer) Compose(_, _ *render.Image) (template.HTML, error) {
	return "", errors.New("boom")
}

var _ = Describe("Controller", func() {
	var (
		store      *attributes.Store
		controller *Controller
		measured   int
		mounted    bool
		imageX     media.Descriptor
		imageY     media.Descriptor
	)

	flatX := func() media.RawMediaResult {
		return &media.FlatForm{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: "A"}
	}

	BeforeEach(func() {
		imageX = media.Descriptor{ID: "5", Type: media.ImageKind, URL: "/a.jpg", Width: media.Int(100), Height: media.Int(50), Alt: "A"}
		imageY = media.Descriptor{ID: "7", Type: media.ImageKind, URL: "/y.jpg", Width: media.Int(80), Height: media.Int(120), Alt: "Y"}
		measured = 0
		mounted = true

		store = attributes.NewStore(attributes.Defaults(), logr.Discard())
		controller = NewController(store, render.SplitComposer{}, MeasureFunc(func(view View) (int, bool) {
			measured++
			return 321, mounted
		}), logr.Discard())
	})

	AfterEach(func() {
		controller.Close()
	})

	Context("fresh widget", func() {
		It("commits nothing and renders empty panes", func() {
			Expect(controller.Committed()).To(Equal(State{}))
			Expect(controller.Draft()).To(Equal(State{}))

			view, err := controller.Render()
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Left).To(BeNil())
			Expect(view.Right).To(BeNil())
			Expect(string(view.HTML)).NotTo(ContainSubstring("<img"))
		})

		It("measures on the first render only", func() {
			_, err := controller.Render()
			Expect(err).NotTo(HaveOccurred())
			_, err = controller.Render()
			Expect(err).NotTo(HaveOccurred())

			Expect(measured).To(Equal(1))
			Expect(store.Get().Height).To(Equal(321))
		})
	})

	Context("selecting media", func() {
		It("commits a complete selection immediately", func() {
			d := controller.SelectMedia(attributes.Left, flatX())

			Expect(d.Equal(imageX)).To(BeTrue())
			Expect(controller.Committed().Left.Equal(imageX)).To(BeTrue())
			Expect(controller.Committed().Right).To(Equal(media.Descriptor{}))
			Expect(store.Get().Left.Equal(imageX)).To(BeTrue())
		})

		It("keeps the committed image when the picker is cancelled", func() {
			controller.SelectMedia(attributes.Left, flatX())
			controller.SelectMedia(attributes.Left, nil)

			Expect(controller.Draft().Left).To(Equal(media.Descriptor{}))
			Expect(store.Get().Left).To(Equal(media.Descriptor{}))
			Expect(controller.Committed().Left.Equal(imageX)).To(BeTrue())

			view, err := controller.Render()
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Left).NotTo(BeNil())
			Expect(view.Left.Src).To(Equal("/a.jpg"))
		})

		It("treats a result without an id as a clear", func() {
			controller.SelectMedia(attributes.Right, &media.FlatForm{ID: "7", Type: media.ImageKind, URL: "/y.jpg"})
			controller.SelectMedia(attributes.Right, &media.FlatForm{URL: "/z.jpg"})

			Expect(store.Get().Right).To(Equal(media.Descriptor{}))
			Expect(controller.Committed().Right.URL).To(Equal("/y.jpg"))
		})

		It("replaces the committed image with a new complete one", func() {
			controller.SelectMedia(attributes.Left, flatX())
			controller.SelectMedia(attributes.Left, nil)
			store.Set(attributes.SidePatch(attributes.Left, imageY))

			Expect(controller.Committed().Left.Equal(imageY)).To(BeTrue())
		})

		It("accepts the nested detail form", func() {
			controller.SelectMedia(attributes.Right, &media.NestedDetailForm{
				ID: "5", MediaType: media.ImageKind, URL: "/a.jpg", Alt: "A",
				Details: &media.Details{Width: media.Int(100), Height: media.Int(50)},
			})

			Expect(controller.Committed().Right.Equal(imageX)).To(BeTrue())
		})
	})

	Context("height capture", func() {
		It("measures after a committed change and writes the height back", func() {
			_, _ = controller.Render()
			measured = 0

			controller.SelectMedia(attributes.Left, flatX())
			_, err := controller.Render()
			Expect(err).NotTo(HaveOccurred())

			Expect(measured).To(Equal(1))
			Expect(store.Get().Height).To(Equal(321))
		})

		It("does not measure when only the draft changed", func() {
			controller.SelectMedia(attributes.Left, flatX())
			_, _ = controller.Render()
			measured = 0

			controller.SelectMedia(attributes.Left, nil)
			_, _ = controller.Render()

			Expect(measured).To(Equal(0))
		})

		It("does not measure again after writing the height", func() {
			controller.SelectMedia(attributes.Left, flatX())
			_, _ = controller.Render()
			_, _ = controller.Render()

			Expect(measured).To(Equal(1))
		})

		It("skips without retrying when the container is not mounted", func() {
			mounted = false
			controller.SelectMedia(attributes.Left, flatX())
			_, _ = controller.Render()

			Expect(measured).To(Equal(1))
			Expect(store.Get().Height).To(Equal(attributes.DefaultHeight))

			mounted = true
			_, _ = controller.Render()
			Expect(measured).To(Equal(1))

			store.Set(attributes.SidePatch(attributes.Right, imageY))
			_, _ = controller.Render()
			Expect(measured).To(Equal(2))
			Expect(store.Get().Height).To(Equal(321))
		})
	})

	Context("initial attributes", func() {
		It("commits complete sides of the initial value", func() {
			initial := attributes.WidgetAttributes{Height: 80, Left: imageX}
			s := attributes.NewStore(initial, logr.Discard())
			c := NewController(s, render.SplitComposer{}, IntrinsicMeasurer{}, logr.Discard())
			defer c.Close()

			Expect(c.Committed().Left.Equal(imageX)).To(BeTrue())
			Expect(c.Committed().Right).To(Equal(media.Descriptor{}))

			_, err := c.Render()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Get().Height).To(Equal(50))
		})
	})

	Context("composer failure", func() {
		It("returns the error and measures on the next successful render", func() {
			s := attributes.NewStore(attributes.Defaults(), logr.Discard())
			calls := 0
			c := NewController(s, failingComposer{}, MeasureFunc(func(View) (int, bool) {
				calls++
				return 10, true
			}), logr.Discard())
			defer c.Close()

			_, err := c.Render()
			Expect(err).To(HaveOccurred())
			Expect(calls).To(Equal(0))

			c.composer = render.SplitComposer{}
			_, err = c.Render()
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(1))
		})
	})
})

var _ = Describe("Controller with out of order notifications", func() {
	It("commits the latest write when an earlier notification arrives last", func() {
		store := attributes.NewStore(attributes.Defaults(), logr.Discard())

		entered := make(chan struct{})
		release := make(chan struct{})
		// subscribed ahead of the controller, it holds up the notification of the first write
		store.Subscribe(func(_, next attributes.WidgetAttributes) {
			if next.Left.ID == "1" {
				close(entered)
				<-release
			}
		})
		controller := NewController(store, render.SplitComposer{}, IntrinsicMeasurer{}, logr.Discard())
		defer controller.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			controller.SelectMedia(attributes.Left, &media.FlatForm{ID: "1", Type: media.ImageKind, URL: "/1.jpg"})
		}()
		Eventually(entered).Should(BeClosed())

		controller.SelectMedia(attributes.Left, &media.FlatForm{ID: "2", Type: media.ImageKind, URL: "/2.jpg"})
		close(release)
		Eventually(done).Should(BeClosed())

		Expect(controller.Draft().Left.ID).To(Equal(media.ID("2")))
		Expect(controller.Committed().Left.ID).To(Equal(media.ID("2")))

		view, err := controller.Render()
		Expect(err).NotTo(HaveOccurred())
		Expect(view.Left.Src).To(Equal("/2.jpg"))
	})
})

var _ = Describe("IntrinsicMeasurer", func() {
	It("is unmounted without panes", func() {
		_, mounted := IntrinsicMeasurer{}.Measure(View{})
		Expect(mounted).To(BeFalse())
	})

	It("uses the tallest pane", func() {
		height, mounted := IntrinsicMeasurer{}.Measure(View{
			Left:  &render.Image{Height: media.Int(50)},
			Right: &render.Image{Height: media.Int(120)},
		})
		Expect(mounted).To(BeTrue())
		Expect(height).To(Equal(120))
	})

	It("ignores panes without a known height", func() {
		_, mounted := IntrinsicMeasurer{}.Measure(View{Left: &render.Image{Src: "/a.jpg"}})
		Expect(mounted).To(BeFalse())
	})
})

var _ = Describe("Sessions", func() {
	var sessions *Sessions

	BeforeEach(func() {
		sessions = NewSessions(render.SplitComposer{}, nil, logr.Discard())
	})

	It("gives every instance its own state", func() {
		a := sessions.Open("home")
		b := sessions.Open("home")
		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(sessions.Count()).To(Equal(2))

		a.Controller.SelectMedia(attributes.Left, &media.FlatForm{ID: "1", Type: media.ImageKind, URL: "/1.jpg"})
		Expect(b.Store.Get().Left).To(Equal(media.Descriptor{}))
		Expect(b.Controller.Committed().Left).To(Equal(media.Descriptor{}))
	})

	It("finds and closes sessions", func() {
		a := sessions.Open("home")

		got, err := sessions.Get(a.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(a))

		sessions.Close(a.ID)
		_, err = sessions.Get(a.ID)
		Expect(err).To(MatchError(ErrSessionNotFound))
	})

	It("applies concurrent selections on one instance one after another", func() {
		session := sessions.Open("home")

		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				id := strconv.Itoa(i)
				snapshot, err := session.Select(attributes.Left, &media.FlatForm{ID: media.ID(id), Type: media.ImageKind, URL: "/" + id + ".jpg"})
				Expect(err).NotTo(HaveOccurred())
				// every snapshot is consistent with its own write
				Expect(snapshot.Committed.Left).To(Equal(snapshot.Draft.Left))
			}(i)
		}
		wg.Wait()

		Expect(session.Controller.Committed().Left).To(Equal(session.Store.Get().Left))

		var saved attributes.WidgetAttributes
		Expect(session.Save(func(attrs attributes.WidgetAttributes) error {
			saved = attrs
			return nil
		})).To(Succeed())
		Expect(saved.Left).To(Equal(session.Controller.Committed().Left))
	})

	It("does not persist when the render before a save fails", func() {
		failing := NewSessions(failingComposer{}, nil, logr.Discard())
		session := failing.Open("home")

		called := false
		err := session.Save(func(attributes.WidgetAttributes) error {
			called = true
			return nil
		})
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(called).To(BeFalse())
	})

	It("resumes a saved instance", func() {
		initial := attributes.WidgetAttributes{Height: 10, Right: media.Descriptor{ID: "2", Type: media.ImageKind, URL: "/2.jpg"}}
		s := sessions.Resume("block-1", "home", initial)

		snapshot, err := s.Snapshot()
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.ID).To(Equal("block-1"))
		Expect(snapshot.Page).To(Equal("home"))
		Expect(snapshot.Committed.Right.URL).To(Equal("/2.jpg"))
		Expect(snapshot.Preview).To(ContainSubstring(`src="/2.jpg"`))
	})
})

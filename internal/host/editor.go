package host

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kdex-tech/kdex-splitscreen/internal/attributes"
	"github.com/kdex-tech/kdex-splitscreen/internal/editor"
	kdexhttp "github.com/kdex-tech/kdex-splitscreen/internal/http"
	"github.com/kdex-tech/kdex-splitscreen/internal/markup"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
	"github.com/kdex-tech/kdex-splitscreen/internal/page"
)

type openRequest struct {
	// Attributes seed a new instance and are validated against the block schema.
	Attributes json.RawMessage `json:"attributes,omitempty"`
	// Block resumes a block already saved on the page.
	Block string `json:"block,omitempty"`
	Page  string `json:"page"`
}

type saveResponse struct {
	Block    page.Block `json:"block"`
	Page     string     `json:"page"`
	Revision int64      `json:"revision"`
}

type pageSummary struct {
	BasePath string   `json:"basePath"`
	Blocks   []string `json:"blocks"`
	Label    string   `json:"label"`
	Name     string   `json:"name"`
	Revision int64    `json:"revision"`
}

func (hh *HostHandler) pagesListHandler(w http.ResponseWriter, r *http.Request) {
	summaries := []pageSummary{}
	for _, p := range hh.Pages.List() {
		blocks := make([]string, 0, len(p.Blocks))
		for _, b := range p.Blocks {
			blocks = append(blocks, b.ID)
		}
		summaries = append(summaries, pageSummary{
			BasePath: p.BasePath,
			Blocks:   blocks,
			Label:    p.Label,
			Name:     p.Name,
			Revision: p.Revision,
		})
	}
	kdexhttp.WriteJSON(w, r, http.StatusOK, summaries)
}

func (hh *HostHandler) blockOpenHandler(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := kdexhttp.ReadJSON(r, &req); err != nil {
		hh.serveError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, ok := hh.Pages.Get(req.Page)
	if !ok {
		hh.serveError(w, r, http.StatusNotFound, "page not found")
		return
	}

	var session *editor.Session
	switch {
	case req.Block != "":
		b, ok := p.Block(req.Block)
		if !ok {
			hh.serveError(w, r, http.StatusNotFound, "block not found")
			return
		}
		attrs, err := markup.Decode(b.Markup)
		if err != nil {
			hh.serveError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		session = hh.sessions.Resume(b.ID, p.Name, attrs)

	case len(req.Attributes) > 0:
		attrs, err := attributes.Decode(req.Attributes)
		if err != nil {
			hh.serveError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		session = hh.sessions.OpenWith(p.Name, attrs)

	default:
		session = hh.sessions.Open(p.Name)
	}

	hh.writeSnapshot(w, r, http.StatusCreated, session)
}

func (hh *HostHandler) blockGetHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := hh.session(w, r)
	if !ok {
		return
	}
	hh.writeSnapshot(w, r, http.StatusOK, session)
}

func (hh *HostHandler) blockCloseHandler(w http.ResponseWriter, r *http.Request) {
	hh.sessions.Close(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// blockMediaHandler is the media picker completion. The body is the raw media result;
// an empty body, null or anything unusable clears the side.
func (hh *HostHandler) blockMediaHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := hh.session(w, r)
	if !ok {
		return
	}

	side, err := attributes.ParseSide(r.PathValue("side"))
	if err != nil {
		hh.serveError(w, r, http.StatusNotFound, err.Error())
		return
	}

	body, err := kdexhttp.ReadBody(r)
	if err != nil {
		hh.serveError(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	snapshot, err := session.Select(side, media.ParseRaw(body))
	if err != nil {
		hh.log.Error(err, "failed to render preview", "session", session.ID)
		hh.serveError(w, r, http.StatusInternalServerError, "failed to render preview")
		return
	}
	kdexhttp.WriteJSON(w, r, http.StatusOK, snapshot)
}

func (hh *HostHandler) blockSaveHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := hh.session(w, r)
	if !ok {
		return
	}

	// a save always carries a measured height
	var (
		b     page.Block
		p     page.Page
		found bool
	)
	err := session.Save(func(attrs attributes.WidgetAttributes) error {
		serialized, err := markup.Encode(attrs, hh.block.ClassName())
		if err != nil {
			return err
		}
		b = page.Block{ID: session.ID, Markup: serialized}
		p, found = hh.Pages.Update(session.Page, func(p page.Page) page.Page {
			return p.WithBlock(b)
		})
		return nil
	})
	if err != nil {
		hh.log.Error(err, "failed to save block", "session", session.ID)
		hh.serveError(w, r, http.StatusInternalServerError, "failed to save block")
		return
	}
	if !found {
		hh.serveError(w, r, http.StatusNotFound, "page not found")
		return
	}
	hh.persistPages()

	kdexhttp.WriteJSON(w, r, http.StatusOK, saveResponse{Block: b, Page: p.Name, Revision: p.Revision})
}

func (hh *HostHandler) blockRemoveHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := hh.Pages.Get(r.PathValue("page"))
	if !ok {
		hh.serveError(w, r, http.StatusNotFound, "page not found")
		return
	}
	if _, ok := p.Block(id); !ok {
		hh.serveError(w, r, http.StatusNotFound, "block not found")
		return
	}

	hh.sessions.Close(id)
	hh.Pages.Update(p.Name, func(p page.Page) page.Page {
		return p.WithoutBlock(id)
	})
	hh.persistPages()
	w.WriteHeader(http.StatusNoContent)
}

func (hh *HostHandler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	session, err := hh.sessions.Get(r.PathValue("id"))
	if errors.Is(err, editor.ErrSessionNotFound) {
		hh.serveError(w, r, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		hh.serveError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return session, true
}

func (hh *HostHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, status int, session *editor.Session) {
	snapshot, err := session.Snapshot()
	if err != nil {
		hh.log.Error(err, "failed to render preview", "session", session.ID)
		hh.serveError(w, r, http.StatusInternalServerError, "failed to render preview")
		return
	}
	kdexhttp.WriteJSON(w, r, status, snapshot)
}

func (hh *HostHandler) persistPages() {
	if hh.pagesFile == "" {
		return
	}
	if err := hh.Pages.SaveFile(hh.pagesFile); err != nil {
		hh.log.Error(err, "failed to persist pages", "path", hh.pagesFile)
	}
}

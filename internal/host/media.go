package host

import (
	"errors"
	"net/http"

	kdexhttp "github.com/kdex-tech/kdex-splitscreen/internal/http"
	"github.com/kdex-tech/kdex-splitscreen/internal/library"
	"github.com/kdex-tech/kdex-splitscreen/internal/media"
)

const (
	maxMultipartMemory = 8 << 20
	// room for the boundaries, part headers and the alt field
	multipartOverhead = 64 << 10
)

func (hh *HostHandler) mediaUploadHandler(w http.ResponseWriter, r *http.Request) {
	if limit := hh.library.MaxSize(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			hh.serveError(w, r, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		hh.serveError(w, r, http.StatusBadRequest, "expected a multipart upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		hh.serveError(w, r, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	item, err := hh.library.Add(r.Context(), header.Filename, r.FormValue("alt"), file)
	if err != nil {
		hh.log.Error(err, "failed to add media", "name", header.Filename)
		hh.serveError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	kdexhttp.WriteJSON(w, r, http.StatusCreated, item.Nested())
}

func (hh *HostHandler) mediaListHandler(w http.ResponseWriter, r *http.Request) {
	items := []*media.NestedDetailForm{}
	for _, item := range hh.library.List() {
		items = append(items, item.Nested())
	}
	kdexhttp.WriteJSON(w, r, http.StatusOK, items)
}

func (hh *HostHandler) mediaGetHandler(w http.ResponseWriter, r *http.Request) {
	item, ok := hh.mediaItem(w, r)
	if !ok {
		return
	}
	kdexhttp.WriteJSON(w, r, http.StatusOK, item.Nested())
}

func (hh *HostHandler) mediaPickHandler(w http.ResponseWriter, r *http.Request) {
	item, ok := hh.mediaItem(w, r)
	if !ok {
		return
	}
	kdexhttp.WriteJSON(w, r, http.StatusOK, item.Flat())
}

func (hh *HostHandler) mediaFileHandler(w http.ResponseWriter, r *http.Request) {
	item, err := hh.library.Lookup(r.PathValue("file"))
	if err != nil {
		hh.serveError(w, r, http.StatusNotFound, "not found")
		return
	}

	etag := `"` + string(item.ID) + `"`
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", item.MIME)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(item.Data)
}

func (hh *HostHandler) mediaItem(w http.ResponseWriter, r *http.Request) (*library.Item, bool) {
	item, err := hh.library.Get(media.ID(r.PathValue("id")))
	if errors.Is(err, library.ErrNotFound) {
		hh.serveError(w, r, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		hh.serveError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return item, true
}

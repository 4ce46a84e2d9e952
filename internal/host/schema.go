package host

import (
	"net/http"

	kdexhttp "github.com/kdex-tech/kdex-splitscreen/internal/http"
)

// schemaHandler serves the registered block definition, attribute schema included.
func (hh *HostHandler) schemaHandler(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("block"); name != "" {
		def, err := hh.blocks.Get(name)
		if err != nil {
			hh.serveError(w, r, http.StatusNotFound, err.Error())
			return
		}
		kdexhttp.WriteJSON(w, r, http.StatusOK, def)
		return
	}

	kdexhttp.WriteJSON(w, r, http.StatusOK, hh.block)
}

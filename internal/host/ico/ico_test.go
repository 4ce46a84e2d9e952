package ico

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Contains(t, string(New("kdex").SVG()), ">K</text>")
	assert.Contains(t, string(New("<b>").SVG()), ">&lt;</text>")
	assert.Contains(t, string(New("").SVG()), "></text>")
}

func TestFaviconHandler(t *testing.T) {
	w := httptest.NewRecorder()
	New("kdex").FaviconHandler(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
}

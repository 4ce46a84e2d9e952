package mime

import (
	"bufio"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLimit is how many leading bytes are inspected.
const SniffLimit = 3072

// Detect sniffs the content type of r. The returned reader yields the whole stream,
// sniffed bytes included.
func Detect(r io.Reader) (*mimetype.MIME, io.Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < SniffLimit {
		br = bufio.NewReaderSize(r, SniffLimit)
	}
	peeked, err := br.Peek(SniffLimit)
	if err != nil && err != io.EOF {
		return nil, nil, err
	}

	return mimetype.Detect(peeked), br, nil
}

// Essence is the type without parameters, e.g. "text/plain".
func Essence(m *mimetype.MIME) string {
	if m == nil {
		return ""
	}
	essence, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(essence)
}

// IsImage reports whether m, or one of its parents, is an image type.
func IsImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

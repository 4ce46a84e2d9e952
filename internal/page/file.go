package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"
)

type pagesFile struct {
	Pages []Page `yaml:"pages"`
}

// Read decodes a pages document.
func Read(r io.Reader) ([]Page, error) {
	var doc pagesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode pages: %w", err)
	}
	for i, p := range doc.Pages {
		if p.Name == "" || p.BasePath == "" {
			return nil, fmt.Errorf("page %d needs a name and a basePath", i)
		}
	}
	return doc.Pages, nil
}

// Write encodes pages as a pages document.
func Write(w io.Writer, pages []Page) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(pagesFile{Pages: pages}); err != nil {
		return fmt.Errorf("failed to encode pages: %w", err)
	}
	return enc.Close()
}

// LoadFile fills the store from path.
func (s *PageStore) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pages, err := Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s.mu.Lock()
	for _, p := range pages {
		s.pages[p.Name] = p
	}
	s.revision++
	s.mu.Unlock()

	s.log.V(1).Info("load", "path", path, "count", len(pages))
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return nil
}

// SaveFile writes the store to path, replacing it atomically.
func (s *PageStore) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := Write(&buf, s.List()); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	_, err = tmp.Write(buf.Bytes())
	err = multierr.Append(err, tmp.Close())
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		if er := os.Remove(tmp.Name()); er != nil && !errors.Is(er, fs.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("unable to remove %s: %w", tmp.Name(), er))
		}
		return err
	}
	return nil
}

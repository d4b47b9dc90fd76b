// Package file persists the shared document as an indented JSON file.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/pkg/errors"
)

type Store struct {
	path string
}

// New returns a store backed by path. The file and its directory are created
// with an empty document on first read when missing.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "stat document file")
	}
	return s.writeFile(domain.NewDocument())
}

func (s *Store) Read(ctx context.Context) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ensure(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "read document file")
	}

	doc := new(domain.Document)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, errors.Wrapf(err, "decode document file %s", s.path)
	}
	doc.Normalize()
	return doc, nil
}

func (s *Store) Write(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeFile(doc)
}

// writeFile replaces the document through a temp file so readers never see a partial write
func (s *Store) writeFile(doc *domain.Document) error {
	doc.Normalize()
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create document directory")
	}

	tmp, err := os.CreateTemp(dir, ".document-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp document")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp document")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp document")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace document file")
}

// Package filestore keeps records as JSON files under <dir>/<collection>/<id>.json.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/NordCoder/uptimed/internal/domain/record"
	"github.com/NordCoder/uptimed/internal/keylock"
)

const ext = ".json"

var ErrInvalidKey = errors.New("invalid record key")

var _ record.Store = (*Store)(nil)

type Store struct {
	dir   string
	locks keylock.Map
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func validKey(part string) error {
	if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, part)
	}
	return nil
}

func (s *Store) path(collection, id string) (string, error) {
	if err := validKey(collection); err != nil {
		return "", err
	}
	if err := validKey(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, collection, id+ext), nil
}

func (s *Store) List(_ context.Context, collection string) ([]string, error) {
	if err := validKey(collection); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	return out, nil
}

func (s *Store) Read(_ context.Context, collection, id string) ([]byte, error) {
	p, err := s.path(collection, id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, record.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return b, nil
}

func (s *Store) Create(_ context.Context, collection, id string, data []byte) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection + "/" + id)
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return record.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	return f.Close()
}

// Update replaces an existing record. The new content is written to a temp
// file and renamed over the old one so readers never see a partial record.
func (s *Store) Update(_ context.Context, collection, id string, data []byte) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection + "/" + id)
	defer unlock()

	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return record.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("stat %s/%s: %w", collection, id, err)
	}
	return s.replace(p, collection, id, data)
}

// Modify reads, transforms and replaces a record under its key lock.
func (s *Store) Modify(_ context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection + "/" + id)
	defer unlock()

	cur, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return record.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return s.replace(p, collection, id, next)
}

func (s *Store) replace(p, collection, id string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), id+".*.tmp")
	if err != nil {
		return fmt.Errorf("temp %s/%s: %w", collection, id, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s/%s: %w", collection, id, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	p, err := s.path(collection, id)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(collection + "/" + id)
	defer unlock()

	if err := os.Remove(p); errors.Is(err, fs.ErrNotExist) {
		return record.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

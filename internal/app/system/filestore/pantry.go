package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/waffle/pantry/storage"
)

// Pantry stores objects in a WAFFLE storage backend.
type Pantry struct {
	store storage.Store
}

// NewPantry wraps an already configured backend.
func NewPantry(s storage.Store) *Pantry {
	return &Pantry{store: s}
}

// NewLocal stores objects as files below root, creating it if needed.
func NewLocal(root string) (*Pantry, error) {
	s, err := storage.NewLocal(storage.LocalConfig{BasePath: root})
	if err != nil {
		return nil, fmt.Errorf("filestore: open local storage: %w", err)
	}
	return NewPantry(s), nil
}

// Backend names the underlying storage backend.
func (p *Pantry) Backend() string {
	return p.store.Backend()
}

// Put writes r under key. When size is known and the reader comes up
// short or long, the object is removed and an error returned.
func (p *Pantry) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	cr := &countingReader{r: r}
	if err := p.store.Put(ctx, clean, cr, &storage.PutOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("filestore: put %s: %w", key, translate(err))
	}
	if size >= 0 && cr.n != size {
		_ = p.store.Delete(context.WithoutCancel(ctx), clean)
		return fmt.Errorf("filestore: put %s: wrote %d bytes, expected %d", key, cr.n, size)
	}
	return nil
}

func (p *Pantry) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := p.store.Get(ctx, clean)
	if err != nil {
		return nil, translate(err)
	}
	return rc, nil
}

func (p *Pantry) Exists(ctx context.Context, key string) (bool, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	ok, err := p.store.Exists(ctx, clean)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

func (p *Pantry) Delete(ctx context.Context, key string) error {
	clean, err := CleanKey(key)
	if err != nil {
		return err
	}
	err = p.store.Delete(ctx, clean)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return translate(err)
}

func translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotExist
	case errors.Is(err, storage.ErrInvalidPath):
		return ErrInvalidKey
	}
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}

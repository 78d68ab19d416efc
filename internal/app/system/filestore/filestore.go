// Package filestore keeps uploaded document bytes under relative keys
// such as "code-of-conduct/v3/code-of-conduct-v3.docx".
//
// Keys always use forward slashes. Backends reject keys that are empty,
// absolute, or that climb out of the store with "..".
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	// ErrNotExist is returned by Open when no object is stored under a key.
	ErrNotExist = errors.New("filestore: object does not exist")

	// ErrInvalidKey is returned for keys that are empty or escape the store.
	ErrInvalidKey = errors.New("filestore: invalid key")
)

// Store is a flat key/blob store.
type Store interface {
	// Put writes r under key, replacing any existing object. A reader
	// never observes a partially written object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the object's bytes or ErrNotExist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CleanKey validates key and returns it in canonical form.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

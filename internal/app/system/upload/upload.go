// Package upload validates incoming document files before any I/O.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dalemusser/flowhub/internal/domain"
)

const msgRequired = "File is required"

// File is an uploaded file as received from the caller.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// FromBytes wraps an in-memory file.
func FromBytes(name string, data []byte) *File {
	return &File{Name: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

// Ext returns the lowercased extension of the file name, dot included.
func (f *File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Rules describes what a document slot accepts.
type Rules struct {
	MaxBytes   int64
	Extensions []string // lowercase, dot included
	TypeLabel  string   // used in the wrong-type message, e.g. "PDF"
}

// Validate checks presence, size and extension, returning a
// *domain.ValidationError for the first rule that fails.
func (r Rules) Validate(f *File) error {
	if f == nil || f.Content == nil {
		return &domain.ValidationError{Msg: msgRequired}
	}

	err := validation.Validate(f.Size,
		validation.Required.Error(msgRequired),
		validation.Max(r.MaxBytes).Error(r.tooLargeMsg()),
	)
	if err != nil {
		return &domain.ValidationError{Msg: err.Error()}
	}

	allowed := make([]interface{}, len(r.Extensions))
	for i, ext := range r.Extensions {
		allowed[i] = strings.ToLower(ext)
	}
	wrongType := fmt.Sprintf("Only %s files are allowed", r.TypeLabel)
	err = validation.Validate(f.Ext(),
		validation.Required.Error(wrongType),
		validation.In(allowed...).Error(wrongType),
	)
	if err != nil {
		return &domain.ValidationError{Msg: err.Error()}
	}
	return nil
}

// ReadAll validates f and reads its content. Content longer than the
// declared size limit is rejected even when Size under-reports it.
func (r Rules) ReadAll(f *File) ([]byte, error) {
	if err := r.Validate(f); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f.Content, r.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > r.MaxBytes {
		return nil, r.tooLarge()
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Msg: msgRequired}
	}
	return data, nil
}

func (r Rules) tooLarge() error {
	return &domain.ValidationError{Msg: r.tooLargeMsg()}
}

func (r Rules) tooLargeMsg() string {
	return fmt.Sprintf("File size exceeds maximum allowed size of %dMB", r.MaxBytes/(1024*1024))
}

// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRecord is returned by repositories when a lookup matches nothing.
	ErrNoRecord = errors.New("no matching record")

	// ErrVersionConflict is returned when a document version is already taken.
	ErrVersionConflict = errors.New("document version already exists")
)

// ValidationError reports a user-correctable problem with an upload.
// It is always raised before any I/O happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundCode distinguishes a missing record from a record whose
// backing file is gone.
type NotFoundCode string

const (
	NotFoundRecord NotFoundCode = "record"
	NotFoundFile   NotFoundCode = "file_missing"
)

// NotFoundError reports an unknown id, or a stored file that is missing.
type NotFoundError struct {
	Resource string
	Code     NotFoundCode
	Key      string // storage key, set for NotFoundFile
}

func (e *NotFoundError) Error() string {
	if e.Code == NotFoundFile {
		return fmt.Sprintf("%s file not found in storage", e.Resource)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// FileMissing reports whether the record exists but its file does not.
func (e *NotFoundError) FileMissing() bool { return e.Code == NotFoundFile }

// ConversionError reports that an uploaded document could not be
// turned into HTML. Retrying with the same input will not help.
type ConversionError struct {
	Msg string
}

func (e *ConversionError) Error() string { return e.Msg }

// PersistenceError wraps a failure of the record store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConversion reports whether err is a *ConversionError.
func IsConversion(err error) bool {
	var c *ConversionError
	return errors.As(err, &c)
}

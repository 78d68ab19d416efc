// Package memberdocs stores each member's signed Code of Conduct PDF.
package memberdocs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/filestore"
	"github.com/dalemusser/flowhub/internal/app/system/lock"
	"github.com/dalemusser/flowhub/internal/app/system/metrics"
	"github.com/dalemusser/flowhub/internal/app/system/upload"
	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultMaxBytes caps a signed PDF.
const DefaultMaxBytes = 10 * 1024 * 1024

const resource = "member"

// Repository is the subset of the member store this package needs.
type Repository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error)
	SetConductDocument(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error
	ClearConductDocument(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	Members  Repository
	Files    filestore.Store
	Locker   lock.Locker
	MaxBytes int64
	Log      *zap.Logger
	Now      func() time.Time
}

func New(members Repository, files filestore.Store, logger *zap.Logger) *Service {
	return &Service{
		Members:  members,
		Files:    files,
		Locker:   lock.NewLocal(),
		MaxBytes: DefaultMaxBytes,
		Log:      logger,
		Now:      time.Now,
	}
}

// LockKey serializes writes to one member's document.
func LockKey(memberID primitive.ObjectID) string {
	return "code-of-conduct:member:" + memberID.Hex()
}

func (s *Service) lock(ctx context.Context, memberID primitive.ObjectID) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	unlock, err := s.Locker.Lock(ctx, LockKey(memberID))
	if err != nil {
		return nil, fmt.Errorf("acquire member lock: %w", err)
	}
	return unlock, nil
}

// Status summarizes a member's signed document.
type Status struct {
	HasUploaded bool       `json:"has_uploaded"`
	FileName    string     `json:"file_name,omitempty"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty"`
}

// StorageKey is where a member's PDF uploaded at t lives.
func StorageKey(memberID primitive.ObjectID, t time.Time) string {
	return fmt.Sprintf("code-of-conduct/members/%s/CodeOfConduct_%s.pdf",
		memberID.Hex(), t.UTC().Format("20060102150405"))
}

func (s *Service) rules() upload.Rules {
	max := s.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	return upload.Rules{MaxBytes: max, Extensions: []string{".pdf"}, TypeLabel: "PDF"}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Upload stores f as memberID's signed document and returns its storage
// key. A previous document is removed only after the member record
// points at the new one.
func (s *Service) Upload(ctx context.Context, f *upload.File, memberID primitive.ObjectID) (string, error) {
	key, err := s.upload(ctx, f, memberID)
	switch {
	case err == nil:
		metrics.Uploads.WithLabelValues(metrics.KindMemberDocument, metrics.ResultSuccess).Inc()
	case domain.IsValidation(err):
		metrics.Uploads.WithLabelValues(metrics.KindMemberDocument, metrics.ResultRejected).Inc()
	default:
		metrics.Uploads.WithLabelValues(metrics.KindMemberDocument, metrics.ResultFailed).Inc()
	}
	return key, err
}

func (s *Service) upload(ctx context.Context, f *upload.File, memberID primitive.ObjectID) (string, error) {
	data, err := s.rules().ReadAll(f)
	if err != nil {
		return "", err
	}
	size := int64(len(data))

	unlock, err := s.lock(ctx, memberID)
	if err != nil {
		return "", err
	}
	defer unlock()

	m, err := s.member(ctx, memberID)
	if err != nil {
		return "", err
	}
	var oldKey string
	if m.HasCodeOfConduct() {
		oldKey = *m.CodeOfConductPDFPath
	}

	at := s.now()
	key := StorageKey(memberID, at)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.Files.Put(context.WithoutCancel(ctx), key, bytes.NewReader(data), size, models.MemberDocumentContentType); err != nil {
		return "", s.persistenceErr("store file", memberID, size, err)
	}
	if err := ctx.Err(); err != nil {
		s.removeFile(ctx, key, memberID, "upload canceled")
		return "", err
	}

	if err := s.Members.SetConductDocument(ctx, memberID, key, at); err != nil {
		s.removeFile(ctx, key, memberID, "member update failed")
		if errors.Is(err, domain.ErrNoRecord) {
			return "", &domain.NotFoundError{Resource: resource, Code: domain.NotFoundRecord}
		}
		return "", s.persistenceErr("update member", memberID, size, err)
	}

	if oldKey != "" && oldKey != key {
		s.removeFile(ctx, oldKey, memberID, "replaced")
	}

	s.Log.Info("member code of conduct uploaded",
		zap.String("member", memberID.Hex()),
		zap.String("key", key),
		zap.Int64("bytes", size))
	return key, nil
}

// HasUploaded reports whether memberID has a document on file. Unknown
// members have none.
func (s *Service) HasUploaded(ctx context.Context, memberID primitive.ObjectID) (bool, error) {
	m, err := s.Members.GetByID(ctx, memberID)
	if errors.Is(err, domain.ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		return false, &domain.PersistenceError{Op: "get member", Err: err}
	}
	return m.HasCodeOfConduct(), nil
}

// GetFile opens memberID's document. found is false when the member is
// unknown, has nothing on file, or the file is gone from storage.
func (s *Service) GetFile(ctx context.Context, memberID primitive.ObjectID) (io.ReadCloser, bool, error) {
	m, err := s.Members.GetByID(ctx, memberID)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.PersistenceError{Op: "get member", Err: err}
	}
	if !m.HasCodeOfConduct() {
		return nil, false, nil
	}

	key := *m.CodeOfConductPDFPath
	rc, err := s.Files.Open(ctx, key)
	if errors.Is(err, filestore.ErrNotExist) || errors.Is(err, filestore.ErrInvalidKey) {
		s.Log.Warn("member code of conduct missing from storage",
			zap.String("member", memberID.Hex()),
			zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.PersistenceError{Op: "open member file", Err: err}
	}
	return rc, true, nil
}

// Delete removes memberID's document and clears the record. It reports
// false when there was nothing to delete.
func (s *Service) Delete(ctx context.Context, memberID primitive.ObjectID) (bool, error) {
	unlock, err := s.lock(ctx, memberID)
	if err != nil {
		return false, err
	}
	defer unlock()

	m, err := s.Members.GetByID(ctx, memberID)
	if errors.Is(err, domain.ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		return false, &domain.PersistenceError{Op: "get member", Err: err}
	}
	if !m.HasCodeOfConduct() {
		return false, nil
	}

	key := *m.CodeOfConductPDFPath
	if err := s.Files.Delete(ctx, key); err != nil && !errors.Is(err, filestore.ErrNotExist) {
		return false, s.persistenceErr("delete file", memberID, 0, err)
	}
	if err := s.Members.ClearConductDocument(ctx, memberID); err != nil {
		if errors.Is(err, domain.ErrNoRecord) {
			return false, nil
		}
		return false, s.persistenceErr("clear member document", memberID, 0, err)
	}

	s.Log.Info("member code of conduct deleted",
		zap.String("member", memberID.Hex()),
		zap.String("key", key))
	return true, nil
}

// GetFileName returns the base name of memberID's stored document.
func (s *Service) GetFileName(ctx context.Context, memberID primitive.ObjectID) (string, bool, error) {
	m, err := s.Members.GetByID(ctx, memberID)
	if errors.Is(err, domain.ErrNoRecord) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &domain.PersistenceError{Op: "get member", Err: err}
	}
	if !m.HasCodeOfConduct() {
		return "", false, nil
	}
	return path.Base(*m.CodeOfConductPDFPath), true, nil
}

// Status reports what memberID has on file.
func (s *Service) Status(ctx context.Context, memberID primitive.ObjectID) (Status, error) {
	m, err := s.member(ctx, memberID)
	if err != nil {
		return Status{}, err
	}
	if !m.HasCodeOfConduct() {
		return Status{}, nil
	}
	return Status{
		HasUploaded: true,
		FileName:    path.Base(*m.CodeOfConductPDFPath),
		UploadedAt:  m.CodeOfConductUploadedAt,
	}, nil
}

func (s *Service) member(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	m, err := s.Members.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return models.Member{}, &domain.NotFoundError{Resource: resource, Code: domain.NotFoundRecord}
	}
	if err != nil {
		return models.Member{}, &domain.PersistenceError{Op: "get member", Err: err}
	}
	return m, nil
}

// removeFile is best effort; failures are logged and counted only.
func (s *Service) removeFile(ctx context.Context, key string, memberID primitive.ObjectID, reason string) bool {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.Files.Delete(cctx, key); err != nil {
		metrics.CleanupFailures.WithLabelValues(metrics.KindMemberDocument).Inc()
		s.Log.Warn("failed to remove member code of conduct file",
			zap.String("member", memberID.Hex()),
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) persistenceErr(op string, memberID primitive.ObjectID, size int64, err error) error {
	s.Log.Error("member code of conduct operation failed",
		zap.String("op", op),
		zap.String("member", memberID.Hex()),
		zap.Int64("bytes", size),
		zap.Error(err))
	return &domain.PersistenceError{Op: op, Err: err}
}

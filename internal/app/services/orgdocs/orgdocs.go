// Package orgdocs manages the versioned, organization-wide Code of
// Conduct: upload with conversion, version history, activation and
// retrieval of the original DOCX.
//
// Exactly one version is active once any has been uploaded. Uploads are
// serialized through a Locker so two concurrent uploads cannot claim the
// same version number.
package orgdocs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/flowhub/internal/app/conduct/convert"
	"github.com/dalemusser/flowhub/internal/app/system/filestore"
	"github.com/dalemusser/flowhub/internal/app/system/lock"
	"github.com/dalemusser/flowhub/internal/app/system/metrics"
	"github.com/dalemusser/flowhub/internal/app/system/upload"
	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// DefaultMaxBytes caps an uploaded DOCX.
	DefaultMaxBytes = 5 * 1024 * 1024

	// UploadLockKey serializes uploads across the deployment.
	UploadLockKey = "code-of-conduct:upload"

	resource = "code of conduct document"
)

// Repository persists document metadata. Implementations must keep at
// most one document active.
type Repository interface {
	MaxVersion(ctx context.Context) (int, error)
	InsertActive(ctx context.Context, doc models.CodeOfConductDocument) (models.CodeOfConductDocument, error)
	Activate(ctx context.Context, id primitive.ObjectID) error
	GetActive(ctx context.Context) (models.CodeOfConductDocument, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.CodeOfConductDocument, error)
	ListByVersionDesc(ctx context.Context) ([]models.CodeOfConductDocument, error)
}

// Converter turns DOCX bytes into HTML.
type Converter interface {
	Convert(ctx context.Context, src io.Reader) convert.Result
}

// MemberLookup resolves uploader names.
type MemberLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error)
}

type Service struct {
	Repo      Repository
	Files     filestore.Store
	Converter Converter
	Locker    lock.Locker
	Members   MemberLookup
	MaxBytes  int64
	Log       *zap.Logger
	Now       func() time.Time
}

// New wires a Service with default limits and an in-process lock.
func New(repo Repository, files filestore.Store, conv Converter, members MemberLookup, logger *zap.Logger) *Service {
	return &Service{
		Repo:      repo,
		Files:     files,
		Converter: conv,
		Locker:    lock.NewLocal(),
		Members:   members,
		MaxBytes:  DefaultMaxBytes,
		Log:       logger,
		Now:       time.Now,
	}
}

// StorageKey is where version v's original DOCX lives.
func StorageKey(version int) string {
	return fmt.Sprintf("code-of-conduct/v%d/%s", version, FileName(version))
}

// FileName is the stored name of version v.
func FileName(version int) string {
	return fmt.Sprintf("code-of-conduct-v%d.docx", version)
}

func (s *Service) rules() upload.Rules {
	max := s.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	return upload.Rules{MaxBytes: max, Extensions: []string{".docx"}, TypeLabel: ".docx"}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Upload validates, converts and stores f as the new active version.
// Conversion runs before anything is written, so a document that cannot
// be converted leaves neither a file nor a record behind.
func (s *Service) Upload(ctx context.Context, f *upload.File, uploaderID primitive.ObjectID) (models.CodeOfConductDocument, error) {
	data, err := s.rules().ReadAll(f)
	if err != nil {
		metrics.Uploads.WithLabelValues(metrics.KindOrgDocument, metrics.ResultRejected).Inc()
		return models.CodeOfConductDocument{}, err
	}

	unlock, err := s.Locker.Lock(ctx, UploadLockKey)
	if err != nil {
		return models.CodeOfConductDocument{}, fmt.Errorf("acquire upload lock: %w", err)
	}
	defer unlock()

	doc, err := s.upload(ctx, data, uploaderID)
	switch {
	case err == nil:
		metrics.Uploads.WithLabelValues(metrics.KindOrgDocument, metrics.ResultSuccess).Inc()
	case domain.IsConversion(err):
		metrics.Uploads.WithLabelValues(metrics.KindOrgDocument, metrics.ResultRejected).Inc()
	default:
		metrics.Uploads.WithLabelValues(metrics.KindOrgDocument, metrics.ResultFailed).Inc()
	}
	return doc, err
}

func (s *Service) upload(ctx context.Context, data []byte, uploaderID primitive.ObjectID) (models.CodeOfConductDocument, error) {
	size := int64(len(data))

	res := s.Converter.Convert(ctx, bytes.NewReader(data))
	if !res.Success && ctx.Err() != nil {
		return models.CodeOfConductDocument{}, ctx.Err()
	}
	if !res.Success {
		s.Log.Error("code of conduct conversion failed",
			zap.String("op", "upload"),
			zap.String("uploader", uploaderID.Hex()),
			zap.Int64("bytes", size),
			zap.String("reason", res.ErrorMessage))
		return models.CodeOfConductDocument{}, &domain.ConversionError{Msg: res.ErrorMessage}
	}

	max, err := s.Repo.MaxVersion(ctx)
	if err != nil {
		return models.CodeOfConductDocument{}, s.persistenceErr("read max version", 0, size, err)
	}
	version := max + 1
	key := StorageKey(version)

	if err := ctx.Err(); err != nil {
		return models.CodeOfConductDocument{}, err
	}
	// The write itself is not interrupted, so it never leaves a partial file.
	if err := s.Files.Put(context.WithoutCancel(ctx), key, bytes.NewReader(data), size, models.CodeOfConductContentType); err != nil {
		return models.CodeOfConductDocument{}, s.persistenceErr("store file", version, size, err)
	}
	if err := ctx.Err(); err != nil {
		s.removeFile(ctx, key, "upload canceled")
		return models.CodeOfConductDocument{}, err
	}

	doc := models.CodeOfConductDocument{
		FileName:         FileName(version),
		OriginalFilePath: key,
		HTMLContent:      res.HTMLContent,
		UploadedBy:       uploaderID,
		UploadedAt:       s.now(),
		Version:          version,
		IsActive:         true,
		FileSizeBytes:    size,
		WordCount:        res.WordCount,
		Title:            res.Metadata[convert.MetaTitle],
		Author:           res.Metadata[convert.MetaAuthor],
		LastModified:     res.Metadata[convert.MetaLastModified],
	}

	saved, err := s.Repo.InsertActive(ctx, doc)
	if err != nil {
		s.removeFile(ctx, key, "metadata commit failed")
		return models.CodeOfConductDocument{}, s.persistenceErr("save document", version, size, err)
	}

	s.Log.Info("code of conduct uploaded",
		zap.Int("version", saved.Version),
		zap.String("id", saved.ID.Hex()),
		zap.String("uploader", uploaderID.Hex()),
		zap.Int("word_count", saved.WordCount),
		zap.Int64("bytes", size))
	return saved, nil
}

// GetActive returns the active document; found is false before the first
// upload.
func (s *Service) GetActive(ctx context.Context) (models.CodeOfConductDocument, bool, error) {
	doc, err := s.Repo.GetActive(ctx)
	if errors.Is(err, domain.ErrNoRecord) {
		return models.CodeOfConductDocument{}, false, nil
	}
	if err != nil {
		return models.CodeOfConductDocument{}, false, &domain.PersistenceError{Op: "get active document", Err: err}
	}
	return doc, true, nil
}

// ListVersions returns every version, newest first.
func (s *Service) ListVersions(ctx context.Context) ([]models.CodeOfConductDocument, error) {
	docs, err := s.Repo.ListByVersionDesc(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list versions", Err: err}
	}
	if docs == nil {
		docs = []models.CodeOfConductDocument{}
	}
	return docs, nil
}

// GetFileForDownload opens the original DOCX of document id. The caller
// closes the reader.
func (s *Service) GetFileForDownload(ctx context.Context, id primitive.ObjectID) (io.ReadCloser, models.CodeOfConductDocument, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return nil, models.CodeOfConductDocument{}, &domain.NotFoundError{Resource: resource, Code: domain.NotFoundRecord}
	}
	if err != nil {
		return nil, models.CodeOfConductDocument{}, &domain.PersistenceError{Op: "get document", Err: err}
	}

	rc, err := s.Files.Open(ctx, doc.OriginalFilePath)
	if errors.Is(err, filestore.ErrNotExist) || errors.Is(err, filestore.ErrInvalidKey) {
		s.Log.Error("code of conduct file missing from storage",
			zap.String("id", doc.ID.Hex()),
			zap.Int("version", doc.Version),
			zap.String("key", doc.OriginalFilePath))
		return nil, doc, &domain.NotFoundError{Resource: resource, Code: domain.NotFoundFile, Key: doc.OriginalFilePath}
	}
	if err != nil {
		return nil, doc, &domain.PersistenceError{Op: "open document file", Err: err}
	}
	return rc, doc, nil
}

// SetActiveVersion makes id the active document. It reports false when
// id is unknown.
func (s *Service) SetActiveVersion(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.Repo.Activate(ctx, id)
	if errors.Is(err, domain.ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		s.Log.Error("activate code of conduct version failed",
			zap.String("id", id.Hex()),
			zap.Error(err))
		return false, &domain.PersistenceError{Op: "activate version", Err: err}
	}
	s.Log.Info("code of conduct version activated", zap.String("id", id.Hex()))
	return true, nil
}

// removeFile deletes key on a failure path. Errors are logged and counted
// but never returned; the caller's primary error wins.
func (s *Service) removeFile(ctx context.Context, key, reason string) bool {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.Files.Delete(cctx, key); err != nil {
		metrics.CleanupFailures.WithLabelValues(metrics.KindOrgDocument).Inc()
		s.Log.Warn("failed to remove code of conduct file",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) persistenceErr(op string, version int, size int64, err error) error {
	s.Log.Error("code of conduct upload failed",
		zap.String("op", op),
		zap.Int("version", version),
		zap.Int64("bytes", size),
		zap.Error(err))
	return &domain.PersistenceError{Op: op, Err: err}
}

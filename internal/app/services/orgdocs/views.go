package orgdocs

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/flowhub/internal/domain"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// VersionRow is one line of the version history.
type VersionRow struct {
	ID           primitive.ObjectID `json:"id"`
	Version      int                `json:"version"`
	FileName     string             `json:"file_name"`
	IsActive     bool               `json:"is_active"`
	UploadedAt   time.Time          `json:"uploaded_at"`
	UploadedBy   string             `json:"uploaded_by"`
	WordCount    int                `json:"word_count"`
	SizeBytes    int64              `json:"file_size_bytes"`
	Title        string             `json:"title,omitempty"`
	LastModified string             `json:"last_modified,omitempty"`
}

// VersionsView is the version history with the active id called out.
type VersionsView struct {
	Versions []VersionRow        `json:"versions"`
	ActiveID *primitive.ObjectID `json:"active_id,omitempty"`
}

// ActiveView is the active document as shown to members.
type ActiveView struct {
	Found      bool      `json:"found"`
	ID         string    `json:"id,omitempty"`
	Version    int       `json:"version,omitempty"`
	HTML       string    `json:"html"`
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
	WordCount  int       `json:"word_count,omitempty"`
	Title      string    `json:"title,omitempty"`
}

// NoDocumentHTML is served while nothing has been uploaded.
const NoDocumentHTML = "<p>No Code of Conduct has been uploaded yet.</p>"

// Versions returns the history with uploader names resolved.
func (s *Service) Versions(ctx context.Context) (VersionsView, error) {
	docs, err := s.ListVersions(ctx)
	if err != nil {
		return VersionsView{}, err
	}
	names := s.uploaderNames(ctx, docs)

	view := VersionsView{Versions: make([]VersionRow, 0, len(docs))}
	for _, d := range docs {
		if d.IsActive {
			id := d.ID
			view.ActiveID = &id
		}
		view.Versions = append(view.Versions, VersionRow{
			ID:           d.ID,
			Version:      d.Version,
			FileName:     d.FileName,
			IsActive:     d.IsActive,
			UploadedAt:   d.UploadedAt,
			UploadedBy:   names[d.UploadedBy],
			WordCount:    d.WordCount,
			SizeBytes:    d.FileSizeBytes,
			Title:        d.Title,
			LastModified: d.LastModified,
		})
	}
	return view, nil
}

// ActiveView returns the active document, or the placeholder HTML when
// there is none.
func (s *Service) ActiveView(ctx context.Context) (ActiveView, error) {
	doc, found, err := s.GetActive(ctx)
	if err != nil {
		return ActiveView{}, err
	}
	if !found {
		return ActiveView{HTML: NoDocumentHTML}, nil
	}
	names := s.uploaderNames(ctx, []models.CodeOfConductDocument{doc})
	return ActiveView{
		Found:      true,
		ID:         doc.ID.Hex(),
		Version:    doc.Version,
		HTML:       doc.HTMLContent,
		UploadedAt: doc.UploadedAt,
		UploadedBy: names[doc.UploadedBy],
		WordCount:  doc.WordCount,
		Title:      doc.Title,
	}, nil
}

// uploaderNames looks up each distinct uploader once. Unknown or
// unreadable members are left blank.
func (s *Service) uploaderNames(ctx context.Context, docs []models.CodeOfConductDocument) map[primitive.ObjectID]string {
	names := make(map[primitive.ObjectID]string)
	if s.Members == nil {
		return names
	}
	for _, d := range docs {
		if _, seen := names[d.UploadedBy]; seen {
			continue
		}
		m, err := s.Members.GetByID(ctx, d.UploadedBy)
		switch {
		case err == nil:
			names[d.UploadedBy] = m.FullName()
		case errors.Is(err, domain.ErrNoRecord):
			names[d.UploadedBy] = ""
		default:
			names[d.UploadedBy] = ""
			s.Log.Warn("uploader lookup failed",
				zap.String("member", d.UploadedBy.Hex()),
				zap.Error(err))
		}
	}
	return names
}

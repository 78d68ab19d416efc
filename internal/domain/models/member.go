// internal/domain/models/member.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is an accepted member of the Flow ministry.
//
// The three CodeOfConduct* fields move together: a signed PDF is either
// stored (path, flag and timestamp all set) or absent (all cleared).
type Member struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Email     string             `bson:"email" json:"email"`
	EmailCI   string             `bson:"email_ci" json:"-"` // folded Email, unique
	Role      string             `bson:"role" json:"role"`     // "admin" or "member"
	Status    string             `bson:"status" json:"status"` // "active" or "disabled"

	CodeOfConductPDFPath     *string    `bson:"code_of_conduct_pdf_path,omitempty" json:"code_of_conduct_pdf_path,omitempty"`
	HasUploadedCodeOfConduct bool       `bson:"has_uploaded_code_of_conduct" json:"has_uploaded_code_of_conduct"`
	CodeOfConductUploadedAt  *time.Time `bson:"code_of_conduct_uploaded_at,omitempty" json:"code_of_conduct_uploaded_at,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// FullName returns "First Last", trimmed.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// HasCodeOfConduct reports whether a signed PDF is on file.
func (m *Member) HasCodeOfConduct() bool {
	return m.CodeOfConductPDFPath != nil && *m.CodeOfConductPDFPath != ""
}

// MemberDocumentContentType is the MIME type of signed member documents.
const MemberDocumentContentType = "application/pdf"

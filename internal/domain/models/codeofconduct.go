// internal/domain/models/codeofconduct.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CodeOfConductDocument is one uploaded version of the ministry-wide
// Code of Conduct. The original DOCX lives in file storage under
// OriginalFilePath; HTMLContent is derived from it at upload time and
// never edited afterwards.
//
// At most one document has IsActive set. Only IsActive changes after
// insert.
type CodeOfConductDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileName         string             `bson:"file_name" json:"file_name"`
	OriginalFilePath string             `bson:"original_file_path" json:"original_file_path"` // storage key
	HTMLContent      string             `bson:"html_content" json:"html_content"`

	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploaded_at"`

	Version  int  `bson:"version" json:"version"`
	IsActive bool `bson:"is_active" json:"is_active"`

	FileSizeBytes int64 `bson:"file_size_bytes" json:"file_size_bytes"`
	WordCount     int   `bson:"word_count" json:"word_count"`

	// Copied from the package core properties.
	Title        string `bson:"title,omitempty" json:"title,omitempty"`
	Author       string `bson:"author,omitempty" json:"author,omitempty"`
	LastModified string `bson:"last_modified,omitempty" json:"last_modified,omitempty"`
}

// CodeOfConductContentType is the MIME type of stored org documents.
const CodeOfConductContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

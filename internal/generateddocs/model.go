package generateddocs

import (
	"time"

	"petition-backend/petition/model"
)

// ContentType is the media type of every generated petition.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Parameters is the request context stored with a generated document.
type Parameters struct {
	Text    string `json:"params"`
	DocType string `json:"docType"`
}

// GeneratedDocument is a petition assembled for a case and kept in storage.
type GeneratedDocument struct {
	ID         string
	CaseID     string
	DocType    model.DocType
	StorageKey string
	StorageURL string
	SizeBytes  int64
	Parameters Parameters
	CreatedAt  time.Time
}

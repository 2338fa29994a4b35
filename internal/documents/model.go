package documents

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an uploaded source document.
type Kind string

const (
	KindEdital           Kind = "edital"
	KindCompetitorAppeal Kind = "recurso_concorrente"
	KindOther            Kind = "outros"
)

// ParseKind validates a wire value.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(raw)); k {
	case KindEdital, KindCompetitorAppeal, KindOther:
		return k, nil
	}
	return "", fmt.Errorf("tipo de documento inválido: %q", raw)
}

// ExtractedTextSuffix names the cached plain-text copy stored next to a
// source object.
const ExtractedTextSuffix = ".extracted.txt"

// SourceDocument is a file a user attached to a case.
type SourceDocument struct {
	ID          string
	CaseID      string
	FileName    string
	Kind        Kind
	StorageKey  string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}

// ExtractedTextKey is the storage key of the cached extracted text.
func (d SourceDocument) ExtractedTextKey() string {
	return d.StorageKey + ExtractedTextSuffix
}

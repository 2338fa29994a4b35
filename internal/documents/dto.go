package documents

import "time"

// DocumentResponse is the outward-facing representation of a source document.
type DocumentResponse struct {
	DocumentID  string    `json:"documentId"`
	CaseID      string    `json:"caseId"`
	FileName    string    `json:"fileName"`
	Kind        string    `json:"kind"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// ToResponse renders doc with its public URL.
func ToResponse(doc SourceDocument, url string) DocumentResponse {
	return DocumentResponse{
		DocumentID:  doc.ID,
		CaseID:      doc.CaseID,
		FileName:    doc.FileName,
		Kind:        string(doc.Kind),
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		URL:         url,
		UploadedAt:  doc.UploadedAt,
	}
}

package generateddocs

import "time"

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	DocType    string `json:"docType" binding:"required"`
	Parameters string `json:"parameters"`
}

// GeneratedResponse is the outward-facing representation of a generated petition.
type GeneratedResponse struct {
	ID         string    `json:"id"`
	CaseID     string    `json:"caseId"`
	DocType    string    `json:"docType"`
	Label      string    `json:"label"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"sizeBytes"`
	Parameters string    `json:"parameters"`
	CreatedAt  time.Time `json:"createdAt"`
	Warnings   []string  `json:"warnings,omitempty"`
}

func toResponse(doc GeneratedDocument, warnings []string) GeneratedResponse {
	return GeneratedResponse{
		ID:         doc.ID,
		CaseID:     doc.CaseID,
		DocType:    string(doc.DocType),
		Label:      doc.DocType.Label(),
		URL:        doc.StorageURL,
		SizeBytes:  doc.SizeBytes,
		Parameters: doc.Parameters.Text,
		CreatedAt:  doc.CreatedAt,
		Warnings:   warnings,
	}
}

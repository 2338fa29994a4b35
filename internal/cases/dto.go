package cases

import "time"

// CreateRequest is the body of POST /companies/:companyId/cases.
type CreateRequest struct {
	Title         string `json:"title"`
	ProcessNumber string `json:"processNumber"`
	Agency        string `json:"agency"`
	Description   string `json:"description"`
}

// StatusRequest is the body of PATCH /cases/:caseId/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// CaseResponse is the outward-facing representation of a case.
type CaseResponse struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	Title         string    `json:"title"`
	ProcessNumber string    `json:"processNumber"`
	Agency        string    `json:"agency"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toResponse(c Case) CaseResponse {
	return CaseResponse{
		ID:            c.ID,
		CompanyID:     c.CompanyID,
		Title:         c.Title,
		ProcessNumber: c.ProcessNumber,
		Agency:        c.Agency,
		Description:   c.Description,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

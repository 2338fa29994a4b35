package companies

import (
	"time"

	"petition-backend/petition/model"
)

// Company is the filing company whose letterhead is printed on petitions.
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	LogoURL   string
	LogoKey   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Letterhead returns the fields the petition assembler prints.
func (c Company) Letterhead() model.Company {
	return model.Company{
		Name:    c.Name,
		TaxID:   c.TaxID,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

package cases

import (
	"time"

	"petition-backend/petition/model"
)

// Status is the lifecycle marker of a case. Transitions are unconstrained.
type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusCompleted:
		return true
	}
	return false
}

// Case is a procurement proceeding a company disputes.
type Case struct {
	ID            string
	CompanyID     string
	Title         string
	ProcessNumber string
	Agency        string
	Description   string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Proceeding returns the fields the petition assembler prints.
func (c Case) Proceeding() model.Case {
	return model.Case{ProcessNumber: c.ProcessNumber, Agency: c.Agency}
}

package companies

import "petition-backend/internal/shared/apperror"

// ErrNotFound indicates the company does not exist.
var ErrNotFound = apperror.NotFound("companies", "company not found")

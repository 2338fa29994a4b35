package cases

import "petition-backend/internal/shared/apperror"

// ErrNotFound indicates the case does not exist.
var ErrNotFound = apperror.NotFound("cases", "case not found")

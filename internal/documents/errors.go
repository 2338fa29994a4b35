package documents

import "petition-backend/internal/shared/apperror"

// ErrNotFound indicates the source document does not exist.
var ErrNotFound = apperror.NotFound("documents", "document not found")

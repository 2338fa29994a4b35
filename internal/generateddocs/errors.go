package generateddocs

import "petition-backend/internal/shared/apperror"

// ErrNotFound indicates the generated document does not exist.
var ErrNotFound = apperror.NotFound("generateddocs", "generated document not found")

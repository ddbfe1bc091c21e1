package typographysettings

import apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"

var (
	errStoreUnavailable   = apperrors.E(apperrors.KindUnavailable, "font store is not configured")
	errCatalogUnavailable = apperrors.E(apperrors.KindUnavailable, "font catalog is not configured")
	errSignInRequired     = apperrors.EK(apperrors.KindUnauthorized, "auth.guard.required", "sign in required")
	errFontNotFound       = apperrors.EK(apperrors.KindNotFound, "error.font.not_found", "font not found")
)

package brand

import apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"

var errStoreUnavailable = apperrors.E(apperrors.KindUnavailable, "font store is not configured")

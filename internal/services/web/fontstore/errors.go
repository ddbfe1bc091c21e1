package fontstore

import "errors"

var errNoLister = errors.New("font catalog is not configured")

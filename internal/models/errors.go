package models

import "errors"

// ErrContentRequired is returned when a create request has no content.
var ErrContentRequired = errors.New("content is required")

package chat

import "errors"

// ErrEmptyMessage rejects blank chat input before any model call
var ErrEmptyMessage = errors.New("message must not be empty")

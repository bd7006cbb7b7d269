package uploads

import "errors"

var (
	ErrTaskNotFound    = errors.New("upload task not found")
	ErrNotRetryable    = errors.New("upload task is not in error state")
	ErrSessionNotFound = errors.New("upload session not found")
	ErrNoStore         = errors.New("blob store not configured")
)

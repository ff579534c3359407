package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrRecordNotFound = errors.New("model record not found")
	ErrNotExportable  = errors.New("record does not satisfy the export preconditions")
)

// Context keys for error values
const (
	ModelIDKey = "model_id"
)

package repository

import "errors"

// Sentinel kinds for listing store errors.
var (
	ErrEmptyPath = errors.New("listing path must not be empty")
	ErrNotFound  = errors.New("listing not found")
	ErrSave      = errors.New("save listing failed")
	ErrLoad      = errors.New("load listing failed")
	ErrRemove    = errors.New("remove listing failed")
)

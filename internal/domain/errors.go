package domain

import "errors"

var (
	ErrInvalidItem    = errors.New("invalid item")
	ErrItemNotFound   = errors.New("item not found")
	ErrSyncInProgress = errors.New("sync already in progress")
)

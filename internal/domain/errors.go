package domain

import "errors"

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidListing    = errors.New("invalid listing data")
	ErrInvalidEvent      = errors.New("invalid event payload")
	ErrRepository        = errors.New("repository failure")
	ErrTransactionFailed = errors.New("transaction retries exhausted")
)

package app

import "errors"

var (
	ErrNotSeller       = errors.New("user does not have seller role")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyText       = errors.New("text required")
	ErrEmptyHistory    = errors.New("messages required")
	ErrInvalidListing  = errors.New("invalid listing")
)

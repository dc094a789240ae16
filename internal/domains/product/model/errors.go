package model

import "errors"

var (
	ErrProductNotFound = errors.New("Resource not found")
	ErrSlugTaken       = errors.New("a product with this name already exists")
	ErrInvalidImport   = errors.New("invalid import file")
)

package repository

import "errors"

// Sentinel kinds for evaluation store errors.
var (
	ErrNotFound     = errors.New("evaluation not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrUnranked     = errors.New("kind is not ranked by score")
)

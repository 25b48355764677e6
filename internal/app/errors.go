package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("submission queue full")
	ErrStopped      = errors.New("service stopping")
)

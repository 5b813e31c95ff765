package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrCacheMiss       = errors.New("cache miss")
	ErrEmptySeed       = errors.New("seed dataset is empty")
	ErrPriceFormat     = errors.New("invalid price format")
	ErrSessionNotFound = errors.New("conversation session not found")
	ErrEmptyMessage    = errors.New("empty message")
	ErrUnavailable     = errors.New("unavailable")
)

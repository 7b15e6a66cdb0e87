package model

import "errors"

var (
	ErrInvalidURL  = errors.New("invalid URL")
	ErrFetchFailed = errors.New("could not fetch search results")
)

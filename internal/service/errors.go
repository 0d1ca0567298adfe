package service

import "errors"

var (
	// ErrUpstreamUnavailable means the upstream call failed before a response arrived
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrMalformedResponse means a JSON-typed upstream body could not be parsed
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrMalformedRecipe means a recipe record lacked a field normalization depends on
	ErrMalformedRecipe = errors.New("malformed recipe record")
)

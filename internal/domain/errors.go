package domain

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
// Lookup APIs that can report absence directly (ok=false) prefer that over
// this sentinel; it is reserved for operations that must fail, like a chat
// option pointing at a stop the directory no longer lists.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. an empty favorite label).
var ErrValidation = errors.New("validation error")

// ErrUpstreamUnavailable is returned when the transit API could not be
// reached or its response could not be decoded. It is never retried.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrStore is returned when the favorites store fails a statement.
var ErrStore = errors.New("store error")

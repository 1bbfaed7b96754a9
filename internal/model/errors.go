package model

import "errors"

// Error kinds surfaced by the sync and read paths. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrUnknownSymbol: the requested symbol is not in the catalog.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnregisteredSymbol: the registry maps the symbol but the store has
	// no security row for it. Registry and store must agree.
	ErrUnregisteredSymbol = errors.New("symbol not registered in store")

	// ErrUpstreamUnavailable: the feed failed or returned nothing on a
	// required refresh.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

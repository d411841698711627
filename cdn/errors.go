package cdn

import "errors"

var (
	// ErrInvalidHash is returned when a content hash is not exactly 32
	// lowercase hex characters.
	ErrInvalidHash = errors.New("cdn: invalid hash")
	// ErrNoServers is returned when a Pool has no configured servers.
	ErrNoServers = errors.New("cdn: no servers configured")
	// ErrAllServersFailed is returned when every eligible server failed and
	// retries were exhausted.
	ErrAllServersFailed = errors.New("cdn: all servers failed")
	// ErrCircuitOpen is returned when every eligible server's circuit
	// breaker is open.
	ErrCircuitOpen = errors.New("cdn: all circuits open")
	// ErrUnknownProduct is returned when the bootstrap cache has no entry
	// for a requested product.
	ErrUnknownProduct = errors.New("cdn: unknown product")
)

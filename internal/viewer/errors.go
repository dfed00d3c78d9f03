package viewer

import "errors"

// Lifecycle errors.
var (
	// ErrViewerNotFound is returned by Load for an unknown identifier.
	// Query and teardown operations treat unknown identifiers as no-ops
	// instead.
	ErrViewerNotFound = errors.New("viewer not found")

	// ErrInvalidContainer is returned by Create for a nil container.
	ErrInvalidContainer = errors.New("invalid container")

	// ErrInvalidSource is returned by Load when the source is neither a
	// file path nor a byte buffer.
	ErrInvalidSource = errors.New("invalid model source")

	// ErrRenderInit is returned by Create when the rendering engine
	// cannot produce a context. No registry entry is created.
	ErrRenderInit = errors.New("render context init failed")

	// ErrRenderLoad is returned by Load when the rendering surface
	// rejects the bytes. Stored state is left untouched.
	ErrRenderLoad = errors.New("render load failed")

	// ErrReadSource is returned by Load when byte acquisition from a
	// file source fails.
	ErrReadSource = errors.New("reading model source failed")
)

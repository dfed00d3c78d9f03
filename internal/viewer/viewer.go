// Package viewer manages the lifecycle of per-container model viewers.
//
// A viewer binds a UI container to an exclusive render context and tracks
// its display state: the most recently loaded model bytes, the orientation
// hint and whether a load has completed. The Manager is the only component
// that touches the registry; render contexts, byte reading and identifier
// generation are injected so the package has no hidden global state.
package viewer

import "context"

// Orientation is a display-only transform hint applied when (re)loading
// model bytes.
type Orientation int

// Supported orientations. Flat is the default at creation.
const (
	Flat Orientation = iota
	Vertical
)

// String returns a human-readable orientation name.
func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	default:
		return "flat"
	}
}

// ParseOrientation converts a string form ("flat", "vertical") to an
// Orientation. Unknown values map to Flat.
func ParseOrientation(s string) Orientation {
	if s == "vertical" {
		return Vertical
	}
	return Flat
}

// Container is the hosting UI surface a viewer is bound to. It is a
// back-reference only; the viewer never owns or releases it.
type Container interface {
	// ID returns a stable identifier carried by the container, or ""
	// if the container has none and one must be generated.
	ID() string
}

// RenderContext is the opaque handle to an external rendering surface.
// Each context is exclusively owned by one viewer and released exactly
// once, at disposal.
type RenderContext interface {
	// LoadModel hands raw model bytes plus an orientation hint to the
	// rendering surface. The bytes are replayed unchanged on orientation
	// changes.
	LoadModel(data []byte, orientation Orientation) error

	// SetWireframe switches wireframe rendering on every surface the
	// context owns. Display-only.
	SetWireframe(enabled bool)

	// Release frees GPU and window resources. Best-effort: the caller
	// removes its registry entry regardless of the returned error.
	Release() error
}

// RenderFactory produces a render context for a container.
type RenderFactory interface {
	New(c Container) (RenderContext, error)
}

// ByteReader asynchronously materializes bytes from a file-like source.
type ByteReader func(ctx context.Context, path string) ([]byte, error)

// Source is the input to Load: either a file path to be read
// asynchronously, or an already-materialized byte buffer.
type Source struct {
	Path string
	Data []byte
}

// FromFile returns a Source backed by a file path.
func FromFile(path string) Source {
	return Source{Path: path}
}

// FromBytes returns a Source backed by materialized bytes.
func FromBytes(data []byte) Source {
	return Source{Data: data}
}

func (s Source) valid() bool {
	return len(s.Data) > 0 || s.Path != ""
}

// State is the per-viewer record held by the registry.
type State struct {
	id          string
	render      RenderContext
	container   Container
	model       []byte
	orientation Orientation
	loaded      bool

	// loadSeq is the sequence number of the most recently issued load.
	// A completing load applies its result only if it still holds the
	// latest sequence; superseded results are discarded.
	loadSeq uint64
}

// ID returns the viewer identifier. Immutable after creation.
func (s *State) ID() string {
	return s.id
}

// Orientation returns the current orientation hint.
func (s *State) Orientation() Orientation {
	return s.orientation
}

// Loaded reports whether a load has completed successfully.
func (s *State) Loaded() bool {
	return s.loaded
}

package viewer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the viewer registry and sequences every lifecycle
// operation against the render contexts. All collaborators are injected;
// zero values fall back to OS file reading, UUID identifiers and a no-op
// logger.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	render   RenderFactory
	readFile ByteReader
	log      *zap.Logger

	subs    map[int]func(Event)
	nextSub int
}

// Option customizes a Manager.
type Option func(*Manager)

// WithByteReader replaces the file reader used for file-backed sources.
func WithByteReader(r ByteReader) Option {
	return func(m *Manager) { m.readFile = r }
}

// WithIDGenerator replaces the identifier generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.registry = NewRegistry(gen) }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a lifecycle manager backed by the given render
// factory.
func NewManager(render RenderFactory, opts ...Option) *Manager {
	m := &Manager{
		registry: NewRegistry(nil),
		render:   render,
		readFile: readFileBytes,
		log:      zap.NewNop(),
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// readFileBytes is the default ByteReader. The context is honored on a
// best-effort basis: it is checked before the read starts.
func readFileBytes(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Create binds a new viewer to the container and returns its identifier.
// If the rendering engine cannot produce a context, no registry entry is
// created.
func (m *Manager) Create(c Container) (string, error) {
	if c == nil {
		return "", ErrInvalidContainer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rc, err := m.render.New(c)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderInit, err)
	}

	id := m.registry.AllocateID(c)
	m.registry.Put(id, &State{
		id:          id,
		render:      rc,
		container:   c,
		orientation: Flat,
	})

	m.log.Debug("viewer created", zap.String("id", id))
	m.notify(Event{Kind: EventCreated, ViewerID: id})
	return id, nil
}

// Load materializes bytes from the source and hands them to the viewer's
// render context together with the current orientation.
//
// The byte read is the only suspension point. A sequence number is taken
// when the call is initiated; when the read completes, the result is
// applied only if the viewer still exists and no later load has been
// issued. Model bytes are staged and committed only after the render
// context accepts them, so a rejected load never corrupts stored state.
func (m *Manager) Load(ctx context.Context, id string, src Source) error {
	m.mu.Lock()
	st, ok := m.registry.Get(id)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrViewerNotFound, id)
	}
	if !src.valid() {
		m.mu.Unlock()
		return fmt.Errorf("%w: neither file path nor bytes", ErrInvalidSource)
	}
	st.loadSeq++
	seq := st.loadSeq
	m.mu.Unlock()

	data := src.Data
	if len(data) == 0 {
		var err error
		data, err = m.readFile(ctx, src.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadSource, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Identity check guards against the id being disposed and reused by
	// a new viewer while the read was in flight.
	cur, ok := m.registry.Get(id)
	if !ok || cur != st || st.loadSeq != seq {
		// Disposed or superseded; the result is discarded without
		// touching state.
		m.log.Debug("load discarded", zap.String("id", id), zap.Uint64("seq", seq))
		return nil
	}

	if err := st.render.LoadModel(data, st.orientation); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderLoad, err)
	}

	st.model = data
	st.loaded = true

	m.log.Info("model loaded",
		zap.String("id", id),
		zap.Int("bytes", len(data)),
		zap.Stringer("orientation", st.orientation),
	)
	m.notify(Event{Kind: EventLoaded, ViewerID: id, Orientation: st.orientation})
	return nil
}

// ChangeOrientation updates the orientation hint and replays the stored
// bytes through the render context. It is a no-op for an unknown viewer
// or before the first successful load.
func (m *Manager) ChangeOrientation(id string, o Orientation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.registry.Get(id)
	if !ok || st.model == nil {
		return
	}

	st.orientation = o
	if err := st.render.LoadModel(st.model, o); err != nil {
		// The hint is kept; it applies on the next successful load.
		m.log.Warn("orientation replay failed", zap.String("id", id), zap.Error(err))
		return
	}

	m.log.Debug("orientation changed", zap.String("id", id), zap.Stringer("orientation", o))
	m.notify(Event{Kind: EventOrientationChanged, ViewerID: id, Orientation: o})
}

// ToggleWireframe switches wireframe rendering for the viewer. Display
// only: stored bytes and orientation are untouched. No-op for an unknown
// viewer.
func (m *Manager) ToggleWireframe(id string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.registry.Get(id)
	if !ok {
		return
	}

	st.render.SetWireframe(enabled)
	m.notify(Event{Kind: EventWireframeToggled, ViewerID: id, Wireframe: enabled})
}

// Dispose releases the viewer's render context and removes its registry
// entry. Idempotent. A failing release is logged but never prevents
// removal: the identifier is always freed for reuse.
func (m *Manager) Dispose(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.registry.Get(id)
	if !ok {
		return
	}

	if err := st.render.Release(); err != nil {
		m.log.Error("render context release failed", zap.String("id", id), zap.Error(err))
	}
	m.registry.Remove(id)

	m.log.Debug("viewer disposed", zap.String("id", id))
	m.notify(Event{Kind: EventDisposed, ViewerID: id})
}

// HasModel reports whether the viewer exists and has completed a load.
// Never errors.
func (m *Manager) HasModel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.registry.Get(id)
	return ok && st.loaded
}

// Orientation returns the viewer's current orientation hint, or Flat for
// an unknown viewer.
func (m *Manager) Orientation(id string) Orientation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.registry.Get(id); ok {
		return st.orientation
	}
	return Flat
}

// Count returns the number of live viewers.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Len()
}

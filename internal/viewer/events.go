package viewer

// EventKind classifies a viewer state change.
type EventKind int

// Event kinds emitted by the Manager.
const (
	EventCreated EventKind = iota
	EventLoaded
	EventOrientationChanged
	EventWireframeToggled
	EventDisposed
)

// String returns a human-readable event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventLoaded:
		return "loaded"
	case EventOrientationChanged:
		return "orientation-changed"
	case EventWireframeToggled:
		return "wireframe-toggled"
	case EventDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Event describes a single viewer state change.
type Event struct {
	Kind        EventKind
	ViewerID    string
	Orientation Orientation
	Wireframe   bool
}

// Subscribe registers a callback invoked synchronously, in registration
// order, whenever a viewer changes state. Callbacks run inside the
// mutating step and must not call back into the Manager. The returned
// function cancels the subscription.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// notify delivers an event to all subscribers. Caller holds m.mu.
func (m *Manager) notify(ev Event) {
	for i := 0; i < m.nextSub; i++ {
		if fn, ok := m.subs[i]; ok {
			fn(ev)
		}
	}
}

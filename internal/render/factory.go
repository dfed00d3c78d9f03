package render

import "github.com/printforge/meshview/internal/viewer"

// Factory creates GL render contexts sized for viewer panels. It
// satisfies viewer.RenderFactory and must be used on the thread that
// owns the GL context.
type Factory struct {
	width  int32
	height int32
}

// NewFactory creates a factory producing framebuffers of the given
// size.
func NewFactory(width, height int32) *Factory {
	return &Factory{width: width, height: height}
}

// New creates a render context for the container.
func (f *Factory) New(viewer.Container) (viewer.RenderContext, error) {
	return NewContext(f.width, f.height)
}

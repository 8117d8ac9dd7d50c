package capture

import (
	"context"
	"image"
)

// Source yields successive frames of a session. Read blocks until a frame is
// available, the context ends, or the source fails. A source that has run
// out of frames returns io.EOF.
type Source interface {
	Read(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// Recycler is implemented by sources that hand out pooled frames. Callers
// return a frame once nothing references it any more.
type Recycler interface {
	Recycle(*image.RGBA)
}

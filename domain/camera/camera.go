// Package camera adapts an OpenCV video device to capture.Source.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/soocke/gazemap-go/domain/capture"
)

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("camera: closed")

// Camera reads BGR frames from a video device and converts them to RGBA.
type Camera struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	device int
	logger *slog.Logger
	closed bool
}

// Open starts the device. Width and height are requested from the driver
// when positive; the driver may pick a different mode.
func Open(device, width, height int, logger *slog.Logger) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", device, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("camera: device %d not available", device)
	}
	if width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	if logger != nil {
		logger.Info("camera opened",
			"device", device,
			"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
			"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
		)
	}
	return &Camera{vc: vc, mat: gocv.NewMat(), device: device, logger: logger}, nil
}

// Read grabs one frame. A failed grab is reported as an error rather than
// io.EOF; a live camera has no natural end.
func (c *Camera) Read(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("camera: device %d returned no frame", c.device)
	}
	if c.mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("camera: unsupported mat type %v", c.mat.Type())
	}
	w, h := c.mat.Cols(), c.mat.Rows()
	bgr := c.mat.ToBytes()
	if len(bgr) < w*h*3 {
		return nil, fmt.Errorf("camera: short frame buffer (%d bytes for %dx%d)", len(bgr), w, h)
	}
	out := capture.AcquireFrame(image.Rect(0, 0, w, h))
	for si, di := 0, 0; di < len(out.Pix); si, di = si+3, di+4 {
		out.Pix[di] = bgr[si+2]
		out.Pix[di+1] = bgr[si+1]
		out.Pix[di+2] = bgr[si]
		out.Pix[di+3] = 0xff
	}
	return out, nil
}

// Recycle returns a frame handed out by Read to the shared pool.
func (c *Camera) Recycle(img *image.RGBA) { capture.RecycleFrame(img) }

// Close releases the device. It is safe to call more than once.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.mat.Close()
	return c.vc.Close()
}

var (
	_ capture.Source   = (*Camera)(nil)
	_ capture.Recycler = (*Camera)(nil)
)

// Opener adapts Open to the signature the pipeline expects.
func Opener(device, width, height int, logger *slog.Logger) (capture.Source, error) {
	c, err := Open(device, width, height, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

var frameExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true, ".tif": true, ".tiff": true}

// DirSource replays still images from a directory in lexical file order.
type DirSource struct {
	files []string
	next  int
}

// OpenDir lists the image files in dir. A directory without images is an
// error since the session could never establish its frame size.
func OpenDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("capture: read frames dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("capture: no image files in %s", dir)
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

// Len reports the number of frames in the directory.
func (d *DirSource) Len() int { return len(d.files) }

// Read decodes the next file. It returns io.EOF after the last one.
func (d *DirSource) Read(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.files == nil {
		return nil, errors.New("capture: source closed")
	}
	if d.next >= len(d.files) {
		return nil, io.EOF
	}
	path := d.files[d.next]
	d.next++
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("capture: decode %s: %w", filepath.Base(path), err)
	}
	b := img.Bounds()
	out := AcquireFrame(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out, nil
}

// Recycle returns a frame handed out by Read to the shared pool.
func (d *DirSource) Recycle(img *image.RGBA) { RecycleFrame(img) }

// Close releases the file list. Subsequent reads fail.
func (d *DirSource) Close() error {
	d.files = nil
	return nil
}

var (
	_ Source   = (*DirSource)(nil)
	_ Recycler = (*DirSource)(nil)
)

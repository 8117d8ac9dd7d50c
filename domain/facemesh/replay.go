package facemesh

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/soocke/gazemap-go/domain/gaze"
)

// Replay serves landmarks recorded earlier, one JSON line per frame. Each line
// is either an array of faces or an object with a "faces" field. Blank lines
// are frames without faces. Once the file is exhausted every call returns no
// faces.
type Replay struct {
	mu       sync.Mutex
	frames   [][]gaze.LandmarkSet
	next     int
	maxFaces int
}

// OpenReplay loads the whole file up front.
func OpenReplay(path string, opts Options) (*Replay, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("facemesh: open replay: %w", err)
	}
	defer f.Close()

	r := &Replay{maxFaces: opts.MaxFaces}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			r.frames = append(r.frames, nil)
			continue
		}
		faces, err := decodeFaces([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("facemesh: replay line %d: %w", line, err)
		}
		r.frames = append(r.frames, faces)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("facemesh: read replay: %w", err)
	}
	return r, nil
}

func decodeFaces(b []byte) ([]gaze.LandmarkSet, error) {
	if b[0] == '[' {
		var faces []gaze.LandmarkSet
		err := json.Unmarshal(b, &faces)
		return faces, err
	}
	var reply detectReply
	if err := json.Unmarshal(b, &reply); err != nil {
		return nil, err
	}
	return reply.Faces, nil
}

// Len reports the number of recorded frames.
func (r *Replay) Len() int { return len(r.frames) }

// Detect ignores the image and returns the next recorded frame.
func (r *Replay) Detect(ctx context.Context, _ image.Image) ([]gaze.LandmarkSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.frames) {
		return nil, nil
	}
	faces := r.frames[r.next]
	r.next++
	return limitFaces(faces, r.maxFaces), nil
}

func (r *Replay) Close() error { return nil }

var _ Detector = (*Replay)(nil)

package facemesh

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/soocke/gazemap-go/domain/gaze"
)

type meshServer struct {
	configs atomic.Int32
	frames  atomic.Int32
	// reply builds the answer for the n-th frame (1-based). Nil sends nothing.
	reply func(n int32) any
	// dropFirst closes the first connection right after the config message.
	dropFirst atomic.Bool
}

func (m *meshServer) handler(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage || !strings.Contains(string(msg), `"refine_landmarks":true`) {
			t.Errorf("unexpected config message %q", msg)
			return
		}
		m.configs.Add(1)
		if m.dropFirst.CompareAndSwap(true, false) {
			return
		}
		for {
			kind, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.BinaryMessage {
				t.Errorf("expected binary frame, got %d", kind)
				return
			}
			if _, err := jpeg.Decode(bytes.NewReader(frame)); err != nil {
				t.Errorf("frame is not a jpeg: %v", err)
				return
			}
			n := m.frames.Add(1)
			answer := m.reply(n)
			if answer == nil {
				continue
			}
			out, _ := json.Marshal(answer)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func face(n int) gaze.LandmarkSet {
	set := make(gaze.LandmarkSet, n)
	for i := range set {
		set[i] = gaze.Landmark{X: 0.5, Y: 0.25, Z: -0.01}
	}
	return set
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 16, 12))
}

func TestRemote_RoundTrip(t *testing.T) {
	mesh := &meshServer{reply: func(int32) any {
		return map[string]any{"faces": []gaze.LandmarkSet{face(gaze.MinLandmarks), face(gaze.MinLandmarks)}}
	}}
	srv := httptest.NewServer(mesh.handler(t))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxFaces = 1
	det, err := Dial(context.Background(), RemoteConfig{URL: wsURL(srv), Options: opts}, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer det.Close()

	for i := 0; i < 3; i++ {
		faces, err := det.Detect(context.Background(), testImage())
		if err != nil {
			t.Fatalf("detect %d: %v", i, err)
		}
		if len(faces) != 1 {
			t.Fatalf("expected reply trimmed to 1 face, got %d", len(faces))
		}
		if len(faces[0]) != gaze.MinLandmarks || faces[0][0].X != 0.5 || faces[0][0].Y != 0.25 {
			t.Fatalf("unexpected landmarks %+v", faces[0][0])
		}
	}
	if mesh.configs.Load() != 1 || mesh.frames.Load() != 3 {
		t.Fatalf("expected 1 config and 3 frames, got %d/%d", mesh.configs.Load(), mesh.frames.Load())
	}
}

func TestRemote_ServerErrorSurfaces(t *testing.T) {
	mesh := &meshServer{reply: func(int32) any {
		return map[string]any{"error": "model not loaded"}
	}}
	srv := httptest.NewServer(mesh.handler(t))
	defer srv.Close()

	det, err := Dial(context.Background(), RemoteConfig{URL: wsURL(srv), Options: DefaultOptions()}, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer det.Close()
	_, err = det.Detect(context.Background(), testImage())
	if !errors.Is(err, ErrRemote) || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestRemote_ReconnectsOnce(t *testing.T) {
	mesh := &meshServer{reply: func(int32) any {
		return map[string]any{"faces": []gaze.LandmarkSet{}}
	}}
	mesh.dropFirst.Store(true)
	srv := httptest.NewServer(mesh.handler(t))
	defer srv.Close()

	det, err := Dial(context.Background(), RemoteConfig{URL: wsURL(srv), Options: DefaultOptions(), ReadTimeout: 2 * time.Second}, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer det.Close()
	faces, err := det.Detect(context.Background(), testImage())
	if err != nil {
		t.Fatalf("detect after reconnect: %v", err)
	}
	if len(faces) != 0 {
		t.Fatalf("expected no faces, got %d", len(faces))
	}
	if mesh.configs.Load() != 2 {
		t.Fatalf("expected config resent on reconnect, got %d", mesh.configs.Load())
	}
}

func TestRemote_CancelInterruptsPendingReply(t *testing.T) {
	mesh := &meshServer{reply: func(int32) any { return nil }}
	srv := httptest.NewServer(mesh.handler(t))
	defer srv.Close()

	det, err := Dial(context.Background(), RemoteConfig{URL: wsURL(srv), Options: DefaultOptions(), ReadTimeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer det.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	start := time.Now()
	_, err = det.Detect(ctx, testImage())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancel took %v to interrupt the read", elapsed)
	}
	if mesh.frames.Load() != 1 {
		t.Fatalf("cancelled call should not be retried, server saw %d frames", mesh.frames.Load())
	}
}

func TestDial_RejectsUnrefinedOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.RefineLandmarks = false
	if _, err := Dial(context.Background(), RemoteConfig{URL: "ws://127.0.0.1:1", Options: opts}, nil); !errors.Is(err, ErrRefineDisabled) {
		t.Fatalf("expected ErrRefineDisabled, got %v", err)
	}
	if _, err := Dial(context.Background(), RemoteConfig{Options: DefaultOptions()}, nil); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions for empty url, got %v", err)
	}
}

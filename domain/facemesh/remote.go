package facemesh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/soocke/gazemap-go/domain/gaze"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrRemote is returned when the inference server reports a failure.
var ErrRemote = errors.New("facemesh: remote detector error")

// configMessage is sent once per connection before any frame.
type configMessage struct {
	Type    string  `json:"type"`
	Options Options `json:"options"`
}

// detectReply is the server answer to one binary frame.
type detectReply struct {
	Faces []gaze.LandmarkSet `json:"faces"`
	Error string             `json:"error,omitempty"`
}

// RemoteConfig tunes the WebSocket client.
type RemoteConfig struct {
	URL              string
	Options          Options
	JPEGQuality      int
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

func (c *RemoteConfig) applyDefaults() {
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 85
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
}

// Remote sends JPEG frames to a face mesh inference server over WebSocket and
// decodes the landmark reply. Calls are serialized; one request is in flight
// at a time.
type Remote struct {
	cfg    RemoteConfig
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	buf  bytes.Buffer
}

// Dial validates the options and connects. The connection is re-established
// lazily if it drops later.
func Dial(ctx context.Context, cfg RemoteConfig, logger *slog.Logger) (*Remote, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: detector url is empty", ErrInvalidOptions)
	}
	cfg.applyDefaults()
	r := &Remote{cfg: cfg, logger: logger}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.connectLocked(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Remote) connectLocked(ctx context.Context) error {
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = r.cfg.HandshakeTimeout
	conn, _, err := dialer.DialContext(ctx, r.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("facemesh: connect %s: %w", r.cfg.URL, err)
	}
	msg, err := json.Marshal(configMessage{Type: "config", Options: r.cfg.Options})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("facemesh: encode config: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		_ = conn.Close()
		return fmt.Errorf("facemesh: send config: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Time{})
	r.conn = conn
	if r.logger != nil {
		r.logger.Info("facemesh connected", "url", r.cfg.URL)
	}
	return nil
}

// Detect encodes img as JPEG and waits for the landmark reply. A transport
// failure triggers one reconnect and retry.
func (r *Remote) Detect(ctx context.Context, img image.Image) ([]gaze.LandmarkSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Reset()
	if err := imaging.Encode(&r.buf, img, imaging.JPEG, imaging.JPEGQuality(r.cfg.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("facemesh: encode frame: %w", err)
	}
	frame := r.buf.Bytes()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if r.conn == nil {
			if err := r.connectLocked(ctx); err != nil {
				return nil, err
			}
		}
		reply, err := r.roundTripLocked(ctx, frame)
		if err == nil {
			if reply.Error != "" {
				return nil, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
			}
			return limitFaces(reply.Faces, r.cfg.Options.MaxFaces), nil
		}
		lastErr = err
		if r.conn != nil {
			_ = r.conn.Close()
			r.conn = nil
		}
		if ctx.Err() != nil {
			break
		}
		if r.logger != nil {
			r.logger.Warn("facemesh round trip failed", "attempt", attempt+1, "error", err)
		}
	}
	return nil, lastErr
}

func (r *Remote) roundTripLocked(ctx context.Context, frame []byte) (detectReply, error) {
	var reply detectReply
	writeDeadline := time.Now().Add(r.cfg.WriteTimeout)
	readDeadline := time.Now().Add(r.cfg.ReadTimeout)
	if dl, ok := ctx.Deadline(); ok {
		if dl.Before(writeDeadline) {
			writeDeadline = dl
		}
		if dl.Before(readDeadline) {
			readDeadline = dl
		}
	}
	conn := r.conn
	_ = conn.SetWriteDeadline(writeDeadline)
	_ = conn.SetReadDeadline(readDeadline)
	// Cancellation expires both deadlines so a blocked write or read returns now.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(time.Now())
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		if ctx.Err() != nil {
			return reply, fmt.Errorf("facemesh: send frame: %w", ctx.Err())
		}
		return reply, fmt.Errorf("facemesh: send frame: %w", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return reply, fmt.Errorf("facemesh: read reply: %w", ctx.Err())
		}
		return reply, fmt.Errorf("facemesh: read reply: %w", err)
	}
	_ = r.conn.SetReadDeadline(time.Time{})
	_ = r.conn.SetWriteDeadline(time.Time{})
	if err := json.Unmarshal(msg, &reply); err != nil {
		// A malformed reply is not a transport problem; don't retry it.
		return detectReply{Error: fmt.Sprintf("malformed reply: %v", err)}, nil
	}
	return reply, nil
}

// Close sends a close frame and drops the connection.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(r.cfg.WriteTimeout))
	err := r.conn.Close()
	r.conn = nil
	return err
}

var _ Detector = (*Remote)(nil)

package model

import (
	"errors"
	"testing"

	"github.com/soocke/gazemap-go/domain/session"
)

func TestCaptureModel_PublishAndReset(t *testing.T) {
	m := &CaptureModel{}
	if m.Latest() != nil || m.Enabled() {
		t.Fatalf("zero value should be empty and disabled")
	}
	m.SetEnabled(true)
	m.Publish(session.PreviewFrame{Sequence: 4})
	if f := m.Latest(); f == nil || f.Sequence != 4 {
		t.Fatalf("expected published frame, got %+v", f)
	}
	m.SetEnabled(true)
	if m.Latest() == nil {
		t.Fatalf("re-enabling without change must keep the frame")
	}
	m.SetEnabled(false)
	m.SetEnabled(true)
	if m.Latest() != nil {
		t.Fatalf("new capture should start without a preview")
	}
}

func TestResultModel_Versioning(t *testing.T) {
	m := NewResultModel()
	if _, v, _ := m.Get(); v != 0 {
		t.Fatalf("expected version 0")
	}
	m.Set(&session.Result{}, nil)
	res, v, err := m.Get()
	if res == nil || err != nil || v != 1 {
		t.Fatalf("unexpected state %v %v %d", res, err, v)
	}
	m.Set(nil, errors.New("camera gone"))
	if _, v, err := m.Get(); err == nil || v != 2 {
		t.Fatalf("expected error at version 2")
	}
}

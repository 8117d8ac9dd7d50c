package model

import (
	"sync"

	"github.com/soocke/gazemap-go/domain/session"
)

// ResultModel holds the outcome of the last finished session. It is written
// from the session goroutine and read on the UI thread.
type ResultModel struct {
	mu      sync.Mutex
	result  *session.Result
	err     error
	version uint64
}

func NewResultModel() *ResultModel { return &ResultModel{} }

// Set stores the outcome of a run. Either res or err is normally nil.
func (m *ResultModel) Set(res *session.Result, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.result, m.err = res, err
	m.version++
	m.mu.Unlock()
}

// Get returns the stored outcome and a version that changes on every Set.
func (m *ResultModel) Get() (res *session.Result, version uint64, err error) {
	if m == nil {
		return nil, 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result, m.version, m.err
}

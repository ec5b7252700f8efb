package tracelog

import (
	"context"
	"sync"

	"github.com/lineus/simplestore/internal/store"
)

// Sink adapts a Log to the store's TraceSink interface, recording every
// dispatch under a fixed store token.
//
// Dispatched cannot return an error, so the first append failure is kept
// and later appends are skipped; callers check Err after the run.
type Sink struct {
	mu    sync.Mutex
	log   *Log
	token string
	ctx   context.Context
	err   error
}

// NewSink creates a sink appending to log under the given store token.
func NewSink(ctx context.Context, log *Log, token string) *Sink {
	return &Sink{log: log, token: token, ctx: ctx}
}

// Dispatched implements store.TraceSink.
func (s *Sink) Dispatched(kind store.DispatchKind, name string, value, result any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.err = s.log.Append(s.ctx, s.token, string(kind), name, value, result, err)
}

// Err returns the first append failure, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

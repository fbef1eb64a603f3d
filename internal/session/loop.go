package session

import (
	"context"
	"sync"

	"github.com/tessro/cassette/internal/core"
)

// Loop serializes events into a Session from any goroutine.
type Loop struct {
	events chan Event
	done   chan struct{}
	stop   sync.Once
}

// NewLoop creates a loop with the given event buffer.
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Post queues an event. It blocks while the buffer is full and returns
// without queueing once the loop has stopped.
func (l *Loop) Post(ev Event) {
	select {
	case l.events <- ev:
	case <-l.done:
	}
}

// MediaSink returns a sink that posts media events into the loop.
func (l *Loop) MediaSink() core.MediaSink {
	return func(ev core.MediaEvent) {
		l.Post(MediaEvent{MediaEvent: ev})
	}
}

// Events exposes the queue for callers that drive the session themselves.
func (l *Loop) Events() <-chan Event {
	return l.events
}

// Start runs job in its own goroutine and posts its result.
func (l *Loop) Start(ctx context.Context, job Job) {
	go func() {
		if ev := job(ctx); ev != nil {
			l.Post(ev)
		}
	}()
}

// Stop makes pending and future Posts return immediately.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Run feeds queued events into s until ctx is done or a notice asks to quit.
// Every notice is passed to report before its jobs start.
func (l *Loop) Run(ctx context.Context, s *Session, report func(Notice)) error {
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			n := s.Handle(ctx, ev)
			if report != nil {
				report(n)
			}
			if n.Quit {
				return nil
			}
			for _, job := range n.Jobs {
				l.Start(ctx, job)
			}
		}
	}
}

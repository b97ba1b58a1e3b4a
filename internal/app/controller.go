package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gabrielfornes/memex/internal/logging"
	"github.com/gabrielfornes/memex/internal/request"
)

// queueSize bounds the event queue; Dispatch blocks when it is full.
const queueSize = 64

// Controller owns one State and applies events to it one at a time from a
// single goroutine. Fetches run on their own goroutines and report back
// only by enqueueing their completion event.
type Controller struct {
	fetcher  Fetcher
	log      *logrus.Entry
	onChange func(State)

	events chan Event
	done   chan struct{}

	mu      sync.RWMutex
	state   State
	changed chan struct{}
	initial []Fetch

	// owned by the Run goroutine
	cancels map[request.Kind]context.CancelFunc
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for request lifecycle lines.
func WithLogger(log *logrus.Entry) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithOnChange registers fn to be called, from the Run goroutine, after
// every reduction that changed what is rendered.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController applies the initial RequestRefresh to s; the fetches start
// once Run is called.
func NewController(s State, f Fetcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher: f,
		log:     logrus.NewEntry(logging.Log),
		events:  make(chan Event, queueSize),
		done:    make(chan struct{}),
		changed: make(chan struct{}),
		cancels: make(map[request.Kind]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}

	res := Reduce(s, RequestRefresh{})
	c.state = res.State
	c.initial = res.Effects
	return c
}

// Dispatch enqueues ev. It returns without effect once Run has stopped.
func (c *Controller) Dispatch(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run processes events until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	c.mu.Lock()
	initial := c.initial
	c.initial = nil
	c.mu.Unlock()
	c.launch(ctx, initial)

	for {
		select {
		case <-ctx.Done():
			for _, cancel := range c.cancels {
				cancel()
			}
			return ctx.Err()
		case ev := <-c.events:
			c.apply(ctx, ev)
		}
	}
}

// WaitIdle blocks until no request is tracked or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) (State, error) {
	for {
		c.mu.RLock()
		s, changed := c.state, c.changed
		c.mu.RUnlock()
		if !s.Loading() {
			return s, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

func (c *Controller) apply(ctx context.Context, ev Event) {
	c.mu.Lock()
	prev := c.state
	res := Reduce(prev, ev)
	c.state = res.State
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	switch ev := ev.(type) {
	case EntriesReceived:
		c.logCompletion(prev, ev.Handle, ev.Err)
	case TagsReceived:
		c.logCompletion(prev, ev.Handle, ev.Err)
	}
	if res.State.CurrentQuery != prev.CurrentQuery {
		c.log.WithField("query", res.State.CurrentQuery).Info("query changed")
	}

	if res.Dirty && c.onChange != nil {
		c.onChange(res.State)
	}
	c.launch(ctx, res.Effects)
}

func (c *Controller) launch(ctx context.Context, effects []Fetch) {
	for _, fx := range effects {
		kind := fx.Handle.Kind
		// A superseded fetch can only be dropped, so stop it early. Under
		// last-writer-wins its late result still has to arrive.
		if prev, ok := c.cancels[kind]; ok && c.state.Options.Policy == request.DiscardStale {
			prev()
		}
		fctx, cancel := context.WithCancel(ctx)
		c.cancels[kind] = cancel

		c.log.WithFields(logrus.Fields{
			"kind":    kind,
			"gen":     fx.Handle.Gen,
			"request": fx.Handle.ID,
			"query":   fx.Handle.Query,
		}).Debug("request started")

		go func(fx Fetch) {
			defer cancel()
			ev := Execute(fctx, c.fetcher, fx)
			select {
			case c.events <- ev:
			case <-c.done:
			}
		}(fx)
	}
}

func (c *Controller) logCompletion(prev State, h request.Handle, err error) {
	log := c.log.WithFields(logrus.Fields{
		"kind":    h.Kind,
		"gen":     h.Gen,
		"request": h.ID,
	})
	if prev.Requests.Stale(h) {
		log = log.WithField("stale", true)
	}
	if err != nil {
		log.WithError(err).Warn("request failed")
		return
	}
	log.Debug("request completed")
}

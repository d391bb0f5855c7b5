// Package dispatch runs API requests with per-URL in-flight suppression and
// turns each completed request into exactly one store event.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/metrics"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Doer performs one HTTP round trip. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req endpoints.Request) ([]byte, error)
}

// Sink receives the event of every completed dispatch.
type Sink interface {
	Apply(evt store.Event)
}

// Handlers turn the outcome of a request into an event.
type Handlers struct {
	// OnSuccess decodes a 2xx body. A returned error sends the dispatch down
	// the failure path.
	OnSuccess func(body []byte) (store.Event, error)
	// OnFailure builds the terminal event for a failed request. When nil a
	// plain store.RequestFailed is used.
	OnFailure func(err error) store.Event
}

// DecodeError reports a 2xx body that could not be decoded or validated.
type DecodeError struct {
	Op  endpoints.Op
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	doer    Doer
	tracker *Tracker
	sink    Sink
	logger  *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracker shares a tracker between dispatchers.
func WithTracker(t *Tracker) Option {
	return func(d *Dispatcher) { d.tracker = t }
}

// WithLogger sets the dispatch logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a dispatcher applying events to sink. sink may be nil.
func New(doer Doer, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		doer:    doer,
		tracker: NewTracker(),
		sink:    sink,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	metrics.Init()
	return d
}

// Tracker returns the in-flight registry used by d.
func (d *Dispatcher) Tracker() *Tracker {
	return d.tracker
}

// Dispatch runs req unless a request for the same URL is outstanding. It
// returns the applied event and true, or nil and false when suppressed.
func (d *Dispatcher) Dispatch(ctx context.Context, req endpoints.Request, h Handlers) (store.Event, bool) {
	log := d.logger.With(
		zap.String("op", string(req.Op)),
		zap.String("method", req.Method),
		zap.String("url", req.URL),
	)

	if !d.tracker.TryTrack(req.URL) {
		log.Debug("request suppressed: already in flight")
		metrics.ObserveRequest(string(req.Op), metrics.OutcomeSuppressed, 0)
		return nil, false
	}

	start := time.Now()
	evt, err := d.trackedRoundTrip(ctx, req, h)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("request failed", zap.Duration("duration", elapsed), zap.Error(err))
		metrics.ObserveRequest(string(req.Op), metrics.OutcomeFailure, elapsed)
		evt = failureEvent(req, h, err)
	} else {
		log.Debug("request completed", zap.Duration("duration", elapsed), zap.String("event", kind(evt)))
		metrics.ObserveRequest(string(req.Op), metrics.OutcomeSuccess, elapsed)
	}

	if d.sink != nil && evt != nil {
		d.sink.Apply(evt)
	}
	return evt, true
}

// trackedRoundTrip clears the in-flight mark even if the doer or a handler panics.
func (d *Dispatcher) trackedRoundTrip(ctx context.Context, req endpoints.Request, h Handlers) (store.Event, error) {
	defer d.tracker.Untrack(req.URL)
	return d.roundTrip(ctx, req, h)
}

func (d *Dispatcher) roundTrip(ctx context.Context, req endpoints.Request, h Handlers) (store.Event, error) {
	body, err := d.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if h.OnSuccess == nil {
		return nil, nil
	}
	evt, err := h.OnSuccess(body)
	if err != nil {
		return nil, &DecodeError{Op: req.Op, URL: req.URL, Err: err}
	}
	return evt, nil
}

func failureEvent(req endpoints.Request, h Handlers, err error) store.Event {
	if h.OnFailure != nil {
		return h.OnFailure(err)
	}
	return store.RequestFailed{Op: req.Op, URL: req.URL, Err: err}
}

func kind(evt store.Event) string {
	if evt == nil {
		return "none"
	}
	return evt.Kind()
}

// Unmarshal decodes body into a T without validating it.
func Unmarshal[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// Decode unmarshals body into a T and validates it against its struct tags.
func Decode[T any](body []byte) (T, error) {
	v, err := Unmarshal[T](body)
	if err != nil {
		return v, err
	}
	if err := models.Validate(v); err != nil {
		return v, fmt.Errorf("validate: %w", err)
	}
	return v, nil
}

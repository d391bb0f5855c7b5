// Package actions exposes one method per crawl-management operation. Each
// method resolves the request, dispatches it and reports the applied event.
package actions

import (
	"context"
	"errors"
	"fmt"

	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/dispatch"
	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidCrawl is returned, wrapped with the failing fields, when a create
// or start request fails client-side validation. No request is sent.
var ErrInvalidCrawl = errors.New("invalid crawl")

const defaultRemoveConcurrency = 4

// Result is the outcome of one action.
type Result struct {
	// Event is the event applied to the store, nil when nothing was dispatched.
	Event store.Event
	// Dispatched is false when validation failed or the URL was already in flight.
	Dispatched bool
	// Err is the API, transport, decode or validation failure, if any.
	Err error
}

// Suppressed reports whether the request was skipped because the same URL
// already had a request outstanding.
func (r Result) Suppressed() bool {
	return !r.Dispatched && r.Err == nil
}

// Service binds a resolver to a dispatcher.
type Service struct {
	resolver          *endpoints.Resolver
	dispatcher        *dispatch.Dispatcher
	logger            *zap.Logger
	removeConcurrency int
}

// NewService creates a new action service.
func NewService(resolver *endpoints.Resolver, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:          resolver,
		dispatcher:        dispatcher,
		logger:            logger,
		removeConcurrency: defaultRemoveConcurrency,
	}
}

// Resolver returns the endpoint resolver used by s.
func (s *Service) Resolver() *endpoints.Resolver {
	return s.resolver
}

func (s *Service) run(ctx context.Context, req endpoints.Request, crawlID string, onSuccess func([]byte) (store.Event, error)) Result {
	var failure error
	evt, ok := s.dispatcher.Dispatch(ctx, req, dispatch.Handlers{
		OnSuccess: onSuccess,
		OnFailure: func(err error) store.Event {
			failure = err
			return store.RequestFailed{
				Op:      req.Op,
				URL:     req.URL,
				CrawlID: crawlID,
				Err:     err,
				Message: client.UserMessage(err),
			}
		},
	})
	return Result{Event: evt, Dispatched: ok, Err: failure}
}

// ListCrawls fetches a full snapshot.
func (s *Service) ListCrawls(ctx context.Context) Result {
	return s.run(ctx, s.resolver.ListCrawls(), "", func(body []byte) (store.Event, error) {
		resp, err := dispatch.Decode[models.CrawlInfosResponse](body)
		if err != nil {
			return nil, err
		}
		return store.SnapshotReceived{Crawls: resp.Crawls}, nil
	})
}

// CreateCrawl validates and submits req. On success the new crawl is stored
// and its full info is fetched.
func (s *Service) CreateCrawl(ctx context.Context, req models.CreateCrawlRequest) Result {
	full := s.resolver.WithCreateDefaults(req)
	if err := models.Validate(full); err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrInvalidCrawl, err)}
	}

	httpReq, err := s.resolver.CreateCrawl(full)
	if err != nil {
		return Result{Err: err}
	}

	res := s.run(ctx, httpReq, "", func(body []byte) (store.Event, error) {
		resp, err := dispatch.Decode[models.CreateCrawlResponse](body)
		if err != nil {
			return nil, err
		}
		patch := full.Patch(resp.ID)
		if resp.Status != "" {
			patch.Status = models.Ptr(resp.Status)
		}
		if resp.Browsers != nil {
			patch.Browsers = resp.Browsers
		}
		return store.CrawlCreated{Patch: patch}, nil
	})

	if created, ok := res.Event.(store.CrawlCreated); ok {
		s.logger.Info("crawl created", zap.String("crawl_id", created.Patch.ID))
		s.GetCrawl(ctx, created.Patch.ID)
	}
	return res
}

// CreatedID returns the id of the crawl created by r, if any.
func (r Result) CreatedID() string {
	if created, ok := r.Event.(store.CrawlCreated); ok {
		return created.Patch.ID
	}
	return ""
}

// GetCrawl fetches the info of crawl id and merges it.
func (s *Service) GetCrawl(ctx context.Context, id string) Result {
	return s.run(ctx, s.resolver.GetCrawl(id), id, func(body []byte) (store.Event, error) {
		resp, err := dispatch.Unmarshal[models.CrawlInfoResponse](body)
		if err != nil {
			return nil, err
		}
		if resp.ID == "" {
			resp.ID = id
		}
		if err := models.Validate(resp); err != nil {
			return nil, err
		}
		return store.CrawlMerged{Patch: resp.CrawlPatch}, nil
	})
}

// GetCrawlURLs fetches the queue, pending and seen lists of crawl id.
func (s *Service) GetCrawlURLs(ctx context.Context, id string) Result {
	return s.run(ctx, s.resolver.GetCrawlURLs(id), id, func(body []byte) (store.Event, error) {
		resp, err := dispatch.Decode[models.CrawlURLsResponse](body)
		if err != nil {
			return nil, err
		}
		return store.CrawlMerged{Patch: resp.Patch(id)}, nil
	})
}

// AddCrawlURLs queues additional URLs on crawl id, then refetches its URL lists.
func (s *Service) AddCrawlURLs(ctx context.Context, id string, urls []string) Result {
	if err := models.Validate(models.QueueURLsRequest{URLs: urls}); err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrInvalidCrawl, err)}
	}
	req, err := s.resolver.AddCrawlURLs(id, urls)
	if err != nil {
		return Result{Err: err}
	}
	res := s.run(ctx, req, id, func(body []byte) (store.Event, error) {
		if _, err := dispatch.Decode[models.OperationSuccessResponse](body); err != nil {
			return nil, err
		}
		return store.CrawlMerged{Patch: models.CrawlPatch{ID: id}}, nil
	})
	if res.Dispatched && res.Err == nil {
		s.GetCrawlURLs(ctx, id)
	}
	return res
}

// StartCrawl starts crawl id. On success the crawl is marked running with the
// browsers the backend launched.
func (s *Service) StartCrawl(ctx context.Context, id string, req models.StartCrawlRequest) Result {
	full := s.resolver.WithStartDefaults(req)
	if err := models.Validate(full); err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrInvalidCrawl, err)}
	}
	httpReq, err := s.resolver.StartCrawl(id, full)
	if err != nil {
		return Result{Err: err}
	}
	return s.run(ctx, httpReq, id, func(body []byte) (store.Event, error) {
		resp, err := dispatch.Decode[models.StartCrawlResponse](body)
		if err != nil {
			return nil, err
		}
		patch := models.CrawlPatch{
			ID:       id,
			Status:   models.Ptr(models.StatusRunning),
			Running:  models.Ptr(true),
			Browsers: resp.Browsers,
			Headless: models.Ptr(full.Headless),
		}
		return store.CrawlMerged{Patch: patch}, nil
	})
}

// StopCrawl stops crawl id and marks it stopped.
func (s *Service) StopCrawl(ctx context.Context, id string) Result {
	return s.run(ctx, s.resolver.StopCrawl(id), id, func(body []byte) (store.Event, error) {
		if _, err := dispatch.Decode[models.OperationSuccessResponse](body); err != nil {
			return nil, err
		}
		return store.CrawlMerged{Patch: models.CrawlPatch{
			ID:      id,
			Status:  models.Ptr(models.StatusStopped),
			Running: models.Ptr(false),
		}}, nil
	})
}

// RemoveCrawl deletes crawl id.
func (s *Service) RemoveCrawl(ctx context.Context, id string) Result {
	return s.run(ctx, s.resolver.RemoveCrawl(id), id, func(body []byte) (store.Event, error) {
		if _, err := dispatch.Decode[models.OperationSuccessResponse](body); err != nil {
			return nil, err
		}
		return store.CrawlRemoved{ID: id}, nil
	})
}

// IsDone asks whether crawl id has finished.
func (s *Service) IsDone(ctx context.Context, id string) (bool, Result) {
	var done bool
	res := s.run(ctx, s.resolver.IsDone(id), id, func(body []byte) (store.Event, error) {
		resp, err := dispatch.Decode[models.CrawlDoneResponse](body)
		if err != nil {
			return nil, err
		}
		done = resp.Done
		return store.DoneChecked{ID: id, Done: resp.Done}, nil
	})
	return done, res
}

// RemoveAll lists every crawl and removes them concurrently. It returns the
// removed ids and the first failure.
func (s *Service) RemoveAll(ctx context.Context) ([]string, error) {
	listed := s.ListCrawls(ctx)
	if listed.Err != nil {
		return nil, listed.Err
	}
	snapshot, ok := listed.Event.(store.SnapshotReceived)
	if !ok {
		return nil, errors.New("crawl list already in flight")
	}

	ids := make([]string, 0, len(snapshot.Crawls))
	for _, c := range snapshot.Crawls {
		ids = append(ids, c.ID)
	}

	removed := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.removeConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			res := s.RemoveCrawl(gctx, id)
			if res.Err != nil {
				return fmt.Errorf("remove %s: %w", id, res.Err)
			}
			removed[i] = res.Dispatched
			return nil
		})
	}
	err := g.Wait()

	out := make([]string, 0, len(ids))
	for i, id := range ids {
		if removed[i] {
			out = append(out, id)
		}
	}
	return out, err
}

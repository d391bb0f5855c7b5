package actions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/dispatch"
	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRoot = "http://crawlman.test"

type mockDoer struct {
	mock.Mock
}

func (m *mockDoer) Do(ctx context.Context, req endpoints.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func withURL(url string) any {
	return mock.MatchedBy(func(req endpoints.Request) bool { return req.URL == url })
}

func newMockService(t *testing.T) (*Service, *mockDoer, *store.Store) {
	t.Helper()
	doer := &mockDoer{}
	s := store.New()
	svc := NewService(
		endpoints.NewResolver(endpoints.Config{Root: testRoot}),
		dispatch.New(doer, s),
		nil,
	)
	return svc, doer, s
}

func validCreate() models.CreateCrawlRequest {
	return models.CreateCrawlRequest{
		CrawlType:   models.CrawlTypeSinglePage,
		NumBrowsers: 2,
		NumTabs:     1,
		SeedURLs:    []string{"https://example.com/"},
		Name:        "example",
	}
}

func TestCreateCrawlRejectsZeroBrowsers(t *testing.T) {
	svc, doer, s := newMockService(t)

	req := validCreate()
	req.NumBrowsers = 0
	res := svc.CreateCrawl(context.Background(), req)

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrInvalidCrawl))
	assert.Contains(t, res.Err.Error(), "num_browsers")
	assert.False(t, res.Dispatched)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
	assert.Zero(t, s.Version())
}

func TestCreateCrawlRejectsEmptySeeds(t *testing.T) {
	svc, doer, _ := newMockService(t)

	req := validCreate()
	req.SeedURLs = nil
	res := svc.CreateCrawl(context.Background(), req)

	assert.ErrorIs(t, res.Err, ErrInvalidCrawl)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestCreateCrawlStoresAndFetchesInfo(t *testing.T) {
	svc, doer, s := newMockService(t)

	doer.On("Do", mock.Anything, withURL(testRoot+"/crawls")).
		Return([]byte(`{"success":true,"id":"abc","status":"new"}`), nil).Once()
	doer.On("Do", mock.Anything, withURL(testRoot+"/crawl/abc")).
		Return([]byte(`{"id":"abc","status":"new","num_queue":3,"start_time":0}`), nil).Once()

	res := svc.CreateCrawl(context.Background(), validCreate())
	require.NoError(t, res.Err)
	assert.True(t, res.Dispatched)
	assert.Equal(t, "abc", res.CreatedID())
	doer.AssertExpectations(t)

	got, ok := s.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "example", got.Name)
	assert.Equal(t, 2, got.NumBrowsers)
	assert.Equal(t, []string{"https://example.com/"}, got.SeedURLs)
	assert.Equal(t, 3, got.NumQueue)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, []string{"abc"}, s.IDs())
}

func TestCreateCrawlMissingIDIsDecodeError(t *testing.T) {
	svc, doer, s := newMockService(t)
	doer.On("Do", mock.Anything, mock.Anything).Return([]byte(`{"success":true}`), nil).Once()

	res := svc.CreateCrawl(context.Background(), validCreate())

	var decErr *dispatch.DecodeError
	require.ErrorAs(t, res.Err, &decErr)
	assert.Zero(t, s.Len())
	assert.Len(t, s.Notifications(), 1)
	doer.AssertNumberOfCalls(t, "Do", 1)
}

func TestStartAndStopMergeStatus(t *testing.T) {
	svc, doer, s := newMockService(t)
	s.Apply(store.CrawlMerged{Patch: models.CrawlPatch{
		ID:    "abc",
		Queue: []models.QueueEntry{{URL: "https://example.com/", Depth: 0}},
	}})

	doer.On("Do", mock.Anything, withURL(testRoot+"/crawl/abc/start")).
		Return([]byte(`{"success":true,"browsers":["b1","b2"]}`), nil).Once()
	doer.On("Do", mock.Anything, withURL(testRoot+"/crawl/abc/stop")).
		Return([]byte(`{"success":true}`), nil).Once()

	res := svc.StartCrawl(context.Background(), "abc", models.StartCrawlRequest{Headless: true})
	require.NoError(t, res.Err)

	got, _ := s.Get("abc")
	assert.Equal(t, models.StatusRunning, got.Status)
	assert.True(t, got.Running)
	assert.True(t, got.Headless)
	assert.Equal(t, []string{"b1", "b2"}, got.Browsers)
	assert.Len(t, got.Queue, 1)

	res = svc.StopCrawl(context.Background(), "abc")
	require.NoError(t, res.Err)

	got, _ = s.Get("abc")
	assert.Equal(t, models.StatusStopped, got.Status)
	assert.False(t, got.Running)
	assert.Equal(t, []string{"b1", "b2"}, got.Browsers)
	doer.AssertExpectations(t)
}

func TestStartRejectsNonPositiveBehaviorTime(t *testing.T) {
	svc, doer, _ := newMockService(t)

	res := svc.StartCrawl(context.Background(), "abc", models.StartCrawlRequest{BehaviorMaxTime: -5})

	assert.ErrorIs(t, res.Err, ErrInvalidCrawl)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestRemoveCrawl(t *testing.T) {
	svc, doer, s := newMockService(t)
	s.Apply(store.SnapshotReceived{Crawls: []models.CrawlPatch{{ID: "a"}, {ID: "b"}}})
	doer.On("Do", mock.Anything, mock.MatchedBy(func(req endpoints.Request) bool {
		return req.Method == http.MethodDelete && req.URL == testRoot+"/crawl/a"
	})).Return([]byte(`{"success":true}`), nil).Once()

	res := svc.RemoveCrawl(context.Background(), "a")
	require.NoError(t, res.Err)
	assert.Equal(t, store.CrawlRemoved{ID: "a"}, res.Event)
	assert.Equal(t, []string{"b"}, s.IDs())
}

func TestAPIErrorSurfacesDetail(t *testing.T) {
	svc, doer, s := newMockService(t)
	apiErr := &client.APIError{Op: endpoints.OpGetCrawl, Status: 404, Detail: "crawl not found"}
	doer.On("Do", mock.Anything, mock.Anything).Return(nil, apiErr).Once()

	res := svc.GetCrawl(context.Background(), "missing")

	assert.True(t, res.Dispatched)
	assert.ErrorIs(t, res.Err, apiErr)
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "crawl not found", notes[0].Message)
	assert.Equal(t, "missing", notes[0].CrawlID)
	assert.False(t, s.Has("missing"))
}

func TestGetCrawlURLsMergesLists(t *testing.T) {
	svc, doer, s := newMockService(t)
	s.Apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: "abc", Name: models.Ptr("keep")}})
	doer.On("Do", mock.Anything, withURL(testRoot+"/crawl/abc/urls")).Return([]byte(`{
		"scopes": [],
		"queue": [{"url": "https://example.com/a", "depth": 1}],
		"pending": ["https://example.com/"],
		"seen": ["https://example.com/", "https://example.com/a"]
	}`), nil).Once()

	res := svc.GetCrawlURLs(context.Background(), "abc")
	require.NoError(t, res.Err)

	got, _ := s.Get("abc")
	assert.Equal(t, "keep", got.Name)
	assert.Equal(t, []models.QueueEntry{{URL: "https://example.com/a", Depth: 1}}, got.Queue)
	assert.Equal(t, 1, got.NumPending)
	assert.Equal(t, 2, got.NumSeen)
}

func TestAddCrawlURLsRefetchesLists(t *testing.T) {
	svc, doer, s := newMockService(t)
	doer.On("Do", mock.Anything, mock.MatchedBy(func(req endpoints.Request) bool {
		return req.Method == http.MethodPost && req.URL == testRoot+"/crawl/abc/urls"
	})).Return([]byte(`{"success":true}`), nil).Once()
	doer.On("Do", mock.Anything, mock.MatchedBy(func(req endpoints.Request) bool {
		return req.Method == http.MethodGet && req.URL == testRoot+"/crawl/abc/urls"
	})).Return([]byte(`{"queue":[{"url":"https://example.com/new","depth":0}]}`), nil).Once()

	res := svc.AddCrawlURLs(context.Background(), "abc", []string{"https://example.com/new"})
	require.NoError(t, res.Err)
	doer.AssertExpectations(t)

	got, _ := s.Get("abc")
	assert.Equal(t, 1, got.NumQueue)
}

func TestAddCrawlURLsValidates(t *testing.T) {
	svc, doer, _ := newMockService(t)

	res := svc.AddCrawlURLs(context.Background(), "abc", []string{"not a url"})

	assert.ErrorIs(t, res.Err, ErrInvalidCrawl)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestIsDone(t *testing.T) {
	svc, doer, s := newMockService(t)
	doer.On("Do", mock.Anything, withURL(testRoot+"/crawl/abc/done")).Return([]byte(`{"done":true}`), nil).Once()

	done, res := svc.IsDone(context.Background(), "abc")
	require.NoError(t, res.Err)
	assert.True(t, done)

	got, _ := s.Get("abc")
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestSuppressedResult(t *testing.T) {
	svc, doer, _ := newMockService(t)
	svc.dispatcher.Tracker().TryTrack(testRoot + "/crawls")

	res := svc.ListCrawls(context.Background())

	assert.True(t, res.Suppressed())
	assert.Nil(t, res.Event)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestRemoveAll(t *testing.T) {
	var mu sync.Mutex
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/crawls":
			_, _ = w.Write([]byte(`{"crawls":[{"id":"a"},{"id":"b"},{"id":"c"}]}`))
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/crawl/"):
			mu.Lock()
			deleted = append(deleted, strings.TrimPrefix(r.URL.Path, "/crawl/"))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := store.New()
	svc := NewService(
		endpoints.NewResolver(endpoints.Config{Root: srv.URL}),
		dispatch.New(client.NewClient(5*time.Second, nil), s),
		nil,
	)

	removed, err := svc.RemoveAll(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, removed)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, deleted)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.IDs())
}

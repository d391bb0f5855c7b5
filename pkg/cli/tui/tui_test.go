package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/cli/tui/managecrawls"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeActions applies canned events to a real store.
type fakeActions struct {
	mu       sync.Mutex
	store    *store.Store
	calls    []string
	startRes *actions.Result
	created  models.CreateCrawlRequest
}

func (f *fakeActions) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeActions) apply(evt store.Event) actions.Result {
	f.store.Apply(evt)
	return actions.Result{Event: evt, Dispatched: true}
}

func (f *fakeActions) ListCrawls(context.Context) actions.Result {
	f.record("list")
	return f.apply(store.SnapshotReceived{Crawls: []models.CrawlPatch{
		{ID: "a", Name: models.Ptr("alpha"), Status: models.Ptr(models.StatusRunning)},
		{ID: "b", Name: models.Ptr("beta"), Status: models.Ptr(models.StatusStopped)},
	}})
}

func (f *fakeActions) CreateCrawl(_ context.Context, req models.CreateCrawlRequest) actions.Result {
	f.record("create")
	f.created = req
	p := req.Patch("new")
	p.Status = models.Ptr(models.StatusRunning)
	p.Browsers = []string{"br1"}
	return f.apply(store.CrawlCreated{Patch: p})
}

func (f *fakeActions) GetCrawl(_ context.Context, id string) actions.Result {
	f.record("info " + id)
	return f.apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: id, NumQueue: models.Ptr(3)}})
}

func (f *fakeActions) GetCrawlURLs(_ context.Context, id string) actions.Result {
	f.record("urls " + id)
	return f.apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: id}})
}

func (f *fakeActions) AddCrawlURLs(_ context.Context, id string, urls []string) actions.Result {
	f.record("add-urls " + id)
	return f.apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: id}})
}

func (f *fakeActions) StartCrawl(_ context.Context, id string, _ models.StartCrawlRequest) actions.Result {
	f.record("start " + id)
	if f.startRes != nil {
		return *f.startRes
	}
	return f.apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: id, Running: models.Ptr(true)}})
}

func (f *fakeActions) StopCrawl(_ context.Context, id string) actions.Result {
	f.record("stop " + id)
	return f.apply(store.CrawlMerged{Patch: models.CrawlPatch{ID: id, Running: models.Ptr(false)}})
}

func (f *fakeActions) RemoveCrawl(_ context.Context, id string) actions.Result {
	f.record("remove " + id)
	return f.apply(store.CrawlRemoved{ID: id})
}

func newDeps(t *testing.T) (Deps, *fakeActions, *store.Store) {
	t.Helper()
	s := store.New()
	fa := &fakeActions{store: s}
	deps := Deps{
		Actions:         fa,
		Store:           s,
		PollInterval:    time.Hour,
		ViewBrowsersURL: "http://browsers.test/attach/",
		CreateDefaults: models.CreateCrawlRequest{
			CrawlType:   models.CrawlTypeSinglePage,
			NumBrowsers: 2,
			NumTabs:     1,
		},
		Now: func() time.Time { return time.Unix(1000, 0) },
	}
	deps.setDefaults()
	return deps, fa, s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends k and runs the returned command once, feeding its message back.
func press(t *testing.T, m tea.Model, k string) tea.Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	if cmd == nil {
		return next
	}
	if msg := cmd(); msg != nil {
		if _, batch := msg.(tea.BatchMsg); !batch {
			next, _ = next.Update(msg)
		}
	}
	return next
}

// typeKey sends k without running follow-up commands such as cursor blinks.
func typeKey(m tea.Model, k string) {
	m.Update(key(k))
}

func loaded(t *testing.T, deps Deps) *manageCrawlsModel {
	t.Helper()
	m := newManageCrawls(deps)
	m.Update(m.listCrawls()())
	require.True(t, m.ready)
	return m
}

func TestManageListRendersStore(t *testing.T) {
	deps, _, _ := newDeps(t)
	m := loaded(t, deps)

	view := m.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "beta")
	assert.Equal(t, "a", m.selectedID)

	press(t, m, "down")
	assert.Equal(t, "b", m.selectedID)
	press(t, m, "down")
	assert.Equal(t, "b", m.selectedID)
}

func TestManageStopSelectedCrawl(t *testing.T) {
	deps, fa, s := newDeps(t)
	m := loaded(t, deps)

	press(t, m, "enter")
	require.Equal(t, managecrawls.StepActionMenu, m.step)

	press(t, m, "3")
	assert.Equal(t, managecrawls.StepActionMenu, m.step)
	assert.Contains(t, fa.calls, "stop a")
	assert.Contains(t, m.View(), "Stopped crawl a")

	got, _ := s.Get("a")
	assert.Equal(t, models.StatusStopped, got.Status)
}

func TestManageSuppressedStartShowsInFlight(t *testing.T) {
	deps, fa, _ := newDeps(t)
	fa.startRes = &actions.Result{}
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "2")

	assert.ErrorIs(t, m.err, errInFlight)
	assert.Equal(t, managecrawls.StepActionMenu, m.step)
}

func TestManageActionError(t *testing.T) {
	deps, fa, _ := newDeps(t)
	fa.startRes = &actions.Result{Dispatched: true, Err: errors.New("browser pool exhausted")}
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "s")
	assert.Contains(t, m.View(), "browser pool exhausted")
}

func TestManageRemoveWithConfirmation(t *testing.T) {
	deps, fa, s := newDeps(t)
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "6")
	require.Equal(t, managecrawls.StepRemoveConfirm, m.step)
	assert.True(t, m.CapturingInput())

	typeKey(m, "y")
	press(t, m, "enter")

	assert.Equal(t, managecrawls.StepDone, m.step)
	assert.Contains(t, fa.calls, "remove a")
	assert.False(t, s.Has("a"))

	press(t, m, "enter")
	assert.Equal(t, managecrawls.StepListCrawls, m.step)
	assert.NotContains(t, m.View(), "alpha")
	assert.Equal(t, "b", m.selectedID)
}

func TestManageRemoveDeclined(t *testing.T) {
	deps, fa, s := newDeps(t)
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "d")
	press(t, m, "enter")

	assert.Equal(t, managecrawls.StepActionMenu, m.step)
	assert.NotContains(t, fa.calls, "remove a")
	assert.True(t, s.Has("a"))
}

func TestManageViewDetailsRefreshes(t *testing.T) {
	deps, fa, _ := newDeps(t)
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "v")

	assert.Equal(t, managecrawls.StepViewDetails, m.step)
	assert.Contains(t, fa.calls, "info a")
	assert.Contains(t, fa.calls, "urls a")
	assert.Contains(t, m.View(), "3 queued")
}

func TestManageAddURLsValidates(t *testing.T) {
	deps, fa, _ := newDeps(t)
	m := loaded(t, deps)

	press(t, m, "enter")
	press(t, m, "a")
	require.Equal(t, managecrawls.StepAddURLs, m.step)

	press(t, m, "enter")
	assert.Error(t, m.err)
	assert.Equal(t, managecrawls.StepAddURLs, m.step)

	m.urls.SetValue("https://example.com/x")
	press(t, m, "enter")
	assert.NoError(t, m.err)
	assert.Contains(t, fa.calls, "add-urls a")
	assert.Equal(t, managecrawls.StepActionMenu, m.step)
}

func TestManageIgnoresStalePollTicks(t *testing.T) {
	deps, fa, _ := newDeps(t)
	m := loaded(t, deps)

	_, cmd := m.Update(pollTickMsg{gen: m.gen - 1})
	assert.Nil(t, cmd)

	_, cmd = m.Update(pollTickMsg{gen: m.gen})
	assert.NotNil(t, cmd)
	assert.Len(t, fa.calls, 1)
}

func TestManageShowsNotifications(t *testing.T) {
	deps, _, s := newDeps(t)
	m := loaded(t, deps)

	s.Apply(store.RequestFailed{CrawlID: "a", Message: "crawl not found"})
	assert.Contains(t, m.View(), "a: crawl not found")

	press(t, m, "x")
	assert.Empty(t, s.Notifications())
}

func TestCreateFormValidation(t *testing.T) {
	deps, fa, _ := newDeps(t)
	f := newCreateCrawlForm(deps)

	f.inputs[fieldBrowsers].SetValue("0")
	f.inputs[fieldSeeds].SetValue("https://example.com/")
	_, err := f.request()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browsers")

	f.inputs[fieldBrowsers].SetValue("2")
	f.inputs[fieldType].SetValue("everything")
	_, err = f.request()
	assert.Error(t, err)

	f.inputs[fieldType].SetValue("custom")
	f.inputs[fieldDepth].SetValue("3")
	req, err := f.request()
	require.NoError(t, err)
	assert.Equal(t, models.CrawlTypeCustom, req.CrawlType)
	assert.Equal(t, 3, *req.CrawlDepth)
	assert.Equal(t, []string{"https://example.com/"}, req.SeedURLs)
	assert.Empty(t, fa.calls)
}

func TestCreateFormSubmits(t *testing.T) {
	deps, fa, s := newDeps(t)
	f := newCreateCrawlForm(deps)
	f.inputs[fieldName].SetValue("example")
	f.inputs[fieldSeeds].SetValue("https://example.com/")

	_ = f.setFocus(fieldSeeds)
	_, cmd := f.Update(key("enter"))
	require.NotNil(t, cmd)
	require.Equal(t, formSubmitting, f.state)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if msg, ok := c().(crawlCreatedMsg); ok {
			f.Update(msg)
		}
	}

	assert.Equal(t, formDone, f.state)
	assert.Equal(t, "example", fa.created.Name)
	assert.Equal(t, 2, fa.created.NumBrowsers)
	assert.True(t, s.Has("new"))
	assert.Contains(t, f.View(), "http://browsers.test/attach/br1")
}

func TestRootMenuNavigation(t *testing.T) {
	deps, _, _ := newDeps(t)
	root := NewRootModel(deps).(*rootModel)

	assert.Contains(t, root.View(), "Crawl Manager")

	root.Update(key("2"))
	require.NotNil(t, root.current)
	assert.Contains(t, root.View(), "Create Crawl")

	root.Update(MenuNavigationMsg{})
	assert.Nil(t, root.current)

	_, cmd := root.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWrapperForwardsKeysWhileCapturing(t *testing.T) {
	deps, _, _ := newDeps(t)
	form := newCreateCrawlForm(deps)
	w := NewViewportWrapper(form, ViewportConfig{EnableMenu: true, EnableHelp: true})

	w.Update(key("m"))
	w.Update(key("q"))
	assert.Equal(t, "mq", form.inputs[fieldName].Value())

	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

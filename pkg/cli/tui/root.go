// Package tui implements the interactive crawl manager: a menu shell that
// hands control to the manage and create flows. All views render from the
// shared crawl store; actions only dispatch requests.
package tui

import (
	"context"
	"strings"
	"time"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/cli/tui/managecrawls"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Actions is the subset of the action service the TUI drives.
type Actions interface {
	ListCrawls(ctx context.Context) actions.Result
	CreateCrawl(ctx context.Context, req models.CreateCrawlRequest) actions.Result
	GetCrawl(ctx context.Context, id string) actions.Result
	GetCrawlURLs(ctx context.Context, id string) actions.Result
	AddCrawlURLs(ctx context.Context, id string, urls []string) actions.Result
	StartCrawl(ctx context.Context, id string, req models.StartCrawlRequest) actions.Result
	StopCrawl(ctx context.Context, id string) actions.Result
	RemoveCrawl(ctx context.Context, id string) actions.Result
}

// CrawlStore is the read side of the crawl store.
type CrawlStore interface {
	List() []models.Crawl
	Get(id string) (models.Crawl, bool)
	Notifications() []store.Notification
	DismissNotifications()
}

// Deps are the shared dependencies of every flow.
type Deps struct {
	Ctx     context.Context
	Actions Actions
	Store   CrawlStore
	// Changes is signalled by the store after every applied event.
	Changes         <-chan struct{}
	PollInterval    time.Duration
	ViewBrowsersURL string
	// CreateDefaults prefills the create form.
	CreateDefaults models.CreateCrawlRequest
	Logger         *zap.Logger
	Now            func() time.Time
}

func (d *Deps) setDefaults() {
	if d.Ctx == nil {
		d.Ctx = context.Background()
	}
	if d.PollInterval <= 0 {
		d.PollInterval = 5 * time.Second
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// rootModel is the Bubble Tea model that acts as an app shell for multiple flows.
// It presents a simple menu and then hands control to a specific flow model.
type rootModel struct {
	deps Deps

	// Current active flow (when nil, we are in the main menu)
	current tea.Model
	size    *tea.WindowSizeMsg
}

// NewRootModel constructs the root app-shell model.
func NewRootModel(deps Deps) tea.Model {
	deps.setDefaults()
	return &rootModel{deps: deps}
}

func (m *rootModel) Init() tea.Cmd {
	return waitForChange(m.deps.Ctx, m.deps.Changes)
}

// waitForChange turns one store signal into a StoreChangedMsg.
func waitForChange(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ch:
			return managecrawls.StoreChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MenuNavigationMsg:
		m.deps.Logger.Debug("returning to menu")
		m.current = nil
		return m, nil

	case managecrawls.StoreChangedMsg:
		// rendering reads the store directly, so the next View is current
		return m, tea.Batch(waitForChange(m.deps.Ctx, m.deps.Changes), m.forward(msg))

	case tea.WindowSizeMsg:
		m.size = &msg
		return m, m.forward(msg)
	}

	if m.current != nil {
		return m, m.forward(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "1":
			return m, m.open(NewManageCrawlsModel(m.deps))
		case "2":
			return m, m.open(NewCreateCrawlForm(m.deps))
		}
	}
	return m, nil
}

func (m *rootModel) forward(msg tea.Msg) tea.Cmd {
	if m.current == nil {
		return nil
	}
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return cmd
}

// open starts flow, replaying the last known window size to it.
func (m *rootModel) open(flow tea.Model) tea.Cmd {
	m.current = flow
	cmd := flow.Init()
	if m.size != nil {
		var sizeCmd tea.Cmd
		m.current, sizeCmd = m.current.Update(*m.size)
		cmd = tea.Batch(cmd, sizeCmd)
	}
	return cmd
}

func (m *rootModel) View() string {
	if m.current != nil {
		return m.current.View()
	}

	var b strings.Builder

	b.WriteString(renderTitle("Crawl Manager"))
	b.WriteString(renderDivider(60))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Select an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " Manage crawls (list, view, start, stop, remove)\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " Create crawl\n")
	b.WriteString("\n")
	b.WriteString(renderToast(m.deps.Store.Notifications()))
	b.WriteString(helpStyle.Render("Press the number of an option, or 'q' / Esc to quit.") + "\n")

	return b.String()
}

package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/cli/tui/managecrawls"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/utils"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	actionStart   = "start"
	actionStop    = "stop"
	actionRefresh = "refresh"
	actionAddURLs = "add-urls"
	actionRemove  = "remove"
)

var errInFlight = errors.New("a request for this crawl is already in progress")

// pollGen tells the tick chains of successive manage flows apart.
var pollGen atomic.Int64

type pollTickMsg struct {
	gen int64
}

// manageCrawlsModel lists crawls and runs actions on the selected one. It
// tracks the selection by id so polling can reorder or drop crawls safely.
type manageCrawlsModel struct {
	deps Deps
	gen  int64

	selectedID string
	step       int
	ready      bool
	err        error
	status     string
	pending    string

	confirm textinput.Model
	urls    textinput.Model
	spinner spinner.Model

	width int
}

// NewManageCrawlsModel creates the manage crawls flow.
func NewManageCrawlsModel(deps Deps) tea.Model {
	deps.setDefaults()
	return NewViewportWrapper(newManageCrawls(deps), ViewportConfig{
		Title:       "Manage Crawls",
		ShowHeader:  true,
		ShowFooter:  true,
		UseViewport: true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: ManageCrawlsHelpContent,
		Logger:      deps.Logger,
		MinWidth:    60,
		MinHeight:   10,
	})
}

func newManageCrawls(deps Deps) *manageCrawlsModel {
	confirm := textinput.New()
	confirm.Placeholder = "y/N"
	confirm.CharLimit = 3
	confirm.Width = 10

	urls := textinput.New()
	urls.Placeholder = "https://example.com/a, https://example.com/b"
	urls.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return &manageCrawlsModel{
		deps:    deps,
		gen:     pollGen.Add(1),
		step:    managecrawls.StepListCrawls,
		confirm: confirm,
		urls:    urls,
		spinner: sp,
	}
}

func (m *manageCrawlsModel) Init() tea.Cmd {
	return tea.Batch(m.listCrawls(), m.tick(), m.spinner.Tick)
}

func (m *manageCrawlsModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.deps.PollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

func (m *manageCrawlsModel) listCrawls() tea.Cmd {
	ctx, svc := m.deps.Ctx, m.deps.Actions
	return func() tea.Msg {
		return managecrawls.CrawlsLoadedMsg{Result: svc.ListCrawls(ctx)}
	}
}

// CapturingInput reports whether a text input has focus.
func (m *manageCrawlsModel) CapturingInput() bool {
	return m.step == managecrawls.StepRemoveConfirm || m.step == managecrawls.StepAddURLs
}

// crawls returns the store contents in display order.
func (m *manageCrawlsModel) crawls() []models.Crawl {
	return m.deps.Store.List()
}

// selectedIndex resolves the selected id, falling back to the first crawl.
func (m *manageCrawlsModel) selectedIndex(crawls []models.Crawl) int {
	for i, c := range crawls {
		if c.ID == m.selectedID {
			return i
		}
	}
	if len(crawls) > 0 {
		m.selectedID = crawls[0].ID
		return 0
	}
	return -1
}

func (m *manageCrawlsModel) selectedCrawl() (models.Crawl, bool) {
	if m.selectedID == "" {
		return models.Crawl{}, false
	}
	return m.deps.Store.Get(m.selectedID)
}

func (m *manageCrawlsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pollTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, tea.Batch(m.listCrawls(), m.tick())

	case managecrawls.CrawlsLoadedMsg:
		m.ready = true
		if msg.Result.Err != nil {
			m.deps.Logger.Debug("crawl list failed", zap.Error(msg.Result.Err))
		}
		m.selectedIndex(m.crawls())
		if m.step != managecrawls.StepListCrawls && !m.hasSelection() {
			m.step = managecrawls.StepListCrawls
		}
		return m, nil

	case managecrawls.ActionDoneMsg:
		return m.handleActionDone(msg)

	case managecrawls.StoreChangedMsg:
		if m.step != managecrawls.StepListCrawls && m.step != managecrawls.StepDone && !m.hasSelection() {
			m.step = managecrawls.StepListCrawls
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.step {
		case managecrawls.StepListCrawls:
			return m.handleListKeys(msg)
		case managecrawls.StepActionMenu:
			return m.handleActionMenuKeys(msg)
		case managecrawls.StepViewDetails:
			return m.handleViewDetailsKeys(msg)
		case managecrawls.StepRemoveConfirm:
			return m.handleRemoveConfirmKeys(msg)
		case managecrawls.StepAddURLs:
			return m.handleAddURLsKeys(msg)
		case managecrawls.StepWorking:
			if msg.String() == "esc" {
				// the request keeps running; its result still lands in the store
				m.step = managecrawls.StepActionMenu
			}
			return m, nil
		case managecrawls.StepDone:
			m.step = managecrawls.StepListCrawls
			return m, nil
		}
	}

	return m, nil
}

func (m *manageCrawlsModel) hasSelection() bool {
	_, ok := m.selectedCrawl()
	return ok
}

func (m *manageCrawlsModel) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if handleQuitKeys(key) {
		return m, tea.Quit
	}

	crawls := m.crawls()
	idx := m.selectedIndex(crawls)
	if next, handled := handleListNavigation(key, idx, len(crawls)); handled {
		if next >= 0 && next < len(crawls) {
			m.selectedID = crawls[next].ID
		}
		return m, nil
	}

	switch key {
	case "enter":
		if idx >= 0 {
			m.step = managecrawls.StepActionMenu
			m.clearMessages()
		}
	case "r":
		return m, m.listCrawls()
	case "x":
		m.deps.Store.DismissNotifications()
	case "esc":
		return m, func() tea.Msg { return MenuNavigationMsg{} }
	}
	return m, nil
}

func (m *manageCrawlsModel) handleActionMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if handleQuitKeys(key) {
		return m, tea.Quit
	}

	switch key {
	case "esc", "b":
		m.step = managecrawls.StepListCrawls
		m.clearMessages()
		return m, nil
	case "1", "v":
		m.step = managecrawls.StepViewDetails
		return m, m.runAction(actionRefresh)
	case "2", "s":
		return m, m.runAction(actionStart)
	case "3", "t":
		return m, m.runAction(actionStop)
	case "4", "r":
		return m, m.runAction(actionRefresh)
	case "5", "a":
		m.step = managecrawls.StepAddURLs
		m.clearMessages()
		m.urls.SetValue("")
		m.urls.Focus()
		return m, textinput.Blink
	case "6", "d":
		m.step = managecrawls.StepRemoveConfirm
		m.confirm.SetValue("")
		m.confirm.Focus()
		return m, textinput.Blink
	case "x":
		m.deps.Store.DismissNotifications()
	}
	return m, nil
}

func (m *manageCrawlsModel) handleViewDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if handleQuitKeys(key) {
		return m, tea.Quit
	}
	switch key {
	case "esc", "b", "enter":
		m.step = managecrawls.StepActionMenu
	case "r":
		return m, m.runAction(actionRefresh)
	}
	return m, nil
}

func (m *manageCrawlsModel) handleRemoveConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.confirm.Blur()
		m.step = managecrawls.StepActionMenu
		return m, nil
	case "enter":
		m.confirm.Blur()
		answer := strings.ToLower(strings.TrimSpace(m.confirm.Value()))
		if answer == "y" || answer == "yes" {
			return m, m.runAction(actionRemove)
		}
		m.step = managecrawls.StepActionMenu
		return m, nil
	}
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

func (m *manageCrawlsModel) handleAddURLsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.urls.Blur()
		m.step = managecrawls.StepActionMenu
		return m, nil
	case "enter":
		urls, err := utils.ParseURLList(m.urls.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.urls.Blur()
		return m, m.runURLs(urls)
	}
	var cmd tea.Cmd
	m.urls, cmd = m.urls.Update(msg)
	return m, cmd
}

func (m *manageCrawlsModel) clearMessages() {
	m.err = nil
	m.status = ""
}

// runAction dispatches action against the selected crawl.
func (m *manageCrawlsModel) runAction(action string) tea.Cmd {
	id := m.selectedID
	if id == "" {
		return nil
	}
	m.clearMessages()
	m.pending = action
	if m.step != managecrawls.StepViewDetails {
		m.step = managecrawls.StepWorking
	}

	ctx, svc := m.deps.Ctx, m.deps.Actions
	return func() tea.Msg {
		var res actions.Result
		switch action {
		case actionStart:
			res = svc.StartCrawl(ctx, id, models.StartCrawlRequest{})
		case actionStop:
			res = svc.StopCrawl(ctx, id)
		case actionRemove:
			res = svc.RemoveCrawl(ctx, id)
		case actionRefresh:
			res = svc.GetCrawl(ctx, id)
			if res.Err == nil {
				res = svc.GetCrawlURLs(ctx, id)
			}
		}
		return managecrawls.ActionDoneMsg{Action: action, CrawlID: id, Result: res}
	}
}

func (m *manageCrawlsModel) runURLs(urls []string) tea.Cmd {
	id := m.selectedID
	m.clearMessages()
	m.pending = actionAddURLs
	m.step = managecrawls.StepWorking

	ctx, svc := m.deps.Ctx, m.deps.Actions
	return func() tea.Msg {
		return managecrawls.ActionDoneMsg{
			Action:  actionAddURLs,
			CrawlID: id,
			Result:  svc.AddCrawlURLs(ctx, id, urls),
		}
	}
}

func (m *manageCrawlsModel) handleActionDone(msg managecrawls.ActionDoneMsg) (tea.Model, tea.Cmd) {
	m.pending = ""
	res := msg.Result

	back := managecrawls.StepActionMenu
	if m.step == managecrawls.StepViewDetails {
		back = managecrawls.StepViewDetails
	}

	switch {
	case res.Err != nil:
		m.err = res.Err
	case res.Suppressed():
		m.err = errInFlight
	case msg.Action == actionRemove:
		m.status = fmt.Sprintf("Removed crawl %s", msg.CrawlID)
		if m.selectedID == msg.CrawlID {
			m.selectedID = ""
		}
		m.step = managecrawls.StepDone
		return m, nil
	default:
		m.status = successText(msg.Action, msg.CrawlID)
	}

	if m.step == managecrawls.StepWorking || m.step == managecrawls.StepAddURLs {
		m.step = back
	}
	if !m.hasSelection() {
		m.step = managecrawls.StepListCrawls
	}
	return m, nil
}

func successText(action, id string) string {
	switch action {
	case actionStart:
		return "Started crawl " + id
	case actionStop:
		return "Stopped crawl " + id
	case actionAddURLs:
		return "Queued URLs on crawl " + id
	default:
		return "Refreshed crawl " + id
	}
}

func (m *manageCrawlsModel) getMaxWidth() int {
	if m.width > 0 {
		return m.width
	}
	return managecrawls.DefaultWidth
}

func (m *manageCrawlsModel) View() string {
	if !m.ready {
		return renderLoadingState(m.spinner.View() + " Loading crawls...")
	}

	var body string
	switch m.step {
	case managecrawls.StepListCrawls:
		body = m.renderList()
	case managecrawls.StepActionMenu:
		body = m.renderActionMenu()
	case managecrawls.StepViewDetails:
		body = m.renderViewDetails()
	case managecrawls.StepRemoveConfirm:
		body = m.renderRemoveConfirm()
	case managecrawls.StepAddURLs:
		body = m.renderAddURLs()
	case managecrawls.StepWorking:
		body = renderLoadingState(fmt.Sprintf("%s Running %s on %s...", m.spinner.View(), m.pending, m.selectedID))
	case managecrawls.StepDone:
		body = renderSuccessView(m.status)
	}

	return body + m.renderMessages() + renderToast(m.deps.Store.Notifications())
}

func (m *manageCrawlsModel) renderMessages() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(renderInlineError(m.err) + "\n")
	}
	if m.status != "" && m.step != managecrawls.StepDone {
		b.WriteString(renderSuccess(m.status) + "\n")
	}
	return b.String()
}

func (m *manageCrawlsModel) renderList() string {
	crawls := m.crawls()
	if len(crawls) == 0 {
		return renderEmptyState("No crawls found.") + "\n" +
			helpStyle.Render("(r to refresh, Esc for menu)") + "\n"
	}

	s := renderCrawlList(crawls, m.selectedIndex(crawls), "Select a crawl:", m.getMaxWidth(), m.deps.Now())
	s += helpStyle.Render("(↑/↓ or j/k to navigate, Enter to select, r to refresh, Esc for menu)") + "\n"
	return s
}

func (m *manageCrawlsModel) renderSelectedHeader(title string) (string, bool) {
	c, ok := m.selectedCrawl()
	if !ok {
		return renderErrorView(fmt.Errorf("crawl %s no longer exists", m.selectedID)), false
	}

	var b strings.Builder
	b.WriteString(renderTitle(title))
	b.WriteString(renderDivider(m.getMaxWidth()))
	b.WriteString("\n\n")
	b.WriteString(boldStyle.Render("Selected Crawl:") + "\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", crawlNameStyle.Render(c.DisplayName()),
		statusStyle(c.Status).Render("["+string(c.Status)+"]")))
	b.WriteString(fmt.Sprintf("  %s\n\n", crawlURLStyle.Render(seedSummary(c))))
	return b.String(), true
}

func (m *manageCrawlsModel) renderActionMenu() string {
	header, ok := m.renderSelectedHeader("Crawl Actions")
	if !ok {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(boldStyle.Render("Choose an action:") + "\n\n")
	b.WriteString("  " + selectedMarkerStyle.Render("1)") + " View details\n")
	b.WriteString("  " + selectedMarkerStyle.Render("2)") + " Start crawl\n")
	b.WriteString("  " + selectedMarkerStyle.Render("3)") + " Stop crawl\n")
	b.WriteString("  " + selectedMarkerStyle.Render("4)") + " Refresh info and URLs\n")
	b.WriteString("  " + selectedMarkerStyle.Render("5)") + " Queue more URLs\n")
	b.WriteString("  " + selectedMarkerStyle.Render("6)") + " Remove crawl\n")
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("(Press 1-6, Esc/b to go back, q to quit)") + "\n")
	return b.String()
}

func (m *manageCrawlsModel) renderViewDetails() string {
	c, ok := m.selectedCrawl()
	if !ok {
		return renderErrorView(fmt.Errorf("crawl %s no longer exists", m.selectedID))
	}

	var b strings.Builder
	b.WriteString(renderTitle("Crawl Details"))
	b.WriteString(renderDivider(m.getMaxWidth()))
	b.WriteString("\n\n")
	b.WriteString(renderCrawlDetails(c, m.deps.ViewBrowsersURL, m.getMaxWidth(), m.deps.Now()))
	b.WriteString("\n")
	if m.pending != "" {
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render("refreshing...") + "\n")
	}
	b.WriteString(helpStyle.Render("(r to refresh, Enter/b/Esc to go back)") + "\n")
	return b.String()
}

func (m *manageCrawlsModel) renderRemoveConfirm() string {
	header, ok := m.renderSelectedHeader("Remove Crawl")
	if !ok {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(renderWarning("Confirm Removal") + "\n\n")
	b.WriteString(boldStyle.Render("Confirm (y/N):"))
	b.WriteString(" ")
	b.WriteString(m.confirm.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("(Press Enter to confirm, Esc to cancel)") + "\n")
	return b.String()
}

func (m *manageCrawlsModel) renderAddURLs() string {
	header, ok := m.renderSelectedHeader("Queue URLs")
	if !ok {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(fieldLabelStyle.Render("URLs:"))
	b.WriteString(m.urls.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("(Comma or space separated. Enter to queue, Esc to cancel)") + "\n")
	return b.String()
}

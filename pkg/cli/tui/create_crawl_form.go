package tui

import (
	"fmt"
	"strconv"
	"strings"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/utils"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldType
	fieldBrowsers
	fieldTabs
	fieldDepth
	fieldSeeds
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldName:     "Name",
	fieldType:     "Crawl type",
	fieldBrowsers: "Browsers",
	fieldTabs:     "Tabs",
	fieldDepth:    "Depth",
	fieldSeeds:    "Seed URLs",
}

const (
	formEditing = iota
	formSubmitting
	formDone
)

type crawlCreatedMsg struct {
	result actions.Result
}

// createCrawlForm collects the fields of a new crawl and submits it.
type createCrawlForm struct {
	deps Deps

	inputs  [fieldCount]textinput.Model
	focus   int
	state   int
	err     error
	created models.Crawl
	spinner spinner.Model
}

// NewCreateCrawlForm creates the create crawl flow.
func NewCreateCrawlForm(deps Deps) tea.Model {
	deps.setDefaults()
	return NewViewportWrapper(newCreateCrawlForm(deps), ViewportConfig{
		Title:       "Create Crawl",
		ShowHeader:  true,
		ShowFooter:  true,
		EnableHelp:  true,
		EnableMenu:  true,
		HelpContent: CreateCrawlHelpContent,
		Logger:      deps.Logger,
	})
}

func newCreateCrawlForm(deps Deps) *createCrawlForm {
	d := deps.CreateDefaults
	f := &createCrawlForm{deps: deps}

	for i := range f.inputs {
		in := textinput.New()
		in.Width = 50
		f.inputs[i] = in
	}

	f.inputs[fieldName].Placeholder = "optional"
	f.inputs[fieldType].Placeholder = "single-page, same-domain, all-links or custom"
	f.inputs[fieldType].SetValue(string(d.CrawlType))
	f.inputs[fieldBrowsers].SetValue(positiveOrEmpty(d.NumBrowsers))
	f.inputs[fieldTabs].SetValue(positiveOrEmpty(d.NumTabs))
	f.inputs[fieldDepth].Placeholder = "custom crawls only, -1 for unlimited"
	if d.CrawlDepth != nil {
		f.inputs[fieldDepth].SetValue(strconv.Itoa(*d.CrawlDepth))
	}
	f.inputs[fieldSeeds].Placeholder = "https://example.com/"
	f.inputs[fieldSeeds].Width = 70

	f.inputs[fieldName].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle
	f.spinner = sp
	return f
}

func positiveOrEmpty(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (f *createCrawlForm) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput reports whether a text input has focus.
func (f *createCrawlForm) CapturingInput() bool {
	return f.state == formEditing
}

func (f *createCrawlForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case crawlCreatedMsg:
		return f.handleCreated(msg.result)

	case spinner.TickMsg:
		if f.state != formSubmitting {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case tea.KeyMsg:
		switch f.state {
		case formSubmitting:
			return f, nil
		case formDone:
			return f, func() tea.Msg { return MenuNavigationMsg{} }
		}

		switch msg.String() {
		case "esc":
			return f, func() tea.Msg { return MenuNavigationMsg{} }
		case "tab", "down":
			return f, f.setFocus(f.focus + 1)
		case "shift+tab", "up":
			return f, f.setFocus(f.focus - 1)
		case "enter":
			if f.focus < fieldCount-1 {
				return f, f.setFocus(f.focus + 1)
			}
			return f, f.submit()
		}
	}

	if f.state != formEditing {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *createCrawlForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// request builds the create request from the form fields.
func (f *createCrawlForm) request() (models.CreateCrawlRequest, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	req := f.deps.CreateDefaults
	req.Name = value(fieldName)
	req.CrawlType = models.CrawlType(value(fieldType))
	if !req.CrawlType.Valid() {
		return req, fmt.Errorf("crawl type %q is not one of: single-page, same-domain, all-links, custom", req.CrawlType)
	}

	var err error
	if req.NumBrowsers, err = utils.ParsePositiveInt("browsers", value(fieldBrowsers)); err != nil {
		return req, err
	}
	if req.NumTabs, err = utils.ParsePositiveInt("tabs", value(fieldTabs)); err != nil {
		return req, err
	}

	req.CrawlDepth = nil
	if raw := value(fieldDepth); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil || depth < -1 {
			return req, fmt.Errorf("depth must be a number >= -1")
		}
		req.CrawlDepth = models.Ptr(depth)
	}

	if req.SeedURLs, err = utils.ParseURLList(value(fieldSeeds)); err != nil {
		return req, err
	}
	return req, nil
}

func (f *createCrawlForm) submit() tea.Cmd {
	req, err := f.request()
	if err != nil {
		f.err = err
		return nil
	}

	f.err = nil
	f.state = formSubmitting
	ctx, svc := f.deps.Ctx, f.deps.Actions
	return tea.Batch(f.spinner.Tick, func() tea.Msg {
		return crawlCreatedMsg{result: svc.CreateCrawl(ctx, req)}
	})
}

func (f *createCrawlForm) handleCreated(res actions.Result) (tea.Model, tea.Cmd) {
	switch {
	case res.Err != nil:
		f.err = res.Err
		f.state = formEditing
		return f, f.setFocus(f.focus)
	case res.Suppressed():
		f.err = errInFlight
		f.state = formEditing
		return f, f.setFocus(f.focus)
	}

	id := res.CreatedID()
	f.created, _ = f.deps.Store.Get(id)
	f.created.ID = id
	f.state = formDone
	return f, nil
}

func (f *createCrawlForm) View() string {
	switch f.state {
	case formSubmitting:
		return renderLoadingState(f.spinner.View() + " Creating crawl...")
	case formDone:
		return f.renderCreated()
	}

	var b strings.Builder
	b.WriteString(boldStyle.Render("New crawl:") + "\n\n")
	for i, in := range f.inputs {
		marker := " "
		if i == f.focus {
			marker = selectedMarkerStyle.Render("→")
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", marker, fieldLabelStyle.Render(fieldLabels[i]+":"), in.View()))
	}
	b.WriteString("\n")
	if f.err != nil {
		b.WriteString(renderInlineError(f.err) + "\n\n")
	}
	b.WriteString(helpStyle.Render("(Tab/Shift+Tab to move, Enter on the last field to create, Esc to cancel)") + "\n")
	return b.String()
}

func (f *createCrawlForm) renderCreated() string {
	c := f.created
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderSuccess("Crawl created: " + c.ID))
	b.WriteString("\n\n")
	b.WriteString(fieldLabelStyle.Render("Status:"))
	b.WriteString(" " + statusStyle(c.Status).Render(string(c.Status)) + "\n")
	for _, id := range c.Browsers {
		b.WriteString(fieldLabelStyle.Render("Browser:"))
		b.WriteString(" " + f.deps.ViewBrowsersURL + id + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Press any key to return to the menu...") + "\n")
	return b.String()
}

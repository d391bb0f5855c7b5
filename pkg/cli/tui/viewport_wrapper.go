package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// MenuNavigationMsg asks the root model to close the active flow.
type MenuNavigationMsg struct{}

// inputCapturer is implemented by flows that have a focused text input. While
// it reports true the wrapper forwards every key except ctrl+c.
type inputCapturer interface {
	CapturingInput() bool
}

// ViewportWrapper wraps a model with viewport and common command support
type ViewportWrapper struct {
	model    tea.Model
	viewport viewport.Model
	width    int
	height   int
	config   ViewportConfig
	logger   *zap.Logger

	showHelp    bool
	helpContent string
}

// ViewportConfig configures the wrapper behavior
type ViewportConfig struct {
	Title        string
	ShowHeader   bool
	ShowFooter   bool
	HeaderHeight int  // Fixed header height (0 = auto)
	FooterHeight int  // Fixed footer height (0 = auto)
	UseViewport  bool // Enable scrolling (false = simple responsive)
	MinWidth     int
	MinHeight    int
	EnableHelp   bool
	EnableMenu   bool
	HelpContent  func() string
	Logger       *zap.Logger
}

// NewViewportWrapper creates a new wrapper around a model
func NewViewportWrapper(model tea.Model, config ViewportConfig) *ViewportWrapper {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewportWrapper{
		model:    model,
		viewport: viewport.New(0, 0),
		config:   config,
		logger:   logger,
		width:    80,
		height:   24,
	}
}

func (w *ViewportWrapper) Init() tea.Cmd {
	if w.model == nil {
		return nil
	}
	return w.model.Init()
}

func (w *ViewportWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = max(msg.Width, w.config.MinWidth)
		w.height = max(msg.Height, w.config.MinHeight)
		w.calculateLayout()
		w.logger.Debug("viewport resized",
			zap.Int("width", w.width),
			zap.Int("height", w.height),
		)
		return w, w.forward(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := w.handleCommonKey(key.String()); handled {
			return w, cmd
		}
	}

	if w.showHelp {
		return w, nil
	}

	cmd := w.forward(msg)
	if w.config.UseViewport {
		var vpCmd tea.Cmd
		w.viewport, vpCmd = w.viewport.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}
	return w, cmd
}

func (w *ViewportWrapper) forward(msg tea.Msg) tea.Cmd {
	if w.model == nil {
		return nil
	}
	var cmd tea.Cmd
	w.model, cmd = w.model.Update(msg)
	return cmd
}

func (w *ViewportWrapper) capturing() bool {
	c, ok := w.model.(inputCapturer)
	return ok && c.CapturingInput()
}

// handleCommonKey processes help, menu and quit keys.
func (w *ViewportWrapper) handleCommonKey(key string) (tea.Cmd, bool) {
	if key == "ctrl+c" {
		return tea.Quit, true
	}
	if w.showHelp {
		switch key {
		case "?", "esc", "q":
			w.showHelp = false
		}
		return nil, true
	}
	if w.capturing() {
		return nil, false
	}

	switch key {
	case "?":
		if w.config.EnableHelp {
			w.showHelp = true
			if w.config.HelpContent != nil {
				w.helpContent = w.config.HelpContent()
			}
			return nil, true
		}
	case "m":
		if w.config.EnableMenu {
			return func() tea.Msg { return MenuNavigationMsg{} }, true
		}
	case "q":
		return tea.Quit, true
	}
	return nil, false
}

func (w *ViewportWrapper) View() string {
	if w.showHelp {
		return w.renderHelpOverlay()
	}

	content := ""
	if w.model != nil {
		content = w.model.View()
	}

	if w.config.UseViewport {
		w.calculateLayout()
		w.viewport.SetContent(content)
		content = w.viewport.View()
	}

	var parts []string
	if w.config.ShowHeader {
		parts = append(parts, w.renderHeader())
	}
	parts = append(parts, content)
	if w.config.ShowFooter {
		parts = append(parts, w.renderFooter())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (w *ViewportWrapper) calculateLayout() {
	if !w.config.UseViewport {
		return
	}

	headerH := w.config.HeaderHeight
	if headerH == 0 && w.config.ShowHeader {
		headerH = 2
	}
	footerH := w.config.FooterHeight
	if footerH == 0 && w.config.ShowFooter {
		footerH = 1
	}

	if w.width <= 0 {
		w.width = 80
	}
	if w.height <= 0 {
		w.height = 24
	}
	w.viewport.Width = w.width
	w.viewport.Height = max(w.height-headerH-footerH, 1)
}

func (w *ViewportWrapper) renderHeader() string {
	var b strings.Builder

	if w.config.Title != "" {
		b.WriteString(renderTitle(w.config.Title))
	}

	switch {
	case w.config.EnableMenu && w.config.EnableHelp:
		b.WriteString(helpStyle.Render("Press 'm' for menu, '?' for help") + "\n")
	case w.config.EnableHelp:
		b.WriteString(helpStyle.Render("Press '?' for help") + "\n")
	case w.config.EnableMenu:
		b.WriteString(helpStyle.Render("Press 'm' for menu") + "\n")
	}

	return b.String()
}

func (w *ViewportWrapper) renderFooter() string {
	shortcuts := []string{}
	if w.config.EnableHelp {
		shortcuts = append(shortcuts, "? help")
	}
	if w.config.EnableMenu {
		shortcuts = append(shortcuts, "m menu")
	}
	shortcuts = append(shortcuts, "q quit")

	return helpStyle.Render(strings.Join(shortcuts, " • "))
}

func (w *ViewportWrapper) renderHelpOverlay() string {
	helpText := w.helpContent
	if helpText == "" {
		helpText = "No help available"
	}

	overlayStyle := lipgloss.NewStyle().
		Width(w.width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	return overlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		"",
		helpText,
		"",
		helpStyle.Render("Press '?' or Esc to close"),
	))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/innertalk/innertalk-tui/internal/chat"
	"github.com/innertalk/innertalk-tui/internal/config"
	appcontext "github.com/innertalk/innertalk-tui/internal/context"
	"github.com/innertalk/innertalk-tui/internal/controller"
	"github.com/innertalk/innertalk-tui/internal/models"
	"github.com/innertalk/innertalk-tui/internal/ollama"
	"github.com/innertalk/innertalk-tui/internal/storage"
)

// =============================================================================
// APP MODEL
// =============================================================================

// App is the top-level Bubble Tea model.
type App struct {
	cfg     *config.Config
	store   *chat.Store
	ctrl    *controller.Controller
	mgr     *models.Manager
	prefs   *storage.Prefs
	agg     *appcontext.Aggregator
	keys    KeyMap
	send    func(tea.Msg)
	persist func()

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	sidebarOpen bool
	modelsOpen  bool
	foldersOpen bool

	serverUp  bool
	streaming bool
	status    string
	pending   []chat.Attachment

	pullName     string
	pullProgress ollama.PullProgress
	pulling      bool
}

// New creates the application model.
func New(cfg *config.Config, store *chat.Store, ctrl *controller.Controller, mgr *models.Manager, prefs *storage.Prefs, agg *appcontext.Aggregator) *App {
	input := textarea.New()
	input.Placeholder = "Ask anything..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	return &App{
		cfg:         cfg,
		store:       store,
		ctrl:        ctrl,
		mgr:         mgr,
		prefs:       prefs,
		agg:         agg,
		keys:        DefaultKeyMap(),
		input:       input,
		spinner:     sp,
		sidebarOpen: !prefs.SidebarCollapsed(),
		serverUp:    true,
	}
}

// SetSend wires the program's message injector so background work (model
// pulls, deletes) can stream events into the update loop.
func (a *App) SetSend(send func(tea.Msg)) {
	a.send = send
}

// SetPersist wires the durable-snapshot writer. The app calls it after each
// chat mutation so a crash loses nothing beyond the in-flight token burst.
func (a *App) SetPersist(persist func()) {
	a.persist = persist
}

func (a *App) persistNow() {
	if a.persist != nil {
		a.persist()
	}
}

// Init starts the background tickers.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		textarea.Blink,
		healthCheckCmd(a.cfg),
		refreshModelsCmd(a.mgr),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}
		// With a panel open there is no input to type into.
		if a.modelsOpen || a.foldersOpen {
			return a, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	// Controller events: the store already reflects them, the UI
	// re-renders, tracks phase, and flushes the durable snapshot on each
	// recorded turn.
	case controller.StreamStartedMsg:
		a.streaming = true
		a.status = "Generating..."
		a.refreshViewport()
		a.persistNow()

	case controller.StreamTokenMsg:
		a.refreshViewport()

	case controller.StreamCompleteMsg:
		a.streaming = false
		a.status = ""
		a.refreshViewport()
		a.persistNow()

	case controller.StreamErrorMsg:
		a.streaming = false
		a.status = errorStyle.Render("Stream failed")
		a.refreshViewport()
		a.persistNow()

	case controller.StreamCancelledMsg:
		a.streaming = false
		a.status = "Cancelled"
		a.refreshViewport()
		a.persistNow()

	case FolderChangedMsg:
		a.status = "Context refreshed: " + msg.Path

	case healthMsg:
		a.serverUp = msg.ok
		a.ctrl.SetServiceAvailable(msg.ok)
		cmds = append(cmds, healthTickCmd())

	case healthTickMsg:
		cmds = append(cmds, healthCheckCmd(a.cfg))

	case modelsMsg:
		if msg.err == nil && len(msg.list) > 0 && a.prefs.SelectedModel() == "" {
			a.prefs.SetSelectedModel(msg.list[0].Name)
		}

	case pullProgressMsg:
		a.pulling = true
		a.pullName = msg.name
		a.pullProgress = msg.progress

	case pullDoneMsg:
		a.pulling = false
		if msg.err != nil {
			a.status = errorStyle.Render("Pull failed: " + msg.err.Error())
		} else {
			a.status = "Pulled " + msg.name
		}
		cmds = append(cmds, refreshModelsCmd(a.mgr))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)

	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// handleKey routes application-level shortcuts. Unhandled keys fall through
// to the focused component.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.modelsOpen {
		if cmd, handled := a.handleModelPanelKey(msg); handled {
			return cmd, true
		}
	}
	if a.foldersOpen {
		if cmd, handled := a.handleFolderPanelKey(msg); handled {
			return cmd, true
		}
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, a.keys.Cancel):
		if a.streaming {
			a.ctrl.Cancel()
			return nil, true
		}
		if a.modelsOpen || a.foldersOpen {
			a.modelsOpen = false
			a.foldersOpen = false
			return nil, true
		}
		return nil, false

	case key.Matches(msg, a.keys.Submit):
		return a.submit(), true

	case key.Matches(msg, a.keys.NewChat):
		conv := a.store.NewConversation(a.cfg.DefaultModel)
		a.store.SetActive(conv.ID)
		a.refreshViewport()
		a.persistNow()
		return nil, true

	case key.Matches(msg, a.keys.DeleteChat):
		if active := a.store.Active(); active != nil {
			a.ctrl.DeleteConversation(active.ID)
			a.refreshViewport()
			a.persistNow()
		}
		return nil, true

	case key.Matches(msg, a.keys.ToggleSidebar):
		a.sidebarOpen = !a.sidebarOpen
		a.prefs.SetSidebarCollapsed(!a.sidebarOpen)
		a.resize(a.width, a.height)
		return nil, true

	case key.Matches(msg, a.keys.ToggleModels):
		a.modelsOpen = !a.modelsOpen
		a.foldersOpen = false
		return nil, true

	case key.Matches(msg, a.keys.ToggleFolders):
		a.foldersOpen = !a.foldersOpen
		a.modelsOpen = false
		return nil, true

	case key.Matches(msg, a.keys.NextChat):
		a.cycleConversation(1)
		return nil, true

	case key.Matches(msg, a.keys.PrevChat):
		a.cycleConversation(-1)
		return nil, true
	}
	return nil, false
}

// handleModelPanelKey handles keys while the model panel is open: digits
// pull the numbered suggestion, "d" deletes the selected model.
func (a *App) handleModelPanelKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := msg.String()

	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' && a.send != nil && !a.pulling {
		recs := a.recommendations()
		idx := int(s[0] - '1')
		if idx < len(recs) {
			PullModel(a.mgr, recs[idx].Name, a.send)
			a.pulling = true
			a.pullName = recs[idx].Name
			return nil, true
		}
	}

	if s == "d" && a.send != nil {
		if name := a.prefs.SelectedModel(); name != "" {
			DeleteModel(a.mgr, name, a.send)
			return nil, true
		}
	}

	return nil, false
}

// handleFolderPanelKey handles keys while the folders panel is open: digits
// remove the numbered folder, "r" re-reads everything.
func (a *App) handleFolderPanelKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := msg.String()

	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		folders := a.agg.Folders()
		idx := int(s[0] - '1')
		if idx < len(folders) {
			a.agg.RemoveFolder(folders[idx].ID)
			a.status = "Removed " + folders[idx].Name
			a.persistNow()
			return nil, true
		}
	}

	if s == "r" {
		a.refreshFolders()
		return nil, true
	}

	return nil, false
}

// submit sends the input to the controller, carrying any staged attachments.
// Slash commands are handled locally. A busy rejection leaves the input
// intact so nothing the user typed is lost.
func (a *App) submit() tea.Cmd {
	text := a.input.Value()
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "/") && a.handleCommand(text) {
		return nil
	}

	convID := a.store.ActiveID()
	if _, err := a.ctrl.Send(convID, text, a.pending); err != nil {
		if err == controller.ErrBusy {
			a.status = "Wait for the current response to finish"
			return nil
		}
		a.status = errorStyle.Render(err.Error())
		return nil
	}

	a.pending = nil
	a.input.Reset()
	a.refreshViewport()
	// Covers the unreachable-server path, which records a turn without
	// emitting stream events.
	a.persistNow()
	return nil
}

// cycleConversation moves the active selection through creation order.
func (a *App) cycleConversation(delta int) {
	convs := a.store.Conversations()
	if len(convs) == 0 {
		return
	}

	active := a.store.ActiveID()
	idx := 0
	for i, conv := range convs {
		if conv.ID == active {
			idx = i
			break
		}
	}

	idx = (idx + delta + len(convs)) % len(convs)
	a.store.SetActive(convs[idx].ID)
	a.refreshViewport()
}

// resize recomputes the component layout for new terminal dimensions.
func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	contentWidth := width
	if a.sidebarOpen {
		contentWidth -= a.cfg.UI.SidebarWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	inputHeight := 4 // textarea plus its border line
	statusHeight := 1
	viewHeight := height - inputHeight - statusHeight
	if viewHeight < 3 {
		viewHeight = 3
	}

	if !a.ready {
		a.viewport = viewport.New(contentWidth, viewHeight)
		a.ready = true
	} else {
		a.viewport.Width = contentWidth
		a.viewport.Height = viewHeight
	}
	a.input.SetWidth(contentWidth - 2)

	if a.cfg.UI.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(contentWidth-4),
		)
		if err == nil {
			a.renderer = renderer
		}
	}

	a.refreshViewport()
}

// refreshViewport re-renders the active conversation and pins the view to
// the bottom so new tokens stay visible.
func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderConversation(a.store.Active()))
	a.viewport.GotoBottom()
}

package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"gopherview/internal/config"
	"gopherview/internal/content"
	"gopherview/internal/domain"
	"gopherview/internal/navigation"
	"gopherview/internal/suggest"
	"gopherview/internal/ui/views"
)

// focus selects which widget receives key presses
type focus int

const (
	focusContent focus = iota
	focusAddress
	focusPrompt // query for a search entry
)

// selection remembers the chosen menu entry of one history frame
type selection struct {
	addr  domain.Address
	entry int
}

// chrome is the number of rows used by the address bar, status and help
const chrome = 3

// Model represents the UI state of one browsing tab
type Model struct {
	config   *config.Config
	nav      *navigation.Controller
	fetcher  navigation.Fetcher
	engine   *suggest.Engine
	renderer *views.Renderer
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	address  textinput.Model
	prompt   textinput.Model
	viewport viewport.Model
	pager    *PagerOps

	focus         focus
	suggestions   []suggest.Suggestion
	suggestCursor int // -1 means the typed text
	content       content.Content
	contentErr    error
	cursor        int // selected menu entry, -1 when none
	selections    map[int]selection
	promptTarget  domain.Address
	notice        string
	start         string

	width  int
	height int
}

// NewModel creates a new UI model
func NewModel(cfg *config.Config, nav *navigation.Controller, fetcher navigation.Fetcher) *Model {
	addr := textinput.New()
	addr.Prompt = "gopher> "
	addr.Placeholder = "address or search terms"

	prompt := textinput.New()
	prompt.Prompt = "search> "

	engine := suggest.NewEngine()
	engine.MaxResults = cfg.UI.MaxSuggestions
	engine.Fuzzy = cfg.UI.FuzzySuggestions

	return &Model{
		config:        cfg,
		nav:           nav,
		fetcher:       fetcher,
		engine:        engine,
		renderer:      views.NewRenderer(views.NewStyles(), cfg.UI.MarkdownStyle, cfg.UI.WordWrap),
		keys:          defaultKeyMap(),
		help:          help.New(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		address:       addr,
		prompt:        prompt,
		viewport:      viewport.New(80, 20),
		suggestCursor: -1,
		cursor:        -1,
		selections:    make(map[int]selection),
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager = NewPagerOps(p)
}

// SetStart sets the address or search submitted on startup
func (m *Model) SetStart(raw string) {
	m.start = raw
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.start != "" {
		cmds = append(cmds, m.submit(m.start))
	} else {
		cmds = append(cmds, m.focusAddressBar(""))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.address.Width = msg.Width - len(m.address.Prompt) - 1
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chrome)
		m.render()
		return m, nil

	case fetchDoneMsg:
		if m.nav.Complete(msg.res) {
			m.refresh()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.notice = "Save failed: " + msg.err.Error()
		} else {
			m.notice = fmt.Sprintf("Saved %s (%s)", msg.path, humanize.Bytes(uint64(msg.size)))
		}
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			log.Printf("pager: %v", msg.err)
			m.notice = "Pager failed: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.focus {
		case focusAddress:
			return m.updateAddress(msg)
		case focusPrompt:
			return m.updatePrompt(msg)
		default:
			return m.updateContent(msg)
		}
	}
	return m, nil
}

func (m *Model) updateContent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.nav.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollTo(m.viewport.YOffset - m.viewport.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollTo(m.viewport.YOffset + m.viewport.Height)
	case key.Matches(msg, m.keys.Top):
		m.scrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.scrollTo(m.viewport.TotalLineCount())

	case key.Matches(msg, m.keys.Open):
		return m, m.activate()

	case key.Matches(msg, m.keys.Back):
		if req, ok := m.nav.Back(); ok {
			return m, m.begin(req)
		}
	case key.Matches(msg, m.keys.Forward):
		if req, ok := m.nav.Forward(); ok {
			return m, m.begin(req)
		}
	case key.Matches(msg, m.keys.Stop):
		if m.nav.Stop() {
			m.notice = "Stopped"
			m.refresh()
		}
	case key.Matches(msg, m.keys.Reload):
		if req, ok := m.nav.Reload(); ok {
			return m, m.begin(req)
		}

	case key.Matches(msg, m.keys.GoTo):
		return m, m.focusAddressBar(m.nav.State().AddressBar)
	case key.Matches(msg, m.keys.Search):
		return m, m.focusAddressBar("")

	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Pager):
		if t, ok := m.content.(content.Text); ok && m.pager != nil {
			return m, m.pager.pagerCmd(t.Body)
		}
	case key.Matches(msg, m.keys.Help):
		if m.pager != nil {
			return m, m.pager.pagerCmd(renderHelpContent(m.keys))
		}
	}
	return m, nil
}

func (m *Model) updateAddress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.blurAddressBar()
		if s := m.nav.State(); s.HasCurrent {
			m.nav.EditAddressBar(s.Current.String())
		}
		return m, nil

	case tea.KeyUp:
		if m.suggestCursor >= 0 {
			m.suggestCursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.suggestCursor < len(m.suggestions)-1 {
			m.suggestCursor++
		}
		return m, nil

	case tea.KeyTab:
		if m.suggestCursor >= 0 {
			m.address.SetValue(m.suggestions[m.suggestCursor].String())
			m.address.CursorEnd()
			m.onAddressEdited()
		}
		return m, nil

	case tea.KeyEnter:
		var cmd tea.Cmd
		if m.suggestCursor >= 0 {
			cmd = m.accept(m.suggestions[m.suggestCursor])
		} else {
			cmd = m.submit(m.address.Value())
		}
		if m.notice == "" {
			m.blurAddressBar()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	before := m.address.Value()
	m.address, cmd = m.address.Update(msg)
	if m.address.Value() != before {
		m.onAddressEdited()
	}
	return m, cmd
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.prompt.Blur()
		m.focus = focusContent
		return m, nil

	case tea.KeyEnter:
		query := strings.TrimSpace(m.prompt.Value())
		if query == "" {
			m.notice = "Enter search terms"
			return m, nil
		}
		m.prompt.Blur()
		m.focus = focusContent
		return m, m.navigate(m.promptTarget.WithQuery(query))
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) onAddressEdited() {
	m.nav.EditAddressBar(m.address.Value())
	m.suggestions = m.engine.Suggest(m.address.Value(), m.nav.History())
	m.suggestCursor = -1
	m.notice = ""
}

func (m *Model) focusAddressBar(text string) tea.Cmd {
	m.focus = focusAddress
	m.address.SetValue(text)
	m.address.CursorEnd()
	m.onAddressEdited()
	return m.address.Focus()
}

func (m *Model) blurAddressBar() {
	m.focus = focusContent
	m.address.Blur()
	m.suggestions = nil
	m.suggestCursor = -1
}

// accept acts on a chosen suggestion
func (m *Model) accept(s suggest.Suggestion) tea.Cmd {
	switch s.Kind {
	case suggest.KindHistory:
		return m.navigate(s.Address)
	case suggest.KindSearch:
		return m.search(s.Text)
	default:
		return m.submit(s.Text)
	}
}

// submit classifies address-bar text and starts the fetch
func (m *Model) submit(raw string) tea.Cmd {
	m.notice = ""
	req, err := m.nav.Submit(raw)
	if err != nil {
		m.reject(raw, err)
		return nil
	}
	return m.push(req)
}

func (m *Model) search(text string) tea.Cmd {
	m.notice = ""
	req, err := m.nav.Search(text)
	if err != nil {
		m.reject(text, err)
		return nil
	}
	return m.push(req)
}

func (m *Model) navigate(addr domain.Address) tea.Cmd {
	m.notice = ""
	req, err := m.nav.Navigate(addr)
	if err != nil {
		m.reject(addr.String(), err)
		return nil
	}
	return m.push(req)
}

func (m *Model) reject(input string, err error) {
	log.Printf("[%s] rejected %q: %v", m.nav.ID(), input, err)
	switch {
	case errors.Is(err, navigation.ErrEmptyQuery):
		m.notice = "Enter an address or search terms"
	default:
		m.notice = "Cannot open " + input + ": " + err.Error()
	}
}

// push is begin for intents that add a new history frame
func (m *Model) push(req navigation.Request) tea.Cmd {
	delete(m.selections, m.nav.HistoryCursor())
	return m.begin(req)
}

// begin shows the loading state for req and returns the command that
// performs the fetch
func (m *Model) begin(req navigation.Request) tea.Cmd {
	m.refresh()
	return fetchCmd(req, m.fetcher)
}

// activate opens the selected menu entry
func (m *Model) activate() tea.Cmd {
	menu, ok := m.content.(content.Menu)
	if !ok || m.cursor < 0 || m.cursor >= len(menu.Entries) {
		return nil
	}
	entry := menu.Entries[m.cursor]
	switch entry.Kind {
	case content.EntryLink:
		return m.navigate(entry.Address)
	case content.EntrySearch:
		m.promptTarget = entry.Address
		m.focus = focusPrompt
		m.prompt.SetValue("")
		m.prompt.Placeholder = "search " + entry.Name
		return m.prompt.Focus()
	case content.EntryExternal:
		m.notice = "External link: " + entry.URL
	}
	return nil
}

// refresh re-reads controller state into the view
func (m *Model) refresh() {
	c, err := m.nav.Content()
	m.content = c
	m.contentErr = err
	m.cursor = -1
	if menu, ok := c.(content.Menu); ok {
		m.cursor = m.restoreSelection(menu)
	}
	m.render()
	m.viewport.SetYOffset(m.nav.State().Scroll)
}

// restoreSelection returns the entry chosen when this frame was last
// shown, or the first selectable entry from the scroll position
func (m *Model) restoreSelection(menu content.Menu) int {
	s := m.nav.State()
	sel, ok := m.selections[m.nav.HistoryCursor()]
	if ok && sel.addr.SameDestination(s.Current) &&
		sel.entry < len(menu.Entries) && menu.Entries[sel.entry].Kind != content.EntryInfo {
		return sel.entry
	}
	return nextSelectable(menu.Entries, s.Scroll-1, 1)
}

// remember records the selected entry for the current frame
func (m *Model) remember() {
	if s := m.nav.State(); s.HasCurrent && m.cursor >= 0 {
		m.selections[m.nav.HistoryCursor()] = selection{addr: s.Current, entry: m.cursor}
	}
}

// render redraws the viewport content keeping the scroll offset
func (m *Model) render() {
	offset := m.viewport.YOffset
	m.viewport.SetContent(m.renderer.RenderContent(m.content, m.cursor, m.viewport.Width))
	m.viewport.SetYOffset(offset)
}

func (m *Model) scrollTo(offset int) {
	m.viewport.SetYOffset(offset)
	m.nav.UpdateScroll(m.viewport.YOffset)
}

// moveCursor moves the menu selection, or scrolls non-menu content
func (m *Model) moveCursor(delta int) {
	menu, ok := m.content.(content.Menu)
	if !ok {
		m.scrollTo(m.viewport.YOffset + delta)
		return
	}
	next := nextSelectable(menu.Entries, m.cursor, delta)
	if next < 0 {
		// nothing selectable that way, scroll to reveal info lines
		m.scrollTo(m.viewport.YOffset + delta)
		return
	}
	m.cursor = next
	m.remember()
	m.render()
	switch {
	case m.cursor < m.viewport.YOffset:
		m.scrollTo(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.scrollTo(m.cursor - m.viewport.Height + 1)
	}
}

// nextSelectable returns the first non-info entry after from in the
// direction of delta, or -1
func nextSelectable(entries []content.MenuEntry, from, delta int) int {
	step := 1
	if delta < 0 {
		step = -1
	}
	for i := from + step; i >= 0 && i < len(entries); i += step {
		if entries[i].Kind != content.EntryInfo {
			return i
		}
	}
	return -1
}

func (m *Model) save() tea.Cmd {
	addr := m.nav.State().Current
	switch c := m.content.(type) {
	case content.Download:
		return saveCmd(m.config.UI.DownloadDir, c.Filename, c.Data)
	case content.Image:
		return saveCmd(m.config.UI.DownloadDir, content.SuggestedFilename(addr), c.Data)
	case content.Text:
		return saveCmd(m.config.UI.DownloadDir, content.SuggestedFilename(addr), []byte(c.Body))
	}
	m.notice = "Nothing to save"
	return nil
}

// hint describes the selected entry for the status line
func (m *Model) hint() string {
	menu, ok := m.content.(content.Menu)
	if !ok || m.cursor < 0 || m.cursor >= len(menu.Entries) {
		return ""
	}
	e := menu.Entries[m.cursor]
	if e.Kind == content.EntryExternal {
		return e.URL
	}
	return e.Address.String()
}

// View renders the UI
func (m *Model) View() string {
	s := m.nav.State()
	styles := m.renderer.Styles()

	var top string
	switch m.focus {
	case focusAddress:
		top = styles.AddressBarFocused.Render(m.address.View())
	case focusPrompt:
		top = styles.AddressBarFocused.Render(m.prompt.View())
	default:
		top = styles.AddressBar.Render(m.address.Prompt + s.AddressBar)
	}

	body := m.viewport.View()
	if m.contentErr != nil {
		body = styles.StatusError.Render(m.contentErr.Error())
	}
	if m.focus == focusAddress && len(m.suggestions) > 0 {
		body = overlay(body, m.renderer.RenderSuggestions(m.suggestions, m.suggestCursor, m.width))
	}

	status := m.renderer.RenderStatus(views.StatusState{
		Width:    m.width,
		Loading:  s.Phase == navigation.PhaseLoading,
		Spinner:  m.spinner.View(),
		Status:   s.Status,
		Err:      s.Err,
		Notice:   m.notice,
		Hint:     m.hint(),
		Size:     s.Loaded.Size,
		Elapsed:  s.Loaded.Elapsed,
		HasStats: s.HasCurrent && s.Phase == navigation.PhaseIdle && !s.Stopped,
	})

	return strings.Join([]string{top, body, status, styles.Help.Render(m.help.View(m.keys))}, "\n")
}

// overlay replaces the first lines of base with top
func overlay(base, top string) string {
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	for i, l := range topLines {
		if i < len(baseLines) {
			baseLines[i] = l
		} else {
			baseLines = append(baseLines, l)
		}
	}
	return strings.Join(baseLines, "\n")
}

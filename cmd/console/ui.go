package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jit-rpg/engine/pkg/actor"
	"github.com/jit-rpg/engine/pkg/content"
	"github.com/jit-rpg/engine/pkg/event"
	"github.com/jit-rpg/engine/pkg/grid"
	"github.com/jit-rpg/engine/pkg/session"
	"github.com/jit-rpg/engine/pkg/world"
)

const (
	enemyTurnDelay  = 700 * time.Millisecond
	placeholderName = "Vault Dweller"
)

// screen is the UI's own coarse state, layered over the session mode.
type screen int

const (
	screenTitle screen = iota
	screenCreate
	screenGame
)

type titleChoice int

const (
	titleNewGame titleChoice = iota
	titleLoadGame
	titleQuit
)

// enemyTurnMsg fires after the presentation delay so the player sees
// the turn change before the enemies act.
type enemyTurnMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("108")). // sage
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	floorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	wallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	waterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("214")).
				Bold(true)

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Strikethrough(true)
)

// messageStyles maps session message categories to their rendering.
var messageStyles = map[event.Category]lipgloss.Style{
	event.MsgSystem:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	event.MsgAction:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	event.MsgCombat:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	event.MsgDialog:  lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	event.MsgQuest:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	event.MsgLoot:    lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
	event.MsgWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	event.MsgHumor:   lipgloss.NewStyle().Foreground(lipgloss.Color("177")).Italic(true),
}

type logLine struct {
	category event.Category
	text     string
}

// messageLog is shared by pointer between the bus subscription and the
// model, which BubbleTea copies by value on every update.
type messageLog struct {
	lines []logLine
}

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	sess   *session.Session
	bundle *content.Bundle
	store  session.SaveStore

	log         *messageLog
	logViewport viewport.Model
	nameInput   textinput.Model

	screen screen
	ready  bool
	width  int
	height int

	// Title screen
	titleCursor titleChoice

	// Character creation
	attrs        map[actor.Attribute]int
	attrCursor   int
	creatingName bool

	// Explored fog-of-war per map id.
	explored map[string]map[grid.Point]bool

	// Look mode
	looking bool
	cursor  grid.Point

	// Combat target index into Enemies().
	target int

	// Modals
	showQuitModal bool
	showInventory bool
	invCursor     int
	showQuests    bool
	showSaves     bool
	savesLoading  bool
	saveMode      bool // true: saving, false: loading
	saveCursor    int
	saveMetas     []session.SaveMeta
	saveErr       error
}

var saveSlots = []string{"slot1", "slot2", "slot3"}

var titleCaser = cases.Title(language.English)

type savesListedMsg struct {
	metas []session.SaveMeta
	err   error
}

func NewConsoleUI(sess *session.Session, bundle *content.Bundle, store session.SaveStore) ConsoleUI {
	log := &messageLog{}
	sess.Bus().Subscribe(event.UIMessage, func(args ...any) {
		var cat event.Category
		var text string
		if len(args) > 0 {
			cat, _ = args[0].(event.Category)
		}
		if len(args) > 1 {
			text, _ = args[1].(string)
		}
		if text != "" {
			log.lines = append(log.lines, logLine{category: cat, text: text})
		}
	})

	ti := textinput.New()
	ti.Placeholder = placeholderName
	ti.CharLimit = 24
	ti.Width = 26
	ti.Focus()

	attrs := make(map[actor.Attribute]int, len(actor.Attributes))
	for _, a := range actor.Attributes {
		attrs[a] = actor.AttrDefault
	}

	vp := viewport.New(60, 12)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		sess:         sess,
		bundle:       bundle,
		store:        store,
		log:          log,
		logViewport:  vp,
		nameInput:    ti,
		screen:       screenTitle,
		attrs:        attrs,
		creatingName: true,
		explored:     map[string]map[grid.Point]bool{},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case enemyTurnMsg:
		cmb := m.sess.Combat()
		if cmb.InCombat() && !cmb.PlayerTurn() {
			cmb.ResolveEnemyTurn()
		}
		m.rememberVisible()
		m.refreshLog()
		return m, nil

	case savesListedMsg:
		m.savesLoading = false
		m.saveMetas = msg.metas
		m.saveErr = msg.err
		return m, nil
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch m.screen {
	case screenTitle:
		return m.updateTitle(msg)
	case screenCreate:
		return m.updateCreate(msg)
	default:
		return m.updateGame(msg)
	}
}

func (m *ConsoleUI) layout() {
	sideWidth := m.sideWidth()
	m.logViewport.Width = m.width - sideWidth - 6
	m.logViewport.Height = m.logHeight()
	m.refreshLog()
}

func (m ConsoleUI) sideWidth() int {
	w := m.width / 4
	if w < 26 {
		w = 26
	}
	return w
}

// logHeight leaves room for the map panel above the message log.
func (m ConsoleUI) logHeight() int {
	mapRows := 14
	if cur := m.sess.World().CurrentMap(); cur != nil {
		mapRows = cur.Height + 2
	}
	h := m.height - mapRows - 4
	if h < 5 {
		h = 5
	}
	return h
}

// --- Title screen ---

func (m ConsoleUI) updateTitle(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.titleCursor > 0 {
			m.titleCursor--
		}
	case tea.KeyDown:
		if m.titleCursor < titleQuit {
			m.titleCursor++
		}
	case tea.KeyEnter:
		switch m.titleCursor {
		case titleNewGame:
			m.screen = screenCreate
			m.creatingName = true
			m.nameInput.Focus()
			return m, textinput.Blink
		case titleLoadGame:
			m.showSaves = true
			m.saveMode = false
			m.saveCursor = 0
			m.savesLoading = true
			m.screen = screenGame
			return m, m.listSaves()
		case titleQuit:
			return m, tea.Quit
		}
	}
	return m, nil
}

// --- Character creation ---

func (m ConsoleUI) attrPool() int {
	total := len(actor.Attributes)*actor.AttrDefault + actor.AttrBonusPoints
	for _, a := range actor.Attributes {
		total -= m.attrs[a]
	}
	return total
}

func (m ConsoleUI) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.creatingName {
		switch key.Type {
		case tea.KeyEsc:
			m.screen = screenTitle
			return m, nil
		case tea.KeyEnter:
			m.creatingName = false
			m.nameInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	attr := actor.Attributes[m.attrCursor]
	switch key.Type {
	case tea.KeyEsc:
		m.creatingName = true
		m.nameInput.Focus()
		return m, textinput.Blink
	case tea.KeyUp:
		if m.attrCursor > 0 {
			m.attrCursor--
		}
	case tea.KeyDown:
		if m.attrCursor < len(actor.Attributes)-1 {
			m.attrCursor++
		}
	case tea.KeyRight:
		if m.attrPool() > 0 && m.attrs[attr] < actor.AttrMax {
			m.attrs[attr]++
		}
	case tea.KeyLeft:
		if m.attrs[attr] > actor.AttrMin {
			m.attrs[attr]--
		}
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			name = placeholderName
		}
		m.log.lines = nil
		m.sess.StartNewGame(name, m.attrs)
		m.screen = screenGame
		m.rememberVisible()
		m.layout()
		m.refreshLog()
	}
	return m, nil
}

// --- Game screen ---

func (m ConsoleUI) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case m.showSaves:
			return m.updateSavesModal(msg)
		case m.showInventory:
			return m.updateInventoryModal(msg)
		case m.showQuests:
			return m.updateQuestsModal(msg)
		case m.looking:
			return m.updateLook(msg)
		}

		switch m.sess.Mode() {
		case session.ModePlaying:
			return m.updatePlaying(msg)
		case session.ModeDialog:
			return m.updateDialog(msg)
		case session.ModeCombat:
			return m.updateCombat(msg)
		case session.ModeGameOver:
			return m.updateGameOver(msg)
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updatePlaying(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "esc":
		m.showQuitModal = true
		return m, nil
	case "up", "w", "k":
		return m.move(0, -1)
	case "down", "s", "j":
		return m.move(0, 1)
	case "left", "a", "h":
		return m.move(-1, 0)
	case "right", "d", "l":
		return m.move(1, 0)
	case "e", "enter":
		m.sess.InteractNearby()
		m.afterAction()
		// Combat can open on interaction with a hostile.
		return m.maybeEnemyTurn()
	case "x":
		if p := m.sess.Player(); p != nil {
			m.looking = true
			m.cursor = p.Position
		}
	case "i":
		m.showInventory = true
		m.invCursor = 0
	case "q":
		m.showQuests = true
	case "ctrl+s":
		m.showSaves = true
		m.saveMode = true
		m.saveCursor = 0
		return m, m.listSaves()
	case "ctrl+l":
		m.showSaves = true
		m.saveMode = false
		m.saveCursor = 0
		m.savesLoading = true
		return m, m.listSaves()
	case "c":
		m.copyLog()
		m.refreshLog()
	}
	return m, nil
}

func (m ConsoleUI) move(dx, dy int) (tea.Model, tea.Cmd) {
	m.sess.TryMovePlayer(dx, dy)
	m.afterAction()
	return m.maybeEnemyTurn()
}

// afterAction refreshes everything a session call may have touched.
func (m *ConsoleUI) afterAction() {
	m.rememberVisible()
	m.layout()
	m.refreshLog()
}

// maybeEnemyTurn schedules enemy resolution when combat opened with
// the enemies holding initiative.
func (m ConsoleUI) maybeEnemyTurn() (tea.Model, tea.Cmd) {
	cmb := m.sess.Combat()
	if cmb.InCombat() && !cmb.PlayerTurn() {
		return m, tea.Tick(enemyTurnDelay, func(time.Time) tea.Msg {
			return enemyTurnMsg{}
		})
	}
	return m, nil
}

func (m ConsoleUI) updateLook(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "x":
		m.looking = false
	case "up", "k":
		m.cursor.Y--
	case "down", "j":
		m.cursor.Y++
	case "left", "h":
		m.cursor.X--
	case "right", "l":
		m.cursor.X++
	case "enter":
		m.sess.Examine(m.cursor)
		m.refreshLog()
	}
	if cur := m.sess.World().CurrentMap(); cur != nil {
		m.cursor = clampPoint(m.cursor, cur)
	}
	return m, nil
}

func clampPoint(p grid.Point, mp *world.MapData) grid.Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.X >= mp.Width {
		p.X = mp.Width - 1
	}
	if p.Y >= mp.Height {
		p.Y = mp.Height - 1
	}
	return p
}

func (m ConsoleUI) updateDialog(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.showQuitModal = true
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key.String()[0] - '1')
		view := m.sess.Dialog().Current()
		if view == nil || idx >= len(view.Responses) || !view.Responses[idx].Available {
			return m, nil
		}
		m.sess.Dialog().SelectResponse(idx)
		m.afterAction()
		return m.maybeEnemyTurn()
	}
	return m, nil
}

func (m ConsoleUI) updateCombat(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmb := m.sess.Combat()
	switch key.String() {
	case "ctrl+c":
		m.showQuitModal = true
		return m, nil
	case "tab":
		if n := len(cmb.Enemies()); n > 0 {
			m.target = (m.target + 1) % n
		}
	case "a", "enter":
		if !cmb.PlayerTurn() {
			return m, nil
		}
		cmb.PlayerAttack(m.targetEnemy())
		m.afterAction()
		return m.maybeEnemyTurn()
	case "i", "u":
		m.showInventory = true
		m.invCursor = 0
	case "f":
		cmb.PlayerFlee()
		m.afterAction()
		return m.maybeEnemyTurn()
	case " ":
		cmb.EndPlayerTurn()
		m.afterAction()
		return m.maybeEnemyTurn()
	}
	return m, nil
}

func (m ConsoleUI) targetEnemy() *world.Entity {
	enemies := m.sess.Combat().Enemies()
	if m.target < len(enemies) && enemies[m.target].HP > 0 {
		return enemies[m.target]
	}
	return m.sess.Combat().FirstEnemy()
}

func (m ConsoleUI) updateGameOver(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "n":
		m.screen = screenCreate
		m.creatingName = true
		m.nameInput.Focus()
		return m, textinput.Blink
	case "esc", "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// --- Modals ---

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y", "enter", "ctrl+c":
		return m, tea.Quit
	case "n", "N", "esc":
		m.showQuitModal = false
	}
	return m, nil
}

func (m ConsoleUI) updateInventoryModal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.sess.Inventory().Entries()
	switch key.String() {
	case "esc", "i":
		m.showInventory = false
	case "up", "k":
		if m.invCursor > 0 {
			m.invCursor--
		}
	case "down", "j":
		if m.invCursor < len(entries)-1 {
			m.invCursor++
		}
	case "enter", "u":
		if m.invCursor >= len(entries) {
			return m, nil
		}
		id := entries[m.invCursor].ItemID
		if m.sess.Combat().InCombat() {
			m.sess.Combat().PlayerUseItem(id)
			m.showInventory = false
			m.afterAction()
			return m.maybeEnemyTurn()
		}
		m.sess.Inventory().UseItem(id)
		m.refreshLog()
	case "e":
		if m.invCursor < len(entries) {
			m.sess.Inventory().EquipItem(entries[m.invCursor].ItemID)
			m.refreshLog()
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuestsModal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "q":
		m.showQuests = false
	}
	return m, nil
}

func (m ConsoleUI) listSaves() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metas, err := store.List(ctx)
		return savesListedMsg{metas: metas, err: err}
	}
}

func (m ConsoleUI) updateSavesModal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.showSaves = false
		if m.sess.Player() == nil {
			m.screen = screenTitle
		}
	case "up", "k":
		if m.saveCursor > 0 {
			m.saveCursor--
		}
	case "down", "j":
		limit := len(saveSlots)
		if !m.saveMode {
			limit = len(m.saveMetas)
		}
		if m.saveCursor < limit-1 {
			m.saveCursor++
		}
	case "enter":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if m.saveMode {
			_ = m.sess.SaveGame(ctx, saveSlots[m.saveCursor])
			m.showSaves = false
		} else {
			if m.saveCursor >= len(m.saveMetas) {
				return m, nil
			}
			slot := m.saveMetas[m.saveCursor].Slot
			if err := m.sess.LoadGame(ctx, slot); err == nil {
				m.showSaves = false
				m.screen = screenGame
				m.rememberVisible()
				m.layout()
			}
		}
		m.refreshLog()
	}
	return m, nil
}

func (m *ConsoleUI) copyLog() {
	var b strings.Builder
	for _, line := range m.log.lines {
		b.WriteString(line.text)
		b.WriteString("\n")
	}
	if err := clipboard.WriteAll(b.String()); err != nil {
		m.log.lines = append(m.log.lines,
			logLine{event.MsgWarning, "Could not copy the log to the clipboard."})
		return
	}
	m.log.lines = append(m.log.lines,
		logLine{event.MsgSystem, "Message log copied to clipboard."})
}

// rememberVisible folds the current field of view into the explored
// set for the loaded map.
func (m *ConsoleUI) rememberVisible() {
	p := m.sess.Player()
	if p == nil {
		return
	}
	seen := m.explored[p.MapID]
	if seen == nil {
		seen = map[grid.Point]bool{}
		m.explored[p.MapID] = seen
	}
	for tile := range m.sess.Visible() {
		seen[tile] = true
	}
}

// --- Rendering ---

func (m *ConsoleUI) refreshLog() {
	width := m.logViewport.Width - 2
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	for _, line := range m.log.lines {
		style, ok := messageStyles[line.category]
		if !ok {
			style = messageStyles[event.MsgSystem]
		}
		b.WriteString(style.Render(wordwrap.String(line.text, width)))
		b.WriteString("\n")
	}
	m.logViewport.SetContent(b.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderModal(m.renderQuitModal(), 50)
	}

	switch m.screen {
	case screenTitle:
		return m.renderTitle()
	case screenCreate:
		return m.renderCreate()
	}

	switch {
	case m.showSaves:
		return m.renderModal(m.renderSavesModal(), 60)
	case m.showInventory:
		return m.renderModal(m.renderInventoryModal(), 64)
	case m.showQuests:
		return m.renderModal(m.renderQuestsModal(), 70)
	}

	sideWidth := m.sideWidth()
	mainWidth := m.width - sideWidth - 2

	top := m.renderMap(mainWidth)
	if m.sess.Mode() == session.ModeDialog {
		top = m.renderDialog(mainWidth)
	}

	var main strings.Builder
	main.WriteString(top)
	main.WriteString("\n")
	main.WriteString(separatorStyle.Render(strings.Repeat("─", max(10, mainWidth-4))))
	main.WriteString("\n")
	main.WriteString(m.logViewport.View())

	mainPanel := logPanelStyle.Width(mainWidth).Height(m.height - 1).Render(main.String())
	sidePanel := sidePanelStyle.Width(sideWidth).Height(m.height - 1).Render(m.renderSidebar())

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, sidePanel)
}

func (m ConsoleUI) renderTitle() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("JUST IN TIME"))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("A post-apocalyptic adventure of questionable decisions"))
	b.WriteString("\n\n")

	choices := []string{"New Game", "Load Game", "Quit"}
	for i, c := range choices {
		if titleChoice(i) == m.titleCursor {
			b.WriteString(modalSelectedItemStyle.Render("▶ " + c))
		} else {
			b.WriteString(modalItemStyle.Render("  " + c))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to exit"))

	modal := modalStyle.Width(56).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCreate() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Who froze in that cryo pod?"))
	b.WriteString("\n\n")
	b.WriteString("Name: " + m.nameInput.View())
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("W.A.S.T.E.D."))
	b.WriteString(fmt.Sprintf("  (points left: %d)\n", m.attrPool()))
	for i, a := range actor.Attributes {
		line := fmt.Sprintf("%-10s %2d", a.Name(), m.attrs[a])
		if !m.creatingName && i == m.attrCursor {
			b.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			b.WriteString(modalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.creatingName {
		b.WriteString(promptStyle.Render("Enter to confirm name, Esc to go back"))
	} else {
		b.WriteString(promptStyle.Render("↑/↓ select, ←/→ adjust, Enter to wake up, Esc to rename"))
	}

	modal := modalStyle.Width(56).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderMap(width int) string {
	cur := m.sess.World().CurrentMap()
	player := m.sess.Player()
	if cur == nil || player == nil {
		return ""
	}

	visible := m.sess.Visible()
	seen := m.explored[player.MapID]

	entities := map[grid.Point]*world.Entity{}
	for _, e := range m.sess.World().Entities() {
		if e.Alive {
			entities[e.Position] = e
		}
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render(cur.Name))
	b.WriteString("\n")
	for y := 0; y < cur.Height; y++ {
		for x := 0; x < cur.Width; x++ {
			p := grid.Point{X: x, Y: y}
			b.WriteString(m.renderTile(cur, p, player, entities, visible, seen))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ConsoleUI) renderTile(cur *world.MapData, p grid.Point, player *actor.Player,
	entities map[grid.Point]*world.Entity, visible, seen map[grid.Point]bool) string {

	if m.looking && p == m.cursor {
		return cursorStyle.Render("X")
	}
	if p == player.Position {
		return playerStyle.Render("@")
	}

	inView := visible == nil || visible[p]
	if !inView {
		if seen[p] {
			return dimStyle.Render(baseGlyph(cur, p))
		}
		return " "
	}

	if e, ok := entities[p]; ok {
		glyph := e.Sprite.Char
		if glyph == "" {
			glyph = "?"
		}
		style := lipgloss.NewStyle()
		if e.Sprite.FG != "" {
			style = style.Foreground(lipgloss.Color(e.Sprite.FG))
		}
		if e.Sprite.BG != "" {
			style = style.Background(lipgloss.Color(e.Sprite.BG))
		}
		return style.Render(glyph)
	}

	switch glyph := baseGlyph(cur, p); glyph {
	case "#":
		return wallStyle.Render(glyph)
	case "~":
		return waterStyle.Render(glyph)
	default:
		return floorStyle.Render(glyph)
	}
}

// baseGlyph maps the tile flags back to a drawable character.
func baseGlyph(cur *world.MapData, p grid.Point) string {
	switch {
	case cur.IsWalkable(p):
		return "."
	case cur.Transparent[p.Y][p.X]:
		return "~" // water: see through, no walking
	default:
		return "#"
	}
}

func (m ConsoleUI) renderDialog(width int) string {
	view := m.sess.Dialog().Current()
	if view == nil {
		return ""
	}

	wrap := max(20, width-8)
	var b strings.Builder
	speaker := view.Node.Speaker
	if speaker != "" {
		b.WriteString(headingStyle.Render(speaker))
		b.WriteString("\n")
	}
	b.WriteString(messageStyles[event.MsgDialog].Render(wordwrap.String(view.Node.Text, wrap)))
	b.WriteString("\n\n")

	for i, r := range view.Responses {
		label := fmt.Sprintf("%d. %s", i+1, r.Text)
		if r.CheckLabel != "" {
			label = fmt.Sprintf("%d. %s %s", i+1, r.CheckLabel, r.Text)
		}
		if r.Available {
			b.WriteString(modalItemStyle.Render(label))
		} else {
			b.WriteString(unavailableStyle.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("Press a number to respond"))
	return b.String()
}

func (m ConsoleUI) renderSidebar() string {
	p := m.sess.Player()
	if p == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString(fmt.Sprintf("\nLevel %d  (%d XP)\n", p.Level, p.XP))
	b.WriteString(fmt.Sprintf("HP %d/%d   AP %d/%d\n", p.HP, p.MaxHP, p.AP, p.MaxAP))
	b.WriteString(fmt.Sprintf("Caps: %d\n", p.Caps))
	if p.Equipped.Weapon != nil {
		b.WriteString("Weapon: " + p.Equipped.Weapon.Name + "\n")
	}
	if p.Equipped.Armor != nil {
		b.WriteString("Armor: " + p.Equipped.Armor.Name + "\n")
	}

	if m.sess.Combat().InCombat() {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("COMBAT"))
		b.WriteString("\n")
		for i, e := range m.sess.Combat().Enemies() {
			marker := "  "
			if i == m.target {
				marker = "▶ "
			}
			if e.HP <= 0 {
				b.WriteString(dimStyle.Render(marker + e.Name + " (down)"))
			} else {
				b.WriteString(fmt.Sprintf("%s%s  %d HP", marker, e.Name, e.HP))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Quests"))
	b.WriteString("\n")
	active := m.sess.Quests().ActiveQuests()
	if len(active) == 0 {
		b.WriteString(promptStyle.Render("Nothing pressing. Enjoy it.\n"))
	}
	for _, q := range active {
		b.WriteString("• " + q.Def.Title + "\n")
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Keys"))
	b.WriteString("\n")
	b.WriteString(m.keyHelp())
	return b.String()
}

func (m ConsoleUI) keyHelp() string {
	switch m.sess.Mode() {
	case session.ModeCombat:
		return promptStyle.Render("a attack · tab target\nu use item · f flee\nspace end turn")
	case session.ModeDialog:
		return promptStyle.Render("1-9 choose a response")
	case session.ModeGameOver:
		return promptStyle.Render("n new game · esc quit")
	default:
		if m.looking {
			return promptStyle.Render("arrows move cursor\nenter examine · x done")
		}
		return promptStyle.Render("arrows move · e interact\nx look · i inventory\nq quests · c copy log\nctrl+s save · ctrl+l load\nesc quit")
	}
}

func (m ConsoleUI) renderQuitModal() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Leave the wasteland?"))
	b.WriteString("\n\n")
	b.WriteString("Unsaved progress stays behind.")
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))
	return b.String()
}

func (m ConsoleUI) renderInventoryModal() string {
	entries := m.sess.Inventory().Entries()

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Inventory"))
	b.WriteString(fmt.Sprintf("\ncarrying %d/%d\n\n",
		m.sess.Inventory().TotalWeight(), m.sess.Player().CarryWeight))

	if len(entries) == 0 {
		b.WriteString(promptStyle.Render("Empty. The wasteland provides, eventually."))
	}
	for i, entry := range entries {
		name := entry.ItemID
		if def, ok := m.bundle.Item(entry.ItemID); ok {
			name = def.Name
		}
		line := name
		if entry.Count > 1 {
			line = fmt.Sprintf("%s ×%d", name, entry.Count)
		}
		if equippedID(m.sess.Player(), entry.ItemID) {
			line += " [equipped]"
		}
		if i == m.invCursor {
			b.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			b.WriteString(modalItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("enter/u use · e equip · esc close"))
	return b.String()
}

func equippedID(p *actor.Player, itemID string) bool {
	if p.Equipped.Weapon != nil && p.Equipped.Weapon.ID == itemID {
		return true
	}
	return p.Equipped.Armor != nil && p.Equipped.Armor.ID == itemID
}

func (m ConsoleUI) renderQuestsModal() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Quest Log"))
	b.WriteString("\n\n")

	active := m.sess.Quests().ActiveQuests()
	done := m.sess.Quests().CompletedQuests()
	if len(active) == 0 && len(done) == 0 {
		b.WriteString(promptStyle.Render("No quests yet. Give it a minute."))
	}

	for _, q := range active {
		b.WriteString(headingStyle.Render(q.Def.Title))
		b.WriteString("\n")
		for _, obj := range q.Instance.Objectives {
			desc := obj.Description
			if desc == "" {
				desc = titleCaser.String(string(obj.Kind)) + " " + obj.Target
			}
			if obj.Count > 1 {
				desc = fmt.Sprintf("%s (%d/%d)", desc, obj.Current, obj.Count)
			}
			mark := "☐"
			if obj.Current >= obj.Count {
				mark = "☑"
			}
			b.WriteString("  " + mark + " " + desc + "\n")
		}
	}

	if len(done) > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Completed"))
		b.WriteString("\n")
		for _, q := range done {
			b.WriteString(dimStyle.Render("  ✓ " + q.Def.Title))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("esc close"))
	return b.String()
}

func (m ConsoleUI) renderSavesModal() string {
	var b strings.Builder
	if m.saveMode {
		b.WriteString(modalTitleStyle.Render("Save Game"))
		b.WriteString("\n\n")
		existing := map[string]session.SaveMeta{}
		for _, meta := range m.saveMetas {
			existing[meta.Slot] = meta
		}
		for i, slot := range saveSlots {
			line := slot + "  (empty)"
			if meta, ok := existing[slot]; ok {
				line = fmt.Sprintf("%s  %s, L%d, %s", slot, meta.PlayerName, meta.PlayerLevel, meta.Location)
			}
			if i == m.saveCursor {
				b.WriteString(modalSelectedItemStyle.Render("▶ " + line))
			} else {
				b.WriteString(modalItemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(modalTitleStyle.Render("Load Game"))
		b.WriteString("\n\n")
		switch {
		case m.savesLoading:
			b.WriteString(promptStyle.Render("Reading save slots..."))
		case m.saveErr != nil:
			b.WriteString(messageStyles[event.MsgWarning].Render("Could not list saves: " + m.saveErr.Error()))
		case len(m.saveMetas) == 0:
			b.WriteString(promptStyle.Render("No saves found. The wasteland forgets fast."))
		default:
			for i, meta := range m.saveMetas {
				line := fmt.Sprintf("%s  %s, L%d, %s  (%s)",
					meta.Slot, meta.PlayerName, meta.PlayerLevel, meta.Location,
					meta.SavedAt.Format("Jan 2 15:04"))
				if i == m.saveCursor {
					b.WriteString(modalSelectedItemStyle.Render("▶ " + line))
				} else {
					b.WriteString(modalItemStyle.Render("  " + line))
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("↑/↓ select, Enter confirm, Esc cancel"))
	return b.String()
}

func (m ConsoleUI) renderModal(content string, width int) string {
	modal := modalStyle.Width(width).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

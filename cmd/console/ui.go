package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/parley-engine/internal/engine"
	"github.com/jwebster45206/parley-engine/internal/journal"
	"github.com/jwebster45206/parley-engine/pkg/command"
	"github.com/jwebster45206/parley-engine/pkg/state"
)

const (
	setupPlaceholderText = "Type a world or setting here..."
	playPlaceholderText  = "How do you persuade them?"
)

// stage tracks which phase of the game the UI is rendering.
type stage int

const (
	stageSetup stage = iota
	stagePlaying
	stageEnded
)

// entryKind classifies one transcript entry.
type entryKind int

const (
	entryOpening entryKind = iota
	entryPlayer
	entryTurn
	entryNotice
	entryError
	entryEnding
)

// transcriptEntry is one renderable block in the chat panel. The
// transcript is kept as structured entries so a resize can reflow
// everything for the new width.
type transcriptEntry struct {
	kind   entryKind
	text   string
	detail string // opening: dilemma; turn: next dilemma
	record state.TurnRecord
	npc    state.NPC
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine     *engine.Engine
	journalDir string
	logger     *slog.Logger
	registry   *command.Registry

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	stage   stage
	entries []transcriptEntry

	// Setup modal state
	setupErr error

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type worldGeneratedMsg struct {
	gameState *state.GameState
	err       error
}

type turnResolvedMsg struct {
	result *engine.TurnResult
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // grey
			Italic(true)

	endingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // gold

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(eng *engine.Engine, journalDir string, logger *slog.Logger) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = setupPlaceholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		engine:       eng,
		journalDir:   journalDir,
		logger:       logger,
		registry:     command.DefaultRegistry(),
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		stage:        stageSetup,
	}

	// A resumed session skips world setup entirely
	if gs := eng.GameState(); gs != nil {
		ui.stage = stagePlaying
		ui.textarea.Placeholder = playPlaceholderText
		ui.restoreTranscript(gs)
	}
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle quit modal first
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	// Handle setup modal second
	if m.stage == stageSetup {
		return m.updateSetupModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to the chat viewport for scrolling and
		// text selection; the components ignore events outside their
		// bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.ready = true

		// Reformat all content for the new width
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				m.textarea.Reset()
				m.appendEntry(transcriptEntry{kind: entryError, text: "You need to say something to progress."})
				return m, nil
			}
			return m.handleInput(input)
		}

	case turnResolvedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("Turn failed", "error", msg.err)
			m.appendEntry(transcriptEntry{kind: entryError,
				text: fmt.Sprintf("Encounter failed due to an error: %v", msg.err)})
			if m.engine.HasRetry() {
				m.appendEntry(transcriptEntry{kind: entryNotice,
					text: "You can type 'retry' to attempt the last persuasion again or provide a new message."})
			}
		} else {
			nextProblem := msg.result.NextProblem
			if msg.result.IsGameOver {
				nextProblem = ""
			}
			m.appendEntry(transcriptEntry{
				kind:   entryTurn,
				record: msg.result.Record,
				npc:    msg.result.NPC,
				detail: nextProblem,
			})
			if msg.result.IsGameOver {
				ending := msg.result.EndingSummary
				if ending == "" {
					ending = "The story concludes here."
				}
				m.appendEntry(transcriptEntry{kind: entryEnding, text: ending})
				m.stage = stageEnded
			}
			m.writeMetadata()
		}
		m.chatViewport.GotoBottom()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent() // Refresh the chat content to update the progress bar
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// handleInput routes one submitted line: exact single-word commands
// run, near misses ask for confirmation, everything else is spoken to
// the NPCs.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	result := m.registry.Parse(input)
	switch result.Kind {
	case command.Command:
		m.textarea.Reset()
		return m.runCommand(result.Command)
	case command.Suggestion:
		m.textarea.Reset()
		m.appendEntry(transcriptEntry{kind: entryNotice,
			text: fmt.Sprintf("Unknown command. Did you mean '%s'?", result.Command)})
		return m, nil
	case command.Unknown:
		m.textarea.Reset()
		m.appendEntry(transcriptEntry{kind: entryNotice, text: "Unknown command. Type /help for the list."})
		return m, nil
	}

	if m.stage == stageEnded {
		m.textarea.Reset()
		m.appendEntry(transcriptEntry{kind: entryNotice,
			text: "The story has ended. Type 'log' to save the journal or 'quit' to exit."})
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.progressTick = 0
	m.appendEntry(transcriptEntry{kind: entryPlayer, text: result.Dialogue})
	return m, tea.Batch(m.playTurn(result.Dialogue), progressTick())
}

func (m ConsoleUI) runCommand(name string) (tea.Model, tea.Cmd) {
	switch name {
	case "quit":
		m.showQuitModal = true

	case "help":
		m.appendEntry(transcriptEntry{kind: entryNotice, text: m.helpText()})

	case "log":
		path, err := m.engine.ExportJournal()
		if err != nil {
			m.appendEntry(transcriptEntry{kind: entryError, text: fmt.Sprintf("Failed to save journal: %v", err)})
		} else {
			m.appendEntry(transcriptEntry{kind: entryNotice, text: "Journal saved to " + path})
		}

	case "retry":
		if !m.engine.HasRetry() {
			m.appendEntry(transcriptEntry{kind: entryError, text: "No turn available to retry."})
			break
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.retryTurn(), progressTick())

	case "copy":
		if err := clipboard.WriteAll(m.plainTranscript()); err != nil {
			m.appendEntry(transcriptEntry{kind: entryError, text: fmt.Sprintf("Failed to copy transcript: %v", err)})
		} else {
			m.appendEntry(transcriptEntry{kind: entryNotice, text: "Transcript copied to clipboard."})
		}

	case "journals":
		files, err := journal.List(m.journalDir)
		if err != nil {
			m.appendEntry(transcriptEntry{kind: entryError, text: fmt.Sprintf("Failed to list journals: %v", err)})
		} else if len(files) == 0 {
			m.appendEntry(transcriptEntry{kind: entryNotice, text: "No journals saved yet."})
		} else {
			m.appendEntry(transcriptEntry{kind: entryNotice,
				text: "Saved journals:\n• " + strings.Join(files, "\n• ")})
		}
	}

	return m, nil
}

func (m ConsoleUI) playTurn(message string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.PlayTurn(context.Background(), message)
		return turnResolvedMsg{result, err}
	}
}

func (m ConsoleUI) retryTurn() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.RetryLastTurn(context.Background())
		return turnResolvedMsg{result, err}
	}
}

func (m ConsoleUI) generateWorld(setting string) tea.Cmd {
	return func() tea.Msg {
		gs, err := m.engine.SetupWorld(context.Background(), setting)
		return worldGeneratedMsg{gs, err}
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case worldGeneratedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("World generation failed", "error", msg.err)
			m.setupErr = msg.err
			return m, nil
		}
		m.setupErr = nil
		m.stage = stagePlaying
		m.entries = []transcriptEntry{{
			kind:   entryOpening,
			text:   msg.gameState.OpeningScene,
			detail: msg.gameState.CurrentProblem,
		}}
		m.textarea.Reset()
		m.textarea.Placeholder = playPlaceholderText
		m.textarea.Focus()
		if m.width > 0 && m.height > 0 {
			m.resizePanels()
			m.ready = true
		}
		m.writeChatContent()
		m.writeMetadata()
		return m, textarea.Blink

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			return m, progressTick()
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if result := m.registry.Parse(input); result.Kind == command.Command && result.Command == "quit" {
				return m, tea.Quit
			}

			m.setupErr = nil
			m.loading = true
			m.progressTick = 0
			return m, tea.Batch(m.generateWorld(input), progressTick())
		}
	}

	var tiCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	return m, tiCmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

// appendEntry adds a transcript entry and reflows the chat panel.
func (m *ConsoleUI) appendEntry(entry transcriptEntry) {
	m.entries = append(m.entries, entry)
	m.writeChatContent()
}

// restoreTranscript rebuilds the chat transcript from a resumed
// session's turn history.
func (m *ConsoleUI) restoreTranscript(gs *state.GameState) {
	opening := transcriptEntry{kind: entryOpening, text: gs.OpeningScene, detail: gs.CurrentProblem}
	if len(gs.TurnHistory) > 0 {
		opening.detail = gs.TurnHistory[0].Dilemma
	}
	m.entries = append(m.entries, opening)

	// Recorded shifts are the deltas actually applied, so rewinding
	// them from the final counters recovers what the player saw after
	// each turn.
	type counters struct{ resistance, relationship int }
	running := make(map[string]counters, len(gs.NPCs))
	for name, npc := range gs.NPCs {
		running[name] = counters{npc.Resistance, npc.Relationship}
	}
	for _, record := range gs.TurnHistory {
		c := running[record.NPCName]
		c.resistance -= record.ResistanceShift
		c.relationship -= record.RelationshipShift
		running[record.NPCName] = c
	}

	for i, record := range gs.TurnHistory {
		m.entries = append(m.entries, transcriptEntry{kind: entryPlayer, text: record.PlayerMessage})
		next := gs.CurrentProblem
		if i+1 < len(gs.TurnHistory) {
			next = gs.TurnHistory[i+1].Dilemma
		}

		c := running[record.NPCName]
		c.resistance += record.ResistanceShift
		c.relationship += record.RelationshipShift
		running[record.NPCName] = c
		npc := gs.NPCs[record.NPCName]
		npc.Resistance = c.resistance
		npc.Relationship = c.relationship

		m.entries = append(m.entries, transcriptEntry{
			kind:   entryTurn,
			record: record,
			npc:    npc,
			detail: next,
		})
	}
}

func (m *ConsoleUI) resizePanels() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent rebuilds the chat panel from the transcript for the
// current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 24 {
		chatWidth = 24
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PARLEY") + "\n\n")
	content.WriteString("Welcome to the adventure. Type 'quit' to exit at any time.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, entry := range m.entries {
		content.WriteString(m.renderEntry(entry, chatWidth) + "\n\n")
	}

	// If currently loading, add the progress bar
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) renderEntry(entry transcriptEntry, width int) string {
	wrap := width - 6

	switch entry.kind {
	case entryOpening:
		var b strings.Builder
		b.WriteString(titleStyle.Render("Opening Scene") + "\n")
		b.WriteString(narratorStyle.Render(wordwrap.String(entry.text, wrap)))
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Current Dilemma") + "\n")
		b.WriteString(wordwrap.String(entry.detail, wrap))
		return b.String()

	case entryPlayer:
		return userStyle.Render("You: ") + wordwrap.String(entry.text, wrap)

	case entryTurn:
		return m.renderTurn(entry, wrap)

	case entryNotice:
		return noticeStyle.Render(wordwrap.String(entry.text, wrap))

	case entryError:
		return errorStyle.Render(wordwrap.String(entry.text, wrap))

	case entryEnding:
		var b strings.Builder
		b.WriteString(titleStyle.Render("Ending") + "\n")
		b.WriteString(endingStyle.Render(wordwrap.String(entry.text, wrap)))
		b.WriteString("\n\n")
		b.WriteString(narratorStyle.Render("Thanks for adventuring!"))
		return b.String()
	}

	return ""
}

func (m ConsoleUI) renderTurn(entry transcriptEntry, wrap int) string {
	record := entry.record
	npc := entry.npc

	var b strings.Builder
	b.WriteString(speakerStyle.Render(fmt.Sprintf("NPC Response (%s)", record.NPCName)) + "\n")
	b.WriteString(narratorStyle.Render(wordwrap.String(record.NPCResponse, wrap)))
	b.WriteString("\n\n")
	b.WriteString(speakerStyle.Render("Outcome: "+record.OutcomeType) + "\n")
	if record.OutcomeSummary != "" {
		b.WriteString(wordwrap.String(record.OutcomeSummary, wrap) + "\n")
	}
	b.WriteString(fmt.Sprintf("Resistance shift: %s (now %d) | Relationship shift: %s (now %d)",
		formatShift(record.ResistanceShift), npc.Resistance,
		formatShift(record.RelationshipShift), npc.Relationship))

	if len(record.Branches) > 0 {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Branches to Explore") + "\n")
		for i, branch := range record.Branches {
			line := fmt.Sprintf("%d. %s", i+1, branch.Title)
			if branch.Description != "" {
				line += ": " + branch.Description
			}
			b.WriteString(wordwrap.String(line, wrap) + "\n")
		}
	}

	if entry.detail != "" {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Current Dilemma") + "\n")
		b.WriteString(wordwrap.String(entry.detail, wrap))
	}

	return b.String()
}

// formatShift renders an applied counter change with its sign.
func formatShift(value int) string {
	if value > 0 {
		return fmt.Sprintf("+%d", value)
	}
	return strconv.Itoa(value)
}

// writeMetadata rebuilds the session panel from the live game state.
func (m *ConsoleUI) writeMetadata() {
	gs := m.engine.GameState()
	if gs == nil {
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Setting:\n")
	content.WriteString(wordwrap.String(gs.WorldSetting, m.metaViewport.Width-2) + "\n\n")

	content.WriteString("Turns:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", len(gs.TurnHistory)))

	content.WriteString("Score:\n")
	content.WriteString(fmt.Sprintf("Successes: %d\n", gs.TotalSuccesses))
	content.WriteString(fmt.Sprintf("Failures: %d\n\n", gs.TotalFailures))

	content.WriteString(titleStyle.Render("NPC Roster") + "\n")
	for _, row := range gs.NPCSummary() {
		content.WriteString(fmt.Sprintf("• %s (res %s, rel %s)\n", row.Name, row.Resistance, row.Relationship))
		personality := row.Personality
		if personality == "" {
			personality = "--"
		}
		content.WriteString("  " + wordwrap.String(personality, m.metaViewport.Width-4) + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• quit: Exit\n")
	content.WriteString("• log: Save journal\n")
	content.WriteString("• retry: Replay failed turn\n")
	content.WriteString("• /help: All commands\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, def := range m.registry.Commands() {
		name := def.Canonical
		if def.SlashOnly {
			name = "/" + name
		}
		b.WriteString(fmt.Sprintf("• %s - %s\n", name, def.Help))
	}
	b.WriteString("\nSingle words run commands; anything longer is spoken to the NPCs.")
	return b.String()
}

// plainTranscript renders the story so far without styling, for the
// clipboard.
func (m ConsoleUI) plainTranscript() string {
	var b strings.Builder
	for _, entry := range m.entries {
		switch entry.kind {
		case entryOpening:
			b.WriteString("Opening Scene: " + entry.text + "\n")
			b.WriteString("Current Dilemma: " + entry.detail + "\n\n")
		case entryPlayer:
			b.WriteString("You: " + entry.text + "\n\n")
		case entryTurn:
			record := entry.record
			b.WriteString(fmt.Sprintf("%s: %s\n", record.NPCName, record.NPCResponse))
			b.WriteString(fmt.Sprintf("Outcome: %s. %s\n\n", record.OutcomeType, record.OutcomeSummary))
		case entryEnding:
			b.WriteString("Ending: " + entry.text + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("PARLEY"))
	content.WriteString("\n\n")
	content.WriteString("Welcome to the adventure. Type 'quit' to exit at any time.")
	content.WriteString("\n\n")

	if m.loading {
		content.WriteString(loadingStyle.Render("Generating your world..."))
		content.WriteString("\n\n")
		content.WriteString(m.renderProgressBar())
	} else {
		if m.setupErr != nil {
			content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to initialize the game: %v", m.setupErr)))
			content.WriteString("\n\n")
			content.WriteString("Adjust your setting and try again, or press Esc to quit.")
			content.WriteString("\n\n")
		}
		content.WriteString("Choose a world or setting to explore:")
		content.WriteString("\n\n")
		content.WriteString(m.textarea.View())
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Press Enter to begin, Esc to quit"))
	}

	modal := modalStyle.Width(70).Render(content.String())

	// Center the modal
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	// Center the modal
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.stage == stageSetup {
		return m.renderSetupModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	sepWidth := chatWidth - 4
	if sepWidth < 1 {
		sepWidth = 1
	}

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", sepWidth)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	// Determine usable content width (viewport width minus padding used elsewhere: 3 left + 3 right)
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	// Clamp bar width to a sensible range
	if usable > 80 {
		usable = 80 // avoid overly wide bars
	} else if usable < 10 {
		usable = 10 // minimum visible bar
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

// Package tui provides the terminal user interface for aide.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/aide/pkg/models"
)

// Decider applies approval outcomes to a task's staged messages.
// The engine executor satisfies it.
type Decider interface {
	ApprovePendingMessage(ctx context.Context, task *models.Task, msgID, editedBody string) error
	RejectPendingMessage(task *models.Task, msgID string) error
}

// Saver persists a task record after a decision.
type Saver interface {
	Save(task *models.Task) error
}

// ReviewItem is one staged message awaiting a decision, paired with the
// task that produced it.
type ReviewItem struct {
	// Task is the suspended task holding the message.
	Task *models.Task
	// Message is the staged outbound message.
	Message models.PendingMessage
}

// reviewMode tracks which input layer owns keystrokes.
type reviewMode int

const (
	modeList reviewMode = iota
	modeEdit
)

// Review is the interactive approval screen. It lists every staged message
// across suspended tasks and lets the user approve, reject, or edit each one.
type Review struct {
	items   []ReviewItem
	cursor  int
	mode    reviewMode
	input   textinput.Model
	decider Decider
	saver   Saver
	status  string
	width   int

	titleStyle  lipgloss.Style
	cursorStyle lipgloss.Style
	labelStyle  lipgloss.Style
	bodyStyle   lipgloss.Style
	statusStyle lipgloss.Style
	helpStyle   lipgloss.Style
}

// NewReview creates the approval screen over the given staged messages.
func NewReview(items []ReviewItem, decider Decider, saver Saver) *Review {
	ti := textinput.New()
	ti.Placeholder = "Edited message body"
	ti.CharLimit = 2000
	ti.Width = 72

	return &Review{
		items:   items,
		input:   ti,
		decider: decider,
		saver:   saver,
		width:   80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),
		cursorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),
		bodyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

// Init implements tea.Model.
func (r *Review) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (r *Review) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.input.Width = min(msg.Width-8, 100)

	case tea.KeyMsg:
		if r.mode == modeEdit {
			return r.updateEdit(msg)
		}
		return r.updateList(msg)
	}

	return r, nil
}

// updateList handles keystrokes while browsing the message list.
func (r *Review) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return r, tea.Quit

	case "up", "k":
		if r.cursor > 0 {
			r.cursor--
		}

	case "down", "j":
		if r.cursor < len(r.items)-1 {
			r.cursor++
		}

	case "a", "y":
		r.decide(true, "")

	case "r", "n":
		r.decide(false, "")

	case "e":
		if len(r.items) > 0 {
			r.input.SetValue(r.items[r.cursor].Message.Message)
			r.input.Focus()
			r.input.CursorEnd()
			r.mode = modeEdit
		}
	}

	if len(r.items) == 0 {
		return r, tea.Quit
	}
	return r, nil
}

// updateEdit handles keystrokes while editing a message body.
func (r *Review) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		r.mode = modeList
		r.input.Blur()
		return r, nil

	case "enter":
		edited := r.input.Value()
		r.mode = modeList
		r.input.Blur()
		r.decide(true, edited)
		if len(r.items) == 0 {
			return r, tea.Quit
		}
		return r, nil
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// decide applies the decision for the item under the cursor and drops it
// from the list. Approval with a non-empty edited body sends the edit.
func (r *Review) decide(approve bool, editedBody string) {
	if len(r.items) == 0 {
		return
	}
	item := r.items[r.cursor]

	var err error
	if approve {
		err = r.decider.ApprovePendingMessage(context.Background(), item.Task, item.Message.ID, editedBody)
	} else {
		err = r.decider.RejectPendingMessage(item.Task, item.Message.ID)
	}
	if err != nil {
		r.status = fmt.Sprintf("error: %v", err)
		return
	}
	if err := r.saver.Save(item.Task); err != nil {
		r.status = fmt.Sprintf("error saving task: %v", err)
		return
	}

	verb := "approved"
	if !approve {
		verb = "rejected"
	}
	r.status = fmt.Sprintf("%s message to %s (%s)", verb, item.Message.Recipient, item.Task.Title)

	r.items = append(r.items[:r.cursor], r.items[r.cursor+1:]...)
	if r.cursor >= len(r.items) && r.cursor > 0 {
		r.cursor--
	}
}

// View implements tea.Model.
func (r *Review) View() string {
	var sb strings.Builder

	sb.WriteString(r.titleStyle.Render(" Pending Messages "))
	sb.WriteString("\n\n")

	if len(r.items) == 0 {
		sb.WriteString(r.bodyStyle.Render("Nothing waiting for approval."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, item := range r.items {
		marker := "  "
		line := fmt.Sprintf("%s → %s  [%s]", item.Task.Title, item.Message.Recipient, item.Message.Platform)
		if i == r.cursor {
			marker = r.cursorStyle.Render("> ")
			line = r.cursorStyle.Render(line)
		} else {
			line = r.bodyStyle.Render(line)
		}
		sb.WriteString(marker)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	selected := r.items[r.cursor]
	sb.WriteString(r.labelStyle.Render("Tool: "))
	sb.WriteString(selected.Message.ToolName)
	sb.WriteString("\n")
	sb.WriteString(r.labelStyle.Render("Message:"))
	sb.WriteString("\n")
	sb.WriteString(r.bodyStyle.Render(indent(selected.Message.Message)))
	sb.WriteString("\n\n")

	if r.mode == modeEdit {
		sb.WriteString(r.labelStyle.Render("Edit body: "))
		sb.WriteString(r.input.View())
		sb.WriteString("\n")
		sb.WriteString(r.helpStyle.Render("(Enter to approve the edited body, Esc to cancel)"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(r.helpStyle.Render("(j/k move, a approve, e edit then approve, r reject, q quit)"))
		sb.WriteString("\n")
	}

	if r.status != "" {
		sb.WriteString("\n")
		sb.WriteString(r.statusStyle.Render(r.status))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Remaining returns how many messages are still undecided.
func (r *Review) Remaining() int {
	return len(r.items)
}

// indent prefixes every line of s with two spaces.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

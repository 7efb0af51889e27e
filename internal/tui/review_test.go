package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/aide/pkg/models"
)

// fakeDecider records approval decisions without touching a real executor.
type fakeDecider struct {
	approved []string
	rejected []string
	edited   map[string]string
}

func (f *fakeDecider) ApprovePendingMessage(_ context.Context, task *models.Task, msgID, editedBody string) error {
	f.approved = append(f.approved, msgID)
	if editedBody != "" {
		if f.edited == nil {
			f.edited = make(map[string]string)
		}
		f.edited[msgID] = editedBody
	}
	return nil
}

func (f *fakeDecider) RejectPendingMessage(task *models.Task, msgID string) error {
	f.rejected = append(f.rejected, msgID)
	return nil
}

// fakeSaver records which tasks were persisted.
type fakeSaver struct {
	saved []string
}

func (f *fakeSaver) Save(task *models.Task) error {
	f.saved = append(f.saved, task.ID)
	return nil
}

func reviewItems() []ReviewItem {
	taskA := &models.Task{ID: "task-a", Title: "Lunch with Ana", Status: models.TaskStatusWaitingApproval}
	taskB := &models.Task{ID: "task-b", Title: "Follow up with Bo", Status: models.TaskStatusWaitingApproval}
	return []ReviewItem{
		{Task: taskA, Message: models.PendingMessage{ID: "m1", Recipient: "ana", Platform: "slack", Message: "lunch?"}},
		{Task: taskB, Message: models.PendingMessage{ID: "m2", Recipient: "bo", Platform: "email", Message: "any update?"}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestReview_ApproveRemovesItem(t *testing.T) {
	decider := &fakeDecider{}
	saver := &fakeSaver{}
	r := NewReview(reviewItems(), decider, saver)

	model, _ := r.Update(key("a"))
	r = model.(*Review)

	if len(decider.approved) != 1 || decider.approved[0] != "m1" {
		t.Errorf("expected m1 approved, got %v", decider.approved)
	}
	if len(saver.saved) != 1 || saver.saved[0] != "task-a" {
		t.Errorf("expected task-a saved, got %v", saver.saved)
	}
	if r.Remaining() != 1 {
		t.Errorf("expected 1 item left, got %d", r.Remaining())
	}
}

func TestReview_RejectRemovesItem(t *testing.T) {
	decider := &fakeDecider{}
	r := NewReview(reviewItems(), decider, &fakeSaver{})

	model, _ := r.Update(key("r"))
	r = model.(*Review)

	if len(decider.rejected) != 1 || decider.rejected[0] != "m1" {
		t.Errorf("expected m1 rejected, got %v", decider.rejected)
	}
	if len(decider.approved) != 0 {
		t.Errorf("reject must not approve: %v", decider.approved)
	}
	if r.Remaining() != 1 {
		t.Errorf("expected 1 item left, got %d", r.Remaining())
	}
}

func TestReview_NavigationMovesCursor(t *testing.T) {
	decider := &fakeDecider{}
	r := NewReview(reviewItems(), decider, &fakeSaver{})

	model, _ := r.Update(key("j"))
	r = model.(*Review)
	model, _ = r.Update(key("a"))
	r = model.(*Review)

	if len(decider.approved) != 1 || decider.approved[0] != "m2" {
		t.Errorf("expected the second message approved, got %v", decider.approved)
	}
}

func TestReview_EditThenApprove(t *testing.T) {
	decider := &fakeDecider{}
	r := NewReview(reviewItems(), decider, &fakeSaver{})

	model, _ := r.Update(key("e"))
	r = model.(*Review)
	if r.mode != modeEdit {
		t.Fatal("expected edit mode after 'e'")
	}
	if r.input.Value() != "lunch?" {
		t.Errorf("edit field should start from the staged body, got %q", r.input.Value())
	}

	r.input.SetValue("lunch tomorrow?")
	model, _ = r.Update(key("enter"))
	r = model.(*Review)

	if decider.edited["m1"] != "lunch tomorrow?" {
		t.Errorf("expected edited body to be sent, got %v", decider.edited)
	}
	if r.mode != modeList {
		t.Error("expected list mode after approving the edit")
	}
}

func TestReview_EscCancelsEdit(t *testing.T) {
	decider := &fakeDecider{}
	r := NewReview(reviewItems(), decider, &fakeSaver{})

	model, _ := r.Update(key("e"))
	r = model.(*Review)
	model, _ = r.Update(key("esc"))
	r = model.(*Review)

	if r.mode != modeList {
		t.Error("esc should return to the list")
	}
	if len(decider.approved)+len(decider.rejected) != 0 {
		t.Error("cancelling an edit must not decide anything")
	}
	if r.Remaining() != 2 {
		t.Errorf("expected both items intact, got %d", r.Remaining())
	}
}

func TestReview_LastDecisionQuits(t *testing.T) {
	decider := &fakeDecider{}
	r := NewReview(reviewItems(), decider, &fakeSaver{})

	model, _ := r.Update(key("a"))
	r = model.(*Review)
	_, cmd := r.Update(key("a"))

	if cmd == nil {
		t.Fatal("deciding the last item should quit")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected quit message, got %v", msg)
	}
}

func TestReview_ViewListsMessages(t *testing.T) {
	r := NewReview(reviewItems(), &fakeDecider{}, &fakeSaver{})

	out := r.View()
	for _, want := range []string{"Lunch with Ana", "ana", "slack", "lunch?"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestReview_ViewEmpty(t *testing.T) {
	r := NewReview(nil, &fakeDecider{}, &fakeSaver{})

	if !strings.Contains(r.View(), "Nothing waiting") {
		t.Error("empty review should say nothing is waiting")
	}
}

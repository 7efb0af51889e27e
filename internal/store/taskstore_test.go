package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

func testStore(t *testing.T) *TaskStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "aide.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewTaskStore(db)
}

func TestTaskStore_SaveAndGet(t *testing.T) {
	s := testStore(t)
	original := fullTask()

	if err := s.Save(original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Get(original.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("store round trip mismatch\noriginal: %+v\nloaded:   %+v", original, loaded)
	}
}

func TestTaskStore_GetMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStore_SaveOverwrites(t *testing.T) {
	s := testStore(t)
	task := fullTask()
	if err := s.Save(task); err != nil {
		t.Fatalf("save: %v", err)
	}

	task.Status = models.TaskStatusCompleted
	task.SetVariable("done", "true")
	if err := s.Save(task); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := s.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != models.TaskStatusCompleted {
		t.Errorf("status not updated: %s", loaded.Status)
	}
	if v, _ := loaded.Variable("done"); v != "true" {
		t.Errorf("context memory not updated: %q", v)
	}
}

func TestTaskStore_ListHidesHidden(t *testing.T) {
	s := testStore(t)
	visible := fullTask()
	hidden := fullTask()
	hidden.ID = "hidden-11111111"
	hidden.Hidden = true

	for _, task := range []*models.Task{visible, hidden} {
		if err := s.Save(task); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	tasks, err := s.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != visible.ID {
		t.Errorf("default listing should skip hidden tasks: %v", taskIDs(tasks))
	}

	all, err := s.List(true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both tasks, got %v", taskIDs(all))
	}
}

func TestTaskStore_SetHidden(t *testing.T) {
	s := testStore(t)
	task := fullTask()
	if err := s.Save(task); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.SetHidden(task.ID, true); err != nil {
		t.Fatalf("hide: %v", err)
	}
	tasks, err := s.List(false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("hidden task still listed: %v", taskIDs(tasks))
	}

	if err := s.SetHidden(task.ID, false); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	tasks, err = s.List(false)
	if err != nil {
		t.Fatalf("list after unhide: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("unhidden task missing: %v", taskIDs(tasks))
	}

	if err := s.SetHidden("nope", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing task, got %v", err)
	}
}

func TestTaskStore_Due(t *testing.T) {
	s := testStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	due := fullTask()
	due.ID = "due-11111111"
	due.Status = models.TaskStatusActive
	due.NextCheck = &past

	notYet := fullTask()
	notYet.ID = "notyet-2222222"
	notYet.Status = models.TaskStatusActive
	notYet.NextCheck = &future

	fresh := fullTask()
	fresh.ID = "fresh-33333333"
	fresh.Status = models.TaskStatusPending
	fresh.NextCheck = nil

	done := fullTask()
	done.ID = "done-44444444"
	done.Status = models.TaskStatusCompleted
	done.NextCheck = &past

	login := fullTask()
	login.ID = "login-55555555"
	login.Status = models.TaskStatusActive
	login.PollFrequency = models.PollFrequency{Type: models.PollEvent, Label: models.EventOnLogin}
	login.NextCheck = nil

	for _, task := range []*models.Task{due, notYet, fresh, done, login} {
		if err := s.Save(task); err != nil {
			t.Fatalf("save %s: %v", task.ID, err)
		}
	}

	got, err := s.Due(now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	ids := taskIDs(got)
	want := map[string]bool{due.ID: true, fresh.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("due set mismatch: %v", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected due task %s", id)
		}
	}

	events, err := s.EventTasks(models.EventOnLogin)
	if err != nil {
		t.Fatalf("event tasks: %v", err)
	}
	if len(events) != 1 || events[0].ID != login.ID {
		t.Errorf("event task set mismatch: %v", taskIDs(events))
	}
}

func TestTaskStore_Delete(t *testing.T) {
	s := testStore(t)
	task := fullTask()
	if err := s.Save(task); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should report ErrNotFound, got %v", err)
	}
}

func taskIDs(tasks []*models.Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

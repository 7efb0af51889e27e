package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/store"
	"github.com/ShayCichocki/aide/pkg/models"
)

// Logger receives debug lines from the scheduler.
type Logger interface {
	// Log writes one formatted debug line.
	Log(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Log(string, ...any) {}

// Config wires a Scheduler's collaborators.
type Config struct {
	// Store persists task records.
	Store store.Store
	// Executor advances due tasks.
	Executor *engine.Executor
	// Interval is the wake-up cadence (default 30s).
	Interval time.Duration
	// ImportDir, when set, is watched for dropped .md task files.
	ImportDir string
	// Emitter receives scheduler events. Optional.
	Emitter *Emitter
	// Logger receives debug lines.
	Logger Logger
	// Clock supplies the current time; tests override it.
	Clock func() time.Time
}

// Scheduler owns the polling loop. Per-task mutual exclusion is enforced
// here: the executor assumes its caller serializes access to each record,
// and TickNow from the CLI can race the background loop without it.
type Scheduler struct {
	store     store.Store
	exec      *engine.Executor
	interval  time.Duration
	importDir string
	emitter   *Emitter
	log       Logger
	clock     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Scheduler from the given configuration.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		store:     cfg.Store,
		exec:      cfg.Executor,
		interval:  cfg.Interval,
		importDir: cfg.ImportDir,
		emitter:   cfg.Emitter,
		log:       cfg.Logger,
		clock:     cfg.Clock,
		locks:     make(map[string]*sync.Mutex),
	}
	if s.interval <= 0 {
		s.interval = 30 * time.Second
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Run executes the scheduling loop until the context is cancelled. The
// login tick for event-driven tasks runs once at startup, then due tasks
// are polled every interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.importDir != "" {
		watcher, err := s.startImportWatcher(ctx)
		if err != nil {
			s.log.Log("scheduler: import watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if err := s.LoginTick(ctx); err != nil {
		s.log.Log("scheduler: login tick: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.PollOnce(ctx)
		}
	}
}

// PollOnce ticks every currently due task, one at a time.
func (s *Scheduler) PollOnce(ctx context.Context) {
	now := s.clock()
	due, err := s.store.Due(now)
	if err != nil {
		s.log.Log("scheduler: scan due tasks: %v", err)
		s.emit(Event{Type: EventTickError, Message: err.Error(), Time: now})
		return
	}

	for _, task := range due {
		if ctx.Err() != nil {
			return
		}
		s.tick(ctx, task, false)
	}
}

// LoginTick force-runs every task polled only on login. Called once per
// process start.
func (s *Scheduler) LoginTick(ctx context.Context) error {
	events, err := s.eventTasks(models.EventOnLogin)
	if err != nil {
		return fmt.Errorf("scan login tasks: %w", err)
	}
	for _, task := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.tick(ctx, task, true)
	}
	return nil
}

// TickNow force-runs one task by ID regardless of its schedule.
func (s *Scheduler) TickNow(ctx context.Context, id string) error {
	task, err := s.store.Get(id)
	if err != nil {
		return err
	}
	s.tick(ctx, task, true)
	return nil
}

// tick runs one task through the executor under its per-task lock and
// persists the mutated record.
func (s *Scheduler) tick(ctx context.Context, task *models.Task, force bool) {
	lock := s.taskLock(task.ID)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock()
	before := task.Status

	if err := s.exec.ExecuteTick(ctx, task, force); err != nil {
		s.log.Log("scheduler: tick %s: %v", task.ID, err)
		s.emit(Event{Type: EventTickError, TaskID: task.ID, Message: err.Error(), Time: now})
		return
	}
	if err := s.store.Save(task); err != nil {
		s.log.Log("scheduler: save %s: %v", task.ID, err)
		s.emit(Event{Type: EventTickError, TaskID: task.ID, Message: err.Error(), Time: now})
		return
	}

	s.emit(Event{Type: EventTaskTicked, TaskID: task.ID, Status: string(task.Status), Time: now})
	if task.Status != before {
		switch task.Status {
		case models.TaskStatusCompleted:
			s.emit(Event{Type: EventTaskCompleted, TaskID: task.ID, Status: string(task.Status), Time: now})
		case models.TaskStatusWaiting, models.TaskStatusWaitingApproval, models.TaskStatusWaitingForInput:
			s.emit(Event{Type: EventTaskSuspended, TaskID: task.ID, Status: string(task.Status), Time: now})
		}
	}
}

// taskLock returns the mutex serializing one task's ticks.
func (s *Scheduler) taskLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// eventTasks loads the non-terminal tasks bound to the named event. The
// concrete store exposes an indexed scan; other Store implementations fall
// back to a filtered List.
func (s *Scheduler) eventTasks(event string) ([]*models.Task, error) {
	type eventScanner interface {
		EventTasks(event string) ([]*models.Task, error)
	}
	if scanner, ok := s.store.(eventScanner); ok {
		return scanner.EventTasks(event)
	}

	all, err := s.store.List(true)
	if err != nil {
		return nil, err
	}
	var matched []*models.Task
	for _, task := range all {
		if task.Status.IsTerminal() {
			continue
		}
		if task.PollFrequency.Type == models.PollEvent && task.PollFrequency.Label == event {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

// startImportWatcher watches the import directory for dropped .md files and
// imports each one as a task record.
func (s *Scheduler) startImportWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	if err := os.MkdirAll(s.importDir, 0755); err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.importDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.importDir, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}
				s.importFile(event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Log("scheduler: watcher: %v", err)
			}
		}
	}()
	return watcher, nil
}

// importFile parses one dropped markdown file into a task record, saves it,
// and removes the file. Errors leave the file in place for inspection.
func (s *Scheduler) importFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.log.Log("scheduler: read import %s: %v", path, err)
		return
	}

	task, err := store.Parse(string(content))
	if err != nil {
		s.log.Log("scheduler: parse import %s: %v", path, err)
		return
	}
	if task.ID == "" {
		task.ID = models.NewTaskID(task.Title)
	}

	if err := s.store.Save(task); err != nil {
		s.log.Log("scheduler: save import %s: %v", path, err)
		return
	}
	if err := os.Remove(path); err != nil {
		s.log.Log("scheduler: remove import %s: %v", path, err)
	}

	s.log.Log("scheduler: imported task %s from %s", task.ID, filepath.Base(path))
	s.emit(Event{Type: EventTaskImported, TaskID: task.ID, Message: filepath.Base(path), Time: s.clock()})
}

// emit forwards an event when an emitter is configured.
func (s *Scheduler) emit(event Event) {
	if s.emitter != nil {
		s.emitter.Emit(event)
	}
}

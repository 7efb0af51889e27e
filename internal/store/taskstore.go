package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/aide/pkg/models"
)

// ErrNotFound is returned when no task exists with the requested ID.
var ErrNotFound = errors.New("task not found")

// Store is the persistence interface the scheduler and CLI depend on.
type Store interface {
	// Save inserts or replaces a task record.
	Save(task *models.Task) error
	// Get loads one task by ID. Returns ErrNotFound when absent.
	Get(id string) (*models.Task, error)
	// List returns all tasks, hidden ones only when includeHidden is set.
	List(includeHidden bool) ([]*models.Task, error)
	// Due returns the non-terminal tasks due for a tick at the given time.
	Due(now time.Time) ([]*models.Task, error)
	// Delete removes a task record permanently.
	Delete(id string) error
}

// TaskStore is the SQLite implementation of Store. Composite fields are
// stored as JSON columns; scalar fields get real columns so listings and
// due-scans stay in SQL.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a TaskStore over an open, migrated database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// Save inserts or replaces a task record.
func (s *TaskStore) Save(task *models.Task) error {
	if task.ID == "" {
		return fmt.Errorf("task has no ID")
	}

	plan, err := marshalJSON(task.Plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	structured, err := marshalJSON(task.StructuredPlan)
	if err != nil {
		return fmt.Errorf("encode structured plan: %w", err)
	}
	current, err := marshalJSON(task.CurrentStep)
	if err != nil {
		return fmt.Errorf("encode current step: %w", err)
	}
	log, err := marshalJSON(task.ExecutionLog)
	if err != nil {
		return fmt.Errorf("encode execution log: %w", err)
	}
	memory, err := marshalJSON(task.ContextMemory)
	if err != nil {
		return fmt.Errorf("encode context memory: %w", err)
	}
	pending, err := marshalJSON(task.PendingMessages)
	if err != nil {
		return fmt.Errorf("encode pending messages: %w", err)
	}

	var nextCheck any
	if task.NextCheck != nil {
		nextCheck = formatTime(*task.NextCheck)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO tasks (
			id, title, status, task_type, created, last_updated, next_check,
			poll_frequency, hidden, auto_send, original_request,
			plan, structured_plan, current_step, execution_log, context_memory, pending_messages
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID, task.Title, string(task.Status), string(task.TaskType),
		formatTime(task.Created), formatTime(task.LastUpdated), nextCheck,
		task.PollFrequency.Encode(), boolInt(task.Hidden), boolInt(task.AutoSend),
		task.OriginalRequest,
		plan, structured, current, log, memory, pending,
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

// Get loads one task by ID.
func (s *TaskStore) Get(id string) (*models.Task, error) {
	row := s.db.QueryRow(taskColumns+" WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", id, err)
	}
	return task, nil
}

// List returns all tasks ordered by creation time.
func (s *TaskStore) List(includeHidden bool) ([]*models.Task, error) {
	query := taskColumns
	if !includeHidden {
		query += " WHERE hidden = 0"
	}
	query += " ORDER BY created"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// Due returns the non-terminal, non-event tasks whose next check has passed
// (or was never set).
func (s *TaskStore) Due(now time.Time) ([]*models.Task, error) {
	rows, err := s.db.Query(taskColumns+`
		WHERE status NOT IN ('completed', 'failed', 'cancelled')
		  AND poll_frequency NOT LIKE 'event:%'
		  AND (next_check IS NULL OR next_check <= ?)
		ORDER BY created
	`, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("scan due tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// EventTasks returns the non-terminal tasks polled only on the named event.
func (s *TaskStore) EventTasks(event string) ([]*models.Task, error) {
	rows, err := s.db.Query(taskColumns+`
		WHERE status NOT IN ('completed', 'failed', 'cancelled')
		  AND poll_frequency LIKE 'event:%'
		ORDER BY created
	`)
	if err != nil {
		return nil, fmt.Errorf("scan event tasks: %w", err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	matched := tasks[:0]
	for _, task := range tasks {
		if task.PollFrequency.Label == event {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

// SetHidden flags or unflags a task as hidden from default listings.
func (s *TaskStore) SetHidden(id string, hidden bool) error {
	result, err := s.db.Exec("UPDATE tasks SET hidden = ? WHERE id = ?", boolInt(hidden), id)
	if err != nil {
		return fmt.Errorf("set hidden on task %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set hidden on task %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a task record permanently.
func (s *TaskStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

const taskColumns = `
	SELECT id, title, status, task_type, created, last_updated, next_check,
	       poll_frequency, hidden, auto_send, original_request,
	       plan, structured_plan, current_step, execution_log, context_memory, pending_messages
	FROM tasks`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask decodes one row into a task record.
func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task       models.Task
		status     string
		taskType   string
		created    string
		updated    string
		nextCheck  sql.NullString
		pollFreq   string
		hidden     int
		autoSend   int
		plan       sql.NullString
		structured sql.NullString
		current    sql.NullString
		log        sql.NullString
		memory     sql.NullString
		pending    sql.NullString
	)

	err := row.Scan(
		&task.ID, &task.Title, &status, &taskType, &created, &updated, &nextCheck,
		&pollFreq, &hidden, &autoSend, &task.OriginalRequest,
		&plan, &structured, &current, &log, &memory, &pending,
	)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.TaskType = models.TaskType(taskType)
	if task.Created, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("parse created: %w", err)
	}
	if task.LastUpdated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}
	task.NextCheck = parseNullableTime(nextCheck)
	if task.PollFrequency, err = models.ParsePollFrequency(pollFreq); err != nil {
		return nil, fmt.Errorf("parse poll frequency: %w", err)
	}
	task.Hidden = hidden != 0
	task.AutoSend = autoSend != 0

	if err := unmarshalJSON(plan, &task.Plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := unmarshalJSON(structured, &task.StructuredPlan); err != nil {
		return nil, fmt.Errorf("decode structured plan: %w", err)
	}
	if err := unmarshalJSON(current, &task.CurrentStep); err != nil {
		return nil, fmt.Errorf("decode current step: %w", err)
	}
	if err := unmarshalJSON(log, &task.ExecutionLog); err != nil {
		return nil, fmt.Errorf("decode execution log: %w", err)
	}
	if err := unmarshalJSON(memory, &task.ContextMemory); err != nil {
		return nil, fmt.Errorf("decode context memory: %w", err)
	}
	if err := unmarshalJSON(pending, &task.PendingMessages); err != nil {
		return nil, fmt.Errorf("decode pending messages: %w", err)
	}

	return &task, nil
}

// collectTasks drains a result set into task records.
func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// marshalJSON encodes a composite field, mapping empty values to NULL.
func marshalJSON(v any) (any, error) {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	case map[string]string:
		if len(val) == 0 {
			return nil, nil
		}
	case []models.PlanStep:
		if len(val) == 0 {
			return nil, nil
		}
	case []models.LogEntry:
		if len(val) == 0 {
			return nil, nil
		}
	case []models.PendingMessage:
		if len(val) == 0 {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// unmarshalJSON decodes a nullable JSON column.
func unmarshalJSON(col sql.NullString, dest any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}

// boolInt maps a bool onto the 0/1 SQLite convention.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package board

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kanban/domain"
)

const (
	taskIDPrefix  = "task-"
	maxIDAttempts = 8
)

// Store owns the canonical in-memory board. It is not safe for concurrent use;
// the embedding application must serialise callers.
type Store struct {
	columns  []domain.Column
	colIndex map[string]int
	newID    func() string
	log      *log.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithLogger routes the store's debug output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithIDGenerator replaces the random task id source. Generated ids that
// collide with existing tasks are discarded and the generator is called again.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New builds a store from an initial board definition. The definition is
// copied; later changes to it do not affect the store.
func New(initial domain.Board, opts ...Option) (*Store, error) {
	if err := validateDefinition(initial); err != nil {
		return nil, err
	}
	cp := initial.Clone()
	s := &Store{
		columns:  cp.Columns,
		colIndex: make(map[string]int, len(cp.Columns)),
		newID:    randomTaskID,
		log:      log.StandardLogger(),
	}
	for i, col := range s.columns {
		s.colIndex[col.ID] = i
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func randomTaskID() string {
	return taskIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Board returns a snapshot of the current board.
func (s *Store) Board() domain.Board {
	return domain.Board{Columns: s.columns}.Clone()
}

// TaskCount returns the number of tasks on the board.
func (s *Store) TaskCount() int {
	return domain.Board{Columns: s.columns}.TaskCount()
}

// HasColumn reports whether columnID exists.
func (s *Store) HasColumn(columnID string) bool {
	_, ok := s.colIndex[columnID]
	return ok
}

// Column returns a copy of the column with the given id.
func (s *Store) Column(columnID string) (domain.Column, bool) {
	i, ok := s.colIndex[columnID]
	if !ok {
		return domain.Column{}, false
	}
	col := s.columns[i]
	tasks := make([]domain.Task, len(col.Tasks))
	copy(tasks, col.Tasks)
	return domain.Column{ID: col.ID, Title: col.Title, Tasks: tasks}, true
}

// ColumnOfTask returns the column holding taskID and the task's position in it.
func (s *Store) ColumnOfTask(taskID string) (columnID string, index int, ok bool) {
	for _, col := range s.columns {
		for i, t := range col.Tasks {
			if t.ID == taskID {
				return col.ID, i, true
			}
		}
	}
	return "", -1, false
}

// Task returns the task with the given id.
func (s *Store) Task(taskID string) (domain.Task, bool) {
	colID, idx, ok := s.ColumnOfTask(taskID)
	if !ok {
		return domain.Task{}, false
	}
	return s.columns[s.colIndex[colID]].Tasks[idx], true
}

// AddTask appends a new task with a fresh id to the end of columnID.
func (s *Store) AddTask(columnID string, fields domain.TaskFields) (domain.Task, error) {
	i, ok := s.colIndex[columnID]
	if !ok {
		return domain.Task{}, fmt.Errorf("column %q: %w", columnID, domain.ErrNotFound)
	}
	if strings.TrimSpace(fields.Title) == "" {
		return domain.Task{}, fmt.Errorf("empty title: %w", domain.ErrInvalidTask)
	}
	if !fields.Priority.Valid() {
		return domain.Task{}, fmt.Errorf("unknown priority %q: %w", fields.Priority, domain.ErrInvalidTask)
	}

	task := domain.Task{
		ID:          s.uniqueID(),
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
	}
	s.columns[i].Tasks = append(s.columns[i].Tasks, task)
	s.log.WithFields(log.Fields{"task": task.ID, "column": columnID}).Debug("task added")
	return task, nil
}

// uniqueID asks the configured generator for an unused id, falling back to
// random ids once it has failed maxIDAttempts times.
func (s *Store) uniqueID() string {
	gen := s.newID
	for i := 0; ; i++ {
		if i == maxIDAttempts {
			s.log.Warn("id generator exhausted, using random task ids")
			gen = randomTaskID
		}
		id := gen()
		if id == "" {
			continue
		}
		if _, _, taken := s.ColumnOfTask(id); !taken {
			return id
		}
	}
}

// MoveTask removes taskID from sourceColumnID and appends it to
// destinationColumnID. Unknown columns or a task that is not in the source
// column make it a no-op. Moving within one column sends the task to the end.
// It reports whether the board changed.
func (s *Store) MoveTask(taskID, sourceColumnID, destinationColumnID string) bool {
	si, ok := s.colIndex[sourceColumnID]
	if !ok {
		s.noop("move", log.Fields{"task": taskID, "column": sourceColumnID}, "unknown source column")
		return false
	}
	di, ok := s.colIndex[destinationColumnID]
	if !ok {
		s.noop("move", log.Fields{"task": taskID, "column": destinationColumnID}, "unknown destination column")
		return false
	}
	idx := indexOf(s.columns[si].Tasks, taskID)
	if idx < 0 {
		s.noop("move", log.Fields{"task": taskID, "column": sourceColumnID}, "task not in source column")
		return false
	}

	task := s.columns[si].Tasks[idx]
	s.columns[si].Tasks = removeAt(s.columns[si].Tasks, idx)
	s.columns[di].Tasks = append(s.columns[di].Tasks, task)
	s.log.WithFields(log.Fields{"task": taskID, "from": sourceColumnID, "to": destinationColumnID}).Debug("task moved")
	return true
}

// ReorderTask moves the task at fromIndex to toIndex within columnID. toIndex
// is interpreted after removal and clamped to the valid range. An unknown
// column or out of range fromIndex makes it a no-op.
func (s *Store) ReorderTask(columnID string, fromIndex, toIndex int) bool {
	i, ok := s.colIndex[columnID]
	if !ok {
		s.noop("reorder", log.Fields{"column": columnID}, "unknown column")
		return false
	}
	tasks := s.columns[i].Tasks
	if fromIndex < 0 || fromIndex >= len(tasks) {
		s.noop("reorder", log.Fields{"column": columnID, "from": fromIndex}, "index out of range")
		return false
	}

	task := tasks[fromIndex]
	tasks = removeAt(tasks, fromIndex)
	toIndex = clamp(toIndex, 0, len(tasks))
	tasks = insertAt(tasks, toIndex, task)
	s.columns[i].Tasks = tasks
	s.log.WithFields(log.Fields{"task": task.ID, "column": columnID, "from": fromIndex, "to": toIndex}).Debug("task reordered")
	return true
}

func (s *Store) noop(op string, fields log.Fields, reason string) {
	s.log.WithFields(fields).WithField("op", op).Debugf("ignored: %s", reason)
}

func indexOf(tasks []domain.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(tasks []domain.Task, i int) []domain.Task {
	return append(tasks[:i:i], tasks[i+1:]...)
}

func insertAt(tasks []domain.Task, i int, t domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

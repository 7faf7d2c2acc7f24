package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"kanban/board"
	"kanban/domain"
	"kanban/drag"
)

var errUnknownCommand = errors.New("unknown command type")

// Session serialises all access to one board store and its drag controller.
// The core types assume a single caller; HTTP handlers run concurrently, so
// every call goes through the session mutex.
type Session struct {
	ID string

	mu       sync.Mutex
	store    *board.Store
	drag     *drag.Controller
	notifier drag.Notifier
	pending  []domain.TaskMoved
	log      *log.Logger
}

// NewSession wires a drag controller to store. Moved notices go to notifier
// once the command that produced them has released the session.
func NewSession(id string, store *board.Store, notifier drag.Notifier, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Session{
		ID:       id,
		store:    store,
		notifier: notifier,
		log:      logger,
	}
	s.drag = drag.NewController(store, drag.NotifierFunc(s.queue), logger)
	return s
}

// queue holds a notice until Apply unlocks. Called with mu held.
func (s *Session) queue(_ context.Context, notice domain.TaskMoved) {
	s.pending = append(s.pending, notice)
}

// Snapshot returns a copy of the current board.
func (s *Session) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Board()
}

// AddTask creates a task at the end of columnID.
func (s *Session) AddTask(columnID string, fields domain.TaskFields) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.AddTask(columnID, fields)
}

// DragState reports the controller phase and active task.
func (s *Session) DragState() (drag.State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := s.drag.Active()
	return s.drag.State(), id
}

type commandResult struct {
	Type      string            `json:"type"`
	Applied   bool              `json:"applied"`
	Duplicate bool              `json:"duplicate,omitempty"`
	Task      *domain.Task      `json:"task,omitempty"`
	Notice    *domain.TaskMoved `json:"notice,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Apply runs one command against the board. Commands that reference missing
// tasks or columns are no-ops, except add-task which reports the failure.
func (s *Session) Apply(ctx context.Context, cmd domain.Command) (commandResult, error) {
	s.mu.Lock()
	res, err := s.apply(ctx, cmd)
	notices := s.pending
	s.pending = nil
	s.mu.Unlock()

	if s.notifier != nil {
		for _, n := range notices {
			s.notifier.TaskMoved(ctx, n)
		}
	}
	return res, err
}

func (s *Session) apply(ctx context.Context, cmd domain.Command) (commandResult, error) {
	res := commandResult{Type: cmd.Type}
	switch cmd.Type {
	case domain.CommandAddTask:
		var data domain.AddTaskData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		task, err := s.store.AddTask(data.ColumnID, data.TaskFields)
		if err != nil {
			return res, err
		}
		res.Applied = true
		res.Task = &task
	case domain.CommandMoveTask:
		var data domain.MoveTaskData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		res.Applied = s.store.MoveTask(data.TaskID, data.SourceColumnID, data.DestinationColumnID)
	case domain.CommandReorderTask:
		var data domain.ReorderTaskData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		res.Applied = s.store.ReorderTask(data.ColumnID, data.FromIndex, data.ToIndex)
	case domain.CommandDragStart:
		var data domain.DragData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		res.Applied = s.drag.OnDragStart(data.TaskID)
	case domain.CommandDragOver:
		var data domain.DragData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		res.Applied = s.drag.OnDragOver(data.TaskID, data.TargetID)
	case domain.CommandDragEnd:
		var data domain.DragData
		if err := decodeData(cmd, &data); err != nil {
			return res, err
		}
		notice, moved := s.drag.OnDragEnd(ctx, data.TaskID, data.TargetID)
		res.Applied = true
		if moved {
			res.Notice = &notice
		}
	case domain.CommandDragCancel:
		s.drag.Cancel()
		res.Applied = true
	default:
		return res, fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}

	if s.log.IsLevelEnabled(log.DebugLevel) {
		if err := s.store.Validate(); err != nil {
			s.log.WithField("command", cmd.Type).Errorf("board invariant check failed: %v", err)
		}
	}
	return res, nil
}

// mutates reports whether an applied command of type t can change the board
// layout seen by subscribers.
func mutates(t string) bool {
	switch t {
	case domain.CommandAddTask, domain.CommandMoveTask, domain.CommandReorderTask, domain.CommandDragOver:
		return true
	default:
		return false
	}
}

func decodeData(cmd domain.Command, v any) error {
	if len(cmd.Data) == 0 {
		return fmt.Errorf("%s: missing data", cmd.Type)
	}
	if err := sonic.Unmarshal(cmd.Data, v); err != nil {
		return fmt.Errorf("%s: invalid data: %w", cmd.Type, err)
	}
	return nil
}

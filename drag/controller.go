package drag

import (
	"context"

	log "github.com/sirupsen/logrus"

	"kanban/domain"
)

// State is the phase of the in-flight gesture.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Board is the part of the board store the controller drives.
type Board interface {
	ColumnOfTask(taskID string) (columnID string, index int, ok bool)
	Column(columnID string) (domain.Column, bool)
	Task(taskID string) (domain.Task, bool)
	MoveTask(taskID, sourceColumnID, destinationColumnID string) bool
}

// Notifier receives the final placement of a task moved by a gesture.
type Notifier interface {
	TaskMoved(ctx context.Context, notice domain.TaskMoved)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice domain.TaskMoved)

func (f NotifierFunc) TaskMoved(ctx context.Context, notice domain.TaskMoved) { f(ctx, notice) }

// Controller turns drag-start/over/end notifications into board mutations.
// While dragging, hovering a different column relocates the task there at
// once; drag-end only clears state and reports the final placement.
// Like the board store it expects a single caller at a time.
type Controller struct {
	board    Board
	notifier Notifier
	log      *log.Logger

	state   State
	active  string
	origin  string
	current string
}

// NewController creates an idle controller. notifier may be nil.
func NewController(board Board, notifier Notifier, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Controller{board: board, notifier: notifier, log: logger}
}

// State returns the current gesture phase.
func (c *Controller) State() State { return c.state }

// Active returns the task being dragged, if any.
func (c *Controller) Active() (string, bool) {
	if c.state != Dragging {
		return "", false
	}
	return c.active, true
}

// OnDragStart begins a gesture for taskID. An unknown task leaves the
// controller idle. A start while another gesture is in flight abandons it.
func (c *Controller) OnDragStart(taskID string) bool {
	if c.state == Dragging {
		c.log.WithFields(log.Fields{"task": c.active, "next": taskID}).Debug("drag restarted before end; abandoning previous gesture")
	}
	c.Reset()

	colID, _, ok := c.board.ColumnOfTask(taskID)
	if !ok {
		c.log.WithField("task", taskID).Debug("drag start for unknown task ignored")
		return false
	}
	c.state = Dragging
	c.active = taskID
	c.origin = colID
	c.current = colID
	return true
}

// OnDragOver relocates the dragged task to the hovered column when it differs
// from the task's current column. hoverTargetID may name a column or a task.
func (c *Controller) OnDragOver(draggedID, hoverTargetID string) bool {
	if c.state != Dragging || draggedID != c.active || hoverTargetID == "" {
		return false
	}
	if hoverTargetID == draggedID {
		return false
	}
	target, ok := c.resolveColumn(hoverTargetID)
	if !ok {
		return false
	}

	// The store is the source of truth; the task may have been moved by
	// another command since the last hover.
	if colID, _, found := c.board.ColumnOfTask(c.active); found {
		c.current = colID
	}
	if target == c.current {
		return false
	}
	if !c.board.MoveTask(c.active, c.current, target) {
		return false
	}
	c.log.WithFields(log.Fields{"task": c.active, "from": c.current, "to": target}).Debug("live relocation")
	c.current = target
	return true
}

// OnDragEnd finishes the gesture and returns to Idle. No corrective move is
// made: the task stays where the last live relocation put it. When the drop
// target resolves and the task ended in a column other than its origin, a
// TaskMoved notice is sent and returned. The drop target only gates the
// notice; ToColumnID is always the column the task actually sits in.
func (c *Controller) OnDragEnd(ctx context.Context, draggedID, dropTargetID string) (domain.TaskMoved, bool) {
	if c.state != Dragging || draggedID != c.active {
		c.Reset()
		return domain.TaskMoved{}, false
	}
	taskID, origin := c.active, c.origin
	c.Reset()

	if dropTargetID == "" || dropTargetID == taskID {
		return domain.TaskMoved{}, false
	}
	if _, ok := c.resolveColumn(dropTargetID); !ok {
		c.log.WithFields(log.Fields{"task": taskID, "target": dropTargetID}).Debug("drop target unresolved")
		return domain.TaskMoved{}, false
	}

	final, _, ok := c.board.ColumnOfTask(taskID)
	if !ok || final == origin {
		return domain.TaskMoved{}, false
	}
	task, _ := c.board.Task(taskID)
	col, _ := c.board.Column(final)
	notice := domain.TaskMoved{
		TaskID:        taskID,
		TaskTitle:     task.Title,
		FromColumnID:  origin,
		ToColumnID:    final,
		ToColumnTitle: col.Title,
	}
	c.log.WithFields(log.Fields{"task": taskID, "from": origin, "to": final}).Info(notice.Message())
	if c.notifier != nil {
		c.notifier.TaskMoved(ctx, notice)
	}
	return notice, true
}

// Cancel ends the gesture without a resolved target.
func (c *Controller) Cancel() {
	c.Reset()
}

// Reset returns the controller to Idle without touching the board.
func (c *Controller) Reset() {
	c.state = Idle
	c.active = ""
	c.origin = ""
	c.current = ""
}

func (c *Controller) resolveColumn(targetID string) (string, bool) {
	if _, ok := c.board.Column(targetID); ok {
		return targetID, true
	}
	if colID, _, ok := c.board.ColumnOfTask(targetID); ok {
		return colID, true
	}
	return "", false
}

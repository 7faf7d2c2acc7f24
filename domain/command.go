package domain

import "github.com/bytedance/sonic"

const (
	CommandAddTask     = "add-task"
	CommandMoveTask    = "move-task"
	CommandReorderTask = "reorder-task"
	CommandDragStart   = "drag-start"
	CommandDragOver    = "drag-over"
	CommandDragEnd     = "drag-end"
	CommandDragCancel  = "drag-cancel"
)

// Command represents a single board mutation or gesture phase sent by the
// presentation layer.
type Command struct {
	IdempotencyKey string                 `json:"idempotencyKey,omitempty"`
	Type           string                 `json:"type"`
	Data           sonic.NoCopyRawMessage `json:"data,omitempty"`
}

// AddTaskData is the payload of an add-task command.
type AddTaskData struct {
	ColumnID string `json:"columnId"`
	TaskFields
}

// MoveTaskData is the payload of a move-task command.
type MoveTaskData struct {
	TaskID              string `json:"taskId"`
	SourceColumnID      string `json:"sourceColumnId"`
	DestinationColumnID string `json:"destinationColumnId"`
}

// ReorderTaskData is the payload of a reorder-task command.
type ReorderTaskData struct {
	ColumnID  string `json:"columnId"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

// DragData is the payload shared by the drag gesture commands. TargetID is
// either a task id or a column id; it is empty for drag-start and for
// gestures released outside any target.
type DragData struct {
	TaskID   string `json:"taskId"`
	TargetID string `json:"targetId,omitempty"`
}

package domain

import "fmt"

const (
	NoticeTaskMoved = "task-moved"
	NoticeBoard     = "board"
)

// TaskMoved is emitted once a drag gesture leaves a task in a different
// column than the one it started in.
type TaskMoved struct {
	TaskID        string `json:"taskId"`
	TaskTitle     string `json:"taskTitle"`
	FromColumnID  string `json:"fromColumnId"`
	ToColumnID    string `json:"toColumnId"`
	ToColumnTitle string `json:"toColumnTitle"`
}

// Message renders the user facing confirmation text.
func (m TaskMoved) Message() string {
	title := m.ToColumnTitle
	if title == "" {
		title = m.ToColumnID
	}
	return fmt.Sprintf("Task moved to %s", title)
}

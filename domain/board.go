package domain

// Column is an ordered bucket of tasks representing a workflow stage.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Board is the full ordered set of columns.
type Board struct {
	Columns []Column `json:"columns"`
}

// Clone returns a deep copy of the board. Columns with no tasks get an empty,
// non-nil slice so they encode as [] rather than null.
func (b Board) Clone() Board {
	out := Board{Columns: make([]Column, len(b.Columns))}
	for i, col := range b.Columns {
		tasks := make([]Task, len(col.Tasks))
		copy(tasks, col.Tasks)
		out.Columns[i] = Column{ID: col.ID, Title: col.Title, Tasks: tasks}
	}
	return out
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Tasks)
	}
	return n
}

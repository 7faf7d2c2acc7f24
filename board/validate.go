package board

import (
	"strings"

	"kanban/domain"
)

// validateDefinition checks an initial board definition before it is adopted.
func validateDefinition(b domain.Board) error {
	if len(b.Columns) == 0 {
		return invalidf("board has no columns")
	}
	cols := make(map[string]struct{}, len(b.Columns))
	tasks := make(map[string]string)
	for i, col := range b.Columns {
		if col.ID == "" {
			return invalidf("column %d has an empty id", i)
		}
		if _, dup := cols[col.ID]; dup {
			return invalidf("duplicate column id %q", col.ID)
		}
		cols[col.ID] = struct{}{}
		for j, t := range col.Tasks {
			if t.ID == "" {
				return invalidf("task %d in column %q has an empty id", j, col.ID)
			}
			if prev, dup := tasks[t.ID]; dup {
				return invalidf("task id %q appears in columns %q and %q", t.ID, prev, col.ID)
			}
			tasks[t.ID] = col.ID
			if strings.TrimSpace(t.Title) == "" {
				return invalidf("task %q has an empty title", t.ID)
			}
			if !t.Priority.Valid() {
				return invalidf("task %q has unknown priority %q", t.ID, t.Priority)
			}
		}
	}
	return nil
}

// Validate checks that every task id is owned by exactly one column and that
// column ids are unique.
func (s *Store) Validate() error {
	cols := make(map[string]struct{}, len(s.columns))
	owners := make(map[string]string)
	for _, col := range s.columns {
		if _, dup := cols[col.ID]; dup {
			return violationf("duplicate column id %q", col.ID)
		}
		cols[col.ID] = struct{}{}
		for _, t := range col.Tasks {
			if prev, dup := owners[t.ID]; dup {
				return violationf("task %q owned by %q and %q", t.ID, prev, col.ID)
			}
			owners[t.ID] = col.ID
		}
	}
	if len(s.colIndex) != len(s.columns) {
		return violationf("column index out of sync: %d indexed, %d columns", len(s.colIndex), len(s.columns))
	}
	return nil
}

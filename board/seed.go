package board

import "kanban/domain"

// DefaultBoard returns the board a fresh session starts with.
func DefaultBoard() domain.Board {
	return domain.Board{Columns: []domain.Column{
		{
			ID:    "todo",
			Title: "To Do",
			Tasks: []domain.Task{
				{ID: "task-1", Title: "Research competitors", Description: "Analyze top 5 competitors and create a report", Priority: domain.PriorityMedium},
				{ID: "task-2", Title: "Design homepage", Description: "Create wireframes for the new homepage", Priority: domain.PriorityHigh},
				{ID: "task-3", Title: "Update documentation", Description: "Update API documentation with new endpoints", Priority: domain.PriorityLow},
			},
		},
		{
			ID:    "in-progress",
			Title: "In Progress",
			Tasks: []domain.Task{
				{ID: "task-4", Title: "Implement authentication", Description: "Add user login and registration functionality", Priority: domain.PriorityHigh},
				{ID: "task-5", Title: "Fix navigation bug", Description: "Fix the navigation menu issue on mobile devices", Priority: domain.PriorityMedium},
			},
		},
		{
			ID:    "done",
			Title: "Done",
			Tasks: []domain.Task{
				{ID: "task-6", Title: "Set up project repository", Description: "Initialize Git repository and add initial files", Priority: domain.PriorityHigh},
				{ID: "task-7", Title: "Create project plan", Description: "Define project timeline and milestones", Priority: domain.PriorityMedium},
			},
		},
	}}
}
